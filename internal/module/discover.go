package module

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"

	"github.com/jward/tranp/internal/parser"
)

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	"venv":          {},
	"env":           {},
	"build":         {},
	"dist":          {},
	"site-packages": {},
}

// Discover returns the ids of every module under root, sorted. Hidden
// entries, well-known tool directories and paths matched by the root
// .gitignore are skipped.
func Discover(root string) ([]string, error) {
	gi, _ := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))

	seen := make(map[string]struct{})
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		name := d.Name()
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		if _, ok := parser.LanguageForFile(name); !ok {
			return nil
		}
		seen[moduleID(rel)] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		if id != "" {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// moduleID maps a root-relative file path to its dotted module id.
func moduleID(rel string) string {
	rel = strings.TrimSuffix(rel, filepath.Ext(rel))
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if parts[len(parts)-1] == "__init__" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, ".")
}
