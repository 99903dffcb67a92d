package astindex

import (
	"fmt"
	"strings"

	"github.com/jward/tranp/internal/entry"
	"github.com/jward/tranp/internal/fullpath"
)

type pathfyConfig struct {
	depth int
	root  fullpath.Path
	set   bool
}

// Option configures FullPathfy.
type Option func(*pathfyConfig)

// WithDepth limits indexing to positions at most depth levels below the
// root. A negative depth means unlimited.
func WithDepth(depth int) Option {
	return func(c *pathfyConfig) {
		c.depth = depth
	}
}

// WithRoot sets the path assigned to the root position. Defaults to the
// root's own tag.
func WithRoot(root fullpath.Path) Option {
	return func(c *pathfyConfig) {
		c.root = root
		c.set = true
	}
}

// FullPathfy walks root once in pre-order and returns the complete index.
// A child segment carries an ordinal iff two or more of its siblings share
// its tag. Tags must be valid path segments.
func FullPathfy(root entry.Entry, opts ...Option) (*Index, error) {
	cfg := pathfyConfig{depth: -1}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.set {
		if err := checkTag(root.Tag()); err != nil {
			return nil, err
		}
		cfg.root = fullpath.Root(root.Tag())
	}

	ix := New()
	if err := ix.Add(cfg.root, root); err != nil {
		return nil, err
	}
	if err := pathfy(ix, cfg.root, root, 1, cfg.depth); err != nil {
		return nil, err
	}
	return ix, nil
}

func pathfy(ix *Index, at fullpath.Path, e entry.Entry, level, limit int) error {
	if limit >= 0 && level > limit {
		return nil
	}
	children := e.Children()
	counts := make(map[string]int, len(children))
	for _, c := range children {
		if err := checkTag(c.Tag()); err != nil {
			return fmt.Errorf("astindex: under %q: %w", at, err)
		}
		counts[c.Tag()]++
	}
	seen := make(map[string]int, len(counts))
	for _, c := range children {
		tag := c.Tag()
		var p fullpath.Path
		if counts[tag] > 1 {
			p = fullpath.Identify(at, tag, seen[tag])
			seen[tag]++
		} else {
			p = at.Append(tag)
		}
		if err := ix.Add(p, c); err != nil {
			return err
		}
		if err := pathfy(ix, p, c, level+1, limit); err != nil {
			return err
		}
	}
	return nil
}

// checkTag rejects tags that would not round-trip as a single segment.
func checkTag(tag string) error {
	if tag == "" || strings.ContainsAny(tag, ".[]") {
		return fmt.Errorf("astindex: tag %q: %w", tag, ErrInvalidTag)
	}
	return nil
}
