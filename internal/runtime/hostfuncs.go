package runtime

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"

	"github.com/jward/tranp/internal/node"
)

// probeGlobals exposes p to a discriminator script.
func probeGlobals(p node.Probe) map[string]any {
	return map[string]any{
		"tag":           object.NewString(p.Tag()),
		"value":         object.NewString(p.Value()),
		"parent_tag":    object.NewString(p.ParentTag()),
		"path":          object.NewString(p.Path.String()),
		"child_tags":    stringList(p.ChildTags()),
		"ancestor_tags": stringList(p.AncestorTags()),
		"has_child":     makeHasChildFn(p),
		"under":         makeUnderFn(p),
		"child_value":   makeChildValueFn(p),
		"inside":        makeInsideFn(p),
	}
}

func stringList(items []string) *object.List {
	objs := make([]object.Object, len(items))
	for i, s := range items {
		objs[i] = object.NewString(s)
	}
	return object.NewList(objs)
}

func tagArg(name string, args []object.Object) (string, *object.Error) {
	if len(args) != 1 {
		return "", object.NewArgsError(name, 1, len(args))
	}
	s, ok := args[0].(*object.String)
	if !ok {
		return "", object.Errorf("%s: tag must be a string, got %s", name, args[0].Type())
	}
	return s.Value(), nil
}

func makeHasChildFn(p node.Probe) *object.Builtin {
	return object.NewBuiltin("has_child", func(ctx context.Context, args ...object.Object) object.Object {
		tag, errObj := tagArg("has_child", args)
		if errObj != nil {
			return errObj
		}
		return object.NewBool(p.HasChild(tag))
	})
}

func makeUnderFn(p node.Probe) *object.Builtin {
	return object.NewBuiltin("under", func(ctx context.Context, args ...object.Object) object.Object {
		tag, errObj := tagArg("under", args)
		if errObj != nil {
			return errObj
		}
		return object.NewBool(p.Under(tag))
	})
}

func makeChildValueFn(p node.Probe) *object.Builtin {
	return object.NewBuiltin("child_value", func(ctx context.Context, args ...object.Object) object.Object {
		tag, errObj := tagArg("child_value", args)
		if errObj != nil {
			return errObj
		}
		c, ok := p.Child(tag)
		if !ok {
			return object.Nil
		}
		return object.NewString(c.Value())
	})
}

// makeInsideFn reports whether the nearest ancestors, parent first, are
// exactly the given tags.
func makeInsideFn(p node.Probe) *object.Builtin {
	return object.NewBuiltin("inside", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) == 0 {
			return object.Errorf("inside: at least one tag is required")
		}
		ancestors := p.AncestorTags()
		if len(args) > len(ancestors) {
			return object.NewBool(false)
		}
		for i, arg := range args {
			s, ok := arg.(*object.String)
			if !ok {
				return object.Errorf("inside: tag must be a string, got %s", arg.Type())
			}
			if ancestors[i] != s.Value() {
				return object.NewBool(false)
			}
		}
		return object.NewBool(true)
	})
}

// logObject provides log.info/warn/error methods for scripts.
type logObject struct {
	logger *slog.Logger
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "discriminator")
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "discriminator")
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "discriminator")
}
