package reflection

import (
	"fmt"
	"iter"
)

// Table is the ordered symbol table: fullname to Reflection in insertion
// order. Cross-module name collisions are rejected.
type Table struct {
	order    []string
	byName   map[string]*Reflection
	deferred []deferral
}

type deferral struct {
	declared *Declared
	resolve  func() ([]*Reflection, error)
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{byName: make(map[string]*Reflection)}
}

// Add registers r under fullname. A second registration of the same name
// fails with ErrLogic.
func (t *Table) Add(fullname string, r *Reflection) error {
	if _, ok := t.byName[fullname]; ok {
		return fmt.Errorf("reflection: add %s: duplicate declaration: %w", fullname, ErrLogic)
	}
	t.put(fullname, r)
	return nil
}

func (t *Table) put(fullname string, r *Reflection) {
	if r.table == nil {
		r.table = t
	}
	t.order = append(t.order, fullname)
	t.byName[fullname] = r
}

// Get looks up a symbol by fullname.
func (t *Table) Get(fullname string) (*Reflection, bool) {
	r, ok := t.byName[fullname]
	return r, ok
}

// Has reports whether fullname is registered.
func (t *Table) Has(fullname string) bool {
	_, ok := t.byName[fullname]
	return ok
}

// Len is the number of registered symbols.
func (t *Table) Len() int { return len(t.order) }

// Names returns the registered fullnames in insertion order.
func (t *Table) Names() []string {
	return append([]string(nil), t.order...)
}

// All iterates the table in insertion order.
func (t *Table) All() iter.Seq2[string, *Reflection] {
	return func(yield func(string, *Reflection) bool) {
		for _, name := range t.order {
			if !yield(name, t.byName[name]) {
				return
			}
		}
	}
}

// Defer schedules the attrs of d to be computed by resolve during
// Finalize. The placeholder reads as unbound until then.
func (t *Table) Defer(d *Declared, resolve func() ([]*Reflection, error)) {
	t.deferred = append(t.deferred, deferral{declared: d, resolve: resolve})
}

// Pending is the number of deferrals not yet finalized.
func (t *Table) Pending() int { return len(t.deferred) }

// Finalize binds every deferred placeholder in registration order. It
// stops at the first failure.
func (t *Table) Finalize() error {
	for i, d := range t.deferred {
		attrs, err := d.resolve()
		if err != nil {
			t.deferred = t.deferred[i:]
			return fmt.Errorf("reflection: finalize %s: %w", d.declared.r.orgFullyname, err)
		}
		if _, err := d.declared.Extends(attrs...); err != nil {
			t.deferred = t.deferred[i:]
			return err
		}
	}
	t.deferred = nil
	return nil
}
