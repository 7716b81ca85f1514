package store

import "slices"

// Record is anything stored in a Table.
type Record interface {
	Key() string
}

// Table is an ordered collection of records keyed by Record.Key. Rows keep
// insertion order; replacing a record keeps its position.
type Table[T Record] struct {
	rows  []T
	index map[string]int
	dirty bool
}

// NewTable creates a table holding rows. A later row replaces an earlier
// one with the same key.
func NewTable[T Record](rows ...T) *Table[T] {
	t := &Table[T]{index: make(map[string]int, len(rows))}
	for _, r := range rows {
		t.put(r)
	}
	return t
}

// List returns all rows in order.
func (t *Table[T]) List() []T {
	return slices.Clone(t.rows)
}

// Len returns the number of rows.
func (t *Table[T]) Len() int {
	return len(t.rows)
}

// Get returns the row with key.
func (t *Table[T]) Get(key string) (T, bool) {
	i, ok := t.index[key]
	if !ok {
		var zero T
		return zero, false
	}
	return t.rows[i], true
}

// Has reports whether key exists.
func (t *Table[T]) Has(key string) bool {
	_, ok := t.index[key]
	return ok
}

// Put inserts v, or replaces the row with the same key in place.
// It reports whether a row was replaced.
func (t *Table[T]) Put(v T) bool {
	t.dirty = true
	return t.put(v)
}

func (t *Table[T]) put(v T) bool {
	if i, ok := t.index[v.Key()]; ok {
		t.rows[i] = v
		return true
	}
	t.index[v.Key()] = len(t.rows)
	t.rows = append(t.rows, v)
	return false
}

// Delete removes the row with key and reports whether it existed.
func (t *Table[T]) Delete(key string) bool {
	if _, ok := t.index[key]; !ok {
		return false
	}
	removed := t.DeleteWhere(func(r T) bool { return r.Key() == key })
	return len(removed) > 0
}

// DeleteWhere removes every row matching pred and returns the removed rows.
func (t *Table[T]) DeleteWhere(pred func(T) bool) []T {
	var removed []T
	kept := t.rows[:0:0]
	for _, r := range t.rows {
		if pred(r) {
			removed = append(removed, r)
			continue
		}
		kept = append(kept, r)
	}
	if len(removed) == 0 {
		return nil
	}
	t.rows = kept
	t.reindex()
	t.dirty = true
	return removed
}

// Find returns the first row matching pred.
func (t *Table[T]) Find(pred func(T) bool) (T, bool) {
	for _, r := range t.rows {
		if pred(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns the rows matching pred, in order.
func (t *Table[T]) Filter(pred func(T) bool) []T {
	var out []T
	for _, r := range t.rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// Dirty reports whether the table changed since it was loaded or cloned.
func (t *Table[T]) Dirty() bool {
	return t.dirty
}

func (t *Table[T]) reindex() {
	t.index = make(map[string]int, len(t.rows))
	for i, r := range t.rows {
		t.index[r.Key()] = i
	}
}

func (t *Table[T]) clone() *Table[T] {
	c := &Table[T]{
		rows:  slices.Clone(t.rows),
		index: make(map[string]int, len(t.index)),
	}
	for k, v := range t.index {
		c.index[k] = v
	}
	return c
}
