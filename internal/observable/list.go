package observable

import (
	"slices"
	"sync"

	"github.com/dshills/observable/internal/event"
	"github.com/dshills/observable/internal/event/dispatch"
	"github.com/dshills/observable/internal/identity"
)

// ListOption configures a List.
type ListOption[T any] func(*List[T])

// WithItemEqual sets the comparison used by IndexOf, Remove and RemoveRange.
// The default compares items by identity.
func WithItemEqual[T any](equal func(a, b T) bool) ListOption[T] {
	return func(l *List[T]) {
		if equal != nil {
			l.equal = equal
		}
	}
}

// WithItems sets the initial contents of the list without raising a change.
func WithItems[T any](items ...T) ListOption[T] {
	return func(l *List[T]) {
		l.items = slices.Clone(items)
	}
}

// WithListDispatch passes options to the change channel's dispatcher.
func WithListDispatch[T any](opts ...dispatch.Option) ListOption[T] {
	return func(l *List[T]) {
		l.dispatchOpts = append(l.dispatchOpts, opts...)
	}
}

// List is an observable ordered sequence.
// It is safe for concurrent use; change handlers run after the lock is
// released.
type List[T any] struct {
	mu    sync.RWMutex
	items []T

	equal        func(a, b T) bool
	dispatchOpts []dispatch.Option
	changed      *event.Channel[ListChange[T]]
}

// NewList creates a List.
func NewList[T any](opts ...ListOption[T]) *List[T] {
	l := &List[T]{
		equal: func(a, b T) bool {
			return identity.Same(a, b)
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	l.changed = event.NewChannel[ListChange[T]](l.dispatchOpts...)
	return l
}

// Add appends item.
func (l *List[T]) Add(item T) {
	l.AddRange([]T{item})
}

// AddRange appends items. An empty range raises no change.
func (l *List[T]) AddRange(items []T) {
	l.mu.Lock()
	start := len(l.items)
	l.items = append(l.items, items...)
	l.mu.Unlock()

	l.emit(ListChange[T]{Added: itemsFrom(start, items)})
}

// Insert places item at index, shifting later items up.
func (l *List[T]) Insert(index int, item T) error {
	return l.InsertRange(index, []T{item})
}

// InsertRange places items starting at index. Index may equal Len.
func (l *List[T]) InsertRange(index int, items []T) error {
	l.mu.Lock()
	if index < 0 || index > len(l.items) {
		l.mu.Unlock()
		return ErrIndexOutOfRange
	}
	l.items = slices.Insert(l.items, index, items...)
	l.mu.Unlock()

	l.emit(ListChange[T]{Added: itemsFrom(index, items)})
	return nil
}

// Set replaces the item at index.
func (l *List[T]) Set(index int, item T) error {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		return ErrIndexOutOfRange
	}
	old := l.items[index]
	l.items[index] = item
	l.mu.Unlock()

	l.emit(ListChange[T]{
		Added:   []Item[T]{{Index: index, Value: item}},
		Removed: []Item[T]{{Index: index, Value: old}},
	})
	return nil
}

// Get returns the item at index.
func (l *List[T]) Get(index int) (T, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.items) {
		var zero T
		return zero, ErrIndexOutOfRange
	}
	return l.items[index], nil
}

// IndexOf returns the index of the first item equal to item, or -1.
func (l *List[T]) IndexOf(item T) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.indexLocked(item, nil)
}

// Remove deletes the first item equal to item. It reports whether an item
// was removed.
func (l *List[T]) Remove(item T) bool {
	l.mu.Lock()
	index := l.indexLocked(item, nil)
	if index < 0 {
		l.mu.Unlock()
		return false
	}
	removed := l.removeLocked([]int{index})
	l.mu.Unlock()

	l.emit(ListChange[T]{Removed: removed})
	return true
}

// RemoveAt deletes and returns the item at index.
func (l *List[T]) RemoveAt(index int) (T, error) {
	l.mu.Lock()
	if index < 0 || index >= len(l.items) {
		l.mu.Unlock()
		var zero T
		return zero, ErrIndexOutOfRange
	}
	removed := l.removeLocked([]int{index})
	l.mu.Unlock()

	l.emit(ListChange[T]{Removed: removed})
	return removed[0].Value, nil
}

// RemoveRange deletes, for each of items, the first matching element not
// already selected. Items not in the list are ignored. A nil slice returns
// ErrInvalidArgument without modifying the list.
func (l *List[T]) RemoveRange(items []T) error {
	if items == nil {
		return ErrInvalidArgument
	}

	l.mu.Lock()
	taken := make(map[int]bool, len(items))
	indices := make([]int, 0, len(items))
	for _, item := range items {
		if i := l.indexLocked(item, taken); i >= 0 {
			taken[i] = true
			indices = append(indices, i)
		}
	}
	removed := l.removeLocked(indices)
	l.mu.Unlock()

	l.emit(ListChange[T]{Removed: removed})
	return nil
}

// RemoveAtIndices deletes the items at the given indices. Duplicate indices
// are removed once. Every index is validated before anything is removed; a
// nil slice returns ErrInvalidArgument.
func (l *List[T]) RemoveAtIndices(indices []int) error {
	if indices == nil {
		return ErrInvalidArgument
	}

	l.mu.Lock()
	for _, i := range indices {
		if i < 0 || i >= len(l.items) {
			l.mu.Unlock()
			return ErrIndexOutOfRange
		}
	}
	removed := l.removeLocked(indices)
	l.mu.Unlock()

	l.emit(ListChange[T]{Removed: removed})
	return nil
}

// Clear removes every item and raises a single change listing them.
func (l *List[T]) Clear() {
	l.mu.Lock()
	removed := itemsFrom(0, l.items)
	l.items = nil
	l.mu.Unlock()

	l.emit(ListChange[T]{Removed: removed})
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Items returns a copy of the items.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Changed returns the channel raised after every mutation.
func (l *List[T]) Changed() *event.Channel[ListChange[T]] {
	return l.changed
}

// OnChanged registers fn for change events and returns its handler.
func (l *List[T]) OnChanged(fn func(ListChange[T])) *dispatch.Handler[ListChange[T]] {
	return l.changed.OnFunc(fn)
}

func (l *List[T]) indexLocked(item T, skip map[int]bool) int {
	for i, v := range l.items {
		if skip[i] {
			continue
		}
		if l.equal(v, item) {
			return i
		}
	}
	return -1
}

// removeLocked deletes the items at indices, which must be in range, and
// returns them in ascending index order.
func (l *List[T]) removeLocked(indices []int) []Item[T] {
	if len(indices) == 0 {
		return nil
	}

	sorted := slices.Clone(indices)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	removed := make([]Item[T], len(sorted))
	for i, index := range sorted {
		removed[i] = Item[T]{Index: index, Value: l.items[index]}
	}

	kept := make([]T, 0, len(l.items)-len(sorted))
	next := 0
	for i, v := range l.items {
		if next < len(sorted) && sorted[next] == i {
			next++
			continue
		}
		kept = append(kept, v)
	}
	l.items = kept
	return removed
}

func (l *List[T]) emit(change ListChange[T]) {
	if change.Empty() {
		return
	}
	l.changed.RaiseSafe(change)
}

func itemsFrom[T any](start int, values []T) []Item[T] {
	if len(values) == 0 {
		return nil
	}
	items := make([]Item[T], len(values))
	for i, v := range values {
		items[i] = Item[T]{Index: start + i, Value: v}
	}
	return items
}
