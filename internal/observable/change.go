package observable

// Entry is a key/value pair.
type Entry[K, V any] struct {
	Key   K
	Value V
}

// DictionaryChange describes one mutation of a Dictionary.
type DictionaryChange[K, V any] struct {
	Added   []Entry[K, V]
	Removed []Entry[K, V]
}

// Empty reports whether the change adds and removes nothing.
func (c DictionaryChange[K, V]) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Item is a list element with the index it had when the change happened.
// Removed items carry their index before the mutation, added items their
// index after it.
type Item[T any] struct {
	Index int
	Value T
}

// ListChange describes one mutation of a List.
type ListChange[T any] struct {
	Added   []Item[T]
	Removed []Item[T]
}

// Empty reports whether the change adds and removes nothing.
func (c ListChange[T]) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}
