package observable

import (
	"slices"
	"sync"

	"github.com/dshills/observable/internal/event"
	"github.com/dshills/observable/internal/event/dispatch"
	"github.com/dshills/observable/internal/identity"
)

// DictionaryOption configures a Dictionary.
type DictionaryOption[K, V any] func(*Dictionary[K, V])

// WithValueEqual sets the comparison used by ContainsValue. The default
// compares values by identity.
func WithValueEqual[K, V any](equal func(a, b V) bool) DictionaryOption[K, V] {
	return func(d *Dictionary[K, V]) {
		if equal != nil {
			d.equal = equal
		}
	}
}

// WithDictionaryDispatch passes options to the change channel's dispatcher.
func WithDictionaryDispatch[K, V any](opts ...dispatch.Option) DictionaryOption[K, V] {
	return func(d *Dictionary[K, V]) {
		d.dispatchOpts = append(d.dispatchOpts, opts...)
	}
}

// Dictionary is an observable map from keys of any type to values.
// It is safe for concurrent use; change handlers run after the lock is
// released and may read or mutate the dictionary.
type Dictionary[K, V any] struct {
	mu      sync.RWMutex
	tagger  *identity.Tagger
	entries map[uint64]Entry[K, V]

	equal        func(a, b V) bool
	dispatchOpts []dispatch.Option
	changed      *event.Channel[DictionaryChange[K, V]]
}

// NewDictionary creates an empty Dictionary.
func NewDictionary[K, V any](opts ...DictionaryOption[K, V]) *Dictionary[K, V] {
	d := &Dictionary[K, V]{
		tagger:  identity.New(),
		entries: make(map[uint64]Entry[K, V]),
		equal: func(a, b V) bool {
			return identity.Same(a, b)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.changed = event.NewChannel[DictionaryChange[K, V]](d.dispatchOpts...)
	return d
}

// Add stores value under key. If key is already present its value is
// replaced and the change lists the new pair as added and the old pair as
// removed.
func (d *Dictionary[K, V]) Add(key K, value V) {
	d.mu.Lock()
	change := DictionaryChange[K, V]{Added: []Entry[K, V]{{Key: key, Value: value}}}
	if tag, ok := d.tagger.Lookup(key); ok {
		old := d.entries[tag]
		change.Removed = []Entry[K, V]{{Key: key, Value: old.Value}}
		d.entries[tag] = Entry[K, V]{Key: key, Value: value}
	} else {
		d.entries[d.tagger.Tag(key)] = Entry[K, V]{Key: key, Value: value}
	}
	d.mu.Unlock()

	d.emit(change)
}

// Remove deletes key. It reports whether key was present.
func (d *Dictionary[K, V]) Remove(key K) bool {
	d.mu.Lock()
	tag, ok := d.tagger.Lookup(key)
	if !ok {
		d.mu.Unlock()
		return false
	}
	removed := d.entries[tag]
	delete(d.entries, tag)
	d.tagger.Untag(key)
	d.mu.Unlock()

	d.emit(DictionaryChange[K, V]{Removed: []Entry[K, V]{removed}})
	return true
}

// Clear removes every entry and raises a single change listing them.
func (d *Dictionary[K, V]) Clear() {
	d.mu.Lock()
	removed := d.sortedLocked()
	d.entries = make(map[uint64]Entry[K, V])
	d.tagger.Reset()
	d.mu.Unlock()

	d.emit(DictionaryChange[K, V]{Removed: removed})
}

// ContainsKey reports whether key is present.
func (d *Dictionary[K, V]) ContainsKey(key K) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tagger.HasTag(key)
}

// ContainsValue reports whether any entry holds value.
func (d *Dictionary[K, V]) ContainsValue(value V) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, e := range d.entries {
		if d.equal(e.Value, value) {
			return true
		}
	}
	return false
}

// GetValueByKey returns the value stored under key, or ErrKeyNotFound.
func (d *Dictionary[K, V]) GetValueByKey(key K) (V, error) {
	v, ok := d.Get(key)
	if !ok {
		return v, ErrKeyNotFound
	}
	return v, nil
}

// Get returns the value stored under key and whether it was present.
func (d *Dictionary[K, V]) Get(key K) (V, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	tag, ok := d.tagger.Lookup(key)
	if !ok {
		var zero V
		return zero, false
	}
	return d.entries[tag].Value, true
}

// FindKey returns the first key, in insertion order, accepted by match.
func (d *Dictionary[K, V]) FindKey(match func(K) bool) (K, bool) {
	for _, e := range d.Entries() {
		if match(e.Key) {
			return e.Key, true
		}
	}
	var zero K
	return zero, false
}

// Len returns the number of entries.
func (d *Dictionary[K, V]) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Keys returns the keys in insertion order.
func (d *Dictionary[K, V]) Keys() []K {
	entries := d.Entries()
	keys := make([]K, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the values in key insertion order.
func (d *Dictionary[K, V]) Values() []V {
	entries := d.Entries()
	values := make([]V, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values
}

// Entries returns the entries in key insertion order.
func (d *Dictionary[K, V]) Entries() []Entry[K, V] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sortedLocked()
}

// Changed returns the channel raised after every mutation.
func (d *Dictionary[K, V]) Changed() *event.Channel[DictionaryChange[K, V]] {
	return d.changed
}

// OnChanged registers fn for change events and returns its handler.
func (d *Dictionary[K, V]) OnChanged(fn func(DictionaryChange[K, V])) *dispatch.Handler[DictionaryChange[K, V]] {
	return d.changed.OnFunc(fn)
}

func (d *Dictionary[K, V]) sortedLocked() []Entry[K, V] {
	tags := make([]uint64, 0, len(d.entries))
	for tag := range d.entries {
		tags = append(tags, tag)
	}
	slices.Sort(tags)

	entries := make([]Entry[K, V], len(tags))
	for i, tag := range tags {
		entries[i] = d.entries[tag]
	}
	return entries
}

func (d *Dictionary[K, V]) emit(change DictionaryChange[K, V]) {
	if change.Empty() {
		return
	}
	d.changed.RaiseSafe(change)
}
