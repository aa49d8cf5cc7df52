package identity

import (
	"strconv"
	"sync/atomic"
)

// lastContainerID is the most recently assigned container id.
var lastContainerID atomic.Uint64

// Tagger assigns sequential tags to keys. Tags start at 1 and are never
// reused, even after a key is untagged.
//
// A Tagger is not safe for concurrent use; its owner serializes access.
type Tagger struct {
	id   uint64
	last uint64
	tags map[any]tagged
}

// tagged keeps the key alongside its tag so that addresses recorded in its
// identity stay reachable, and cannot be reused, while the key is tagged.
type tagged struct {
	tag uint64
	key any
}

// New creates a Tagger with a process-unique container id.
func New() *Tagger {
	return &Tagger{
		id:   lastContainerID.Add(1),
		tags: make(map[any]tagged),
	}
}

// ID returns the container id of the tagger.
func (t *Tagger) ID() uint64 {
	return t.id
}

// Tag returns the tag of key, assigning the next tag if key has none.
func (t *Tagger) Tag(key any) uint64 {
	ident := Of(key)
	if e, ok := t.tags[ident]; ok {
		return e.tag
	}
	t.last++
	t.tags[ident] = tagged{tag: t.last, key: key}
	return t.last
}

// Lookup returns the tag of key without assigning one.
func (t *Tagger) Lookup(key any) (uint64, bool) {
	e, ok := t.tags[Of(key)]
	return e.tag, ok
}

// HasTag reports whether key currently carries a tag from this tagger.
func (t *Tagger) HasTag(key any) bool {
	_, ok := t.tags[Of(key)]
	return ok
}

// Untag removes the tag of key. It reports whether key was tagged.
func (t *Tagger) Untag(key any) bool {
	ident := Of(key)
	if _, ok := t.tags[ident]; !ok {
		return false
	}
	delete(t.tags, ident)
	return true
}

// Len returns the number of tagged keys.
func (t *Tagger) Len() int {
	return len(t.tags)
}

// Reset untags every key. The tag counter is not rewound.
func (t *Tagger) Reset() {
	t.tags = make(map[any]tagged)
}

// String returns a diagnostic name for the tagger.
func (t *Tagger) String() string {
	return "tagger#" + strconv.FormatUint(t.id, 10)
}
