package observable

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/dshills/observable/internal/event/dispatch"
)

type doc struct {
	ID int `json:"id"`
}

type reading struct {
	Value float64
}

type labelled struct {
	Labels map[string]int
}

type shape struct {
	A int   `json:"a"`
	B []int `json:"b"`
}

func recordChanges[K, V any](d *Dictionary[K, V]) *[]DictionaryChange[K, V] {
	var changes []DictionaryChange[K, V]
	d.OnChanged(func(c DictionaryChange[K, V]) {
		changes = append(changes, c)
	})
	return &changes
}

func TestDictionary_AddDistinctIdentities(t *testing.T) {
	d := NewDictionary[*doc, string]()
	first := &doc{ID: 1}
	second := &doc{ID: 1}

	d.Add(first, "x")
	if d.Len() != 1 || len(d.Keys()) != 1 {
		t.Fatalf("expected 1 entry, got %d", d.Len())
	}

	d.Add(second, "y")
	if d.Len() != 2 {
		t.Errorf("expected structurally equal key to be distinct, got len %d", d.Len())
	}

	if !d.Remove(first) {
		t.Error("expected Remove to report a present key")
	}
	if d.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", d.Len())
	}
	if d.ContainsKey(first) {
		t.Error("expected first key removed")
	}
	if v, err := d.GetValueByKey(second); err != nil || v != "y" {
		t.Errorf("expected y, got %q (%v)", v, err)
	}
}

func TestDictionary_AddEmitsChange(t *testing.T) {
	d := NewDictionary[string, int]()
	changes := recordChanges(d)

	d.Add("a", 1)

	want := []DictionaryChange[string, int]{{Added: []Entry[string, int]{{"a", 1}}}}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("expected %+v, got %+v", want, *changes)
	}
}

func TestDictionary_OverrideSemantics(t *testing.T) {
	d := NewDictionary[*doc, string]()
	k := &doc{ID: 7}
	d.Add(k, "v1")
	changes := recordChanges(d)

	d.Add(k, "v2")

	if d.Len() != 1 {
		t.Errorf("expected size unchanged, got %d", d.Len())
	}
	if v, _ := d.GetValueByKey(k); v != "v2" {
		t.Errorf("expected v2, got %q", v)
	}
	if len(*changes) != 1 {
		t.Fatalf("expected exactly one change, got %d", len(*changes))
	}
	c := (*changes)[0]
	if len(c.Added) != 1 || c.Added[0].Key != k || c.Added[0].Value != "v2" {
		t.Errorf("unexpected added: %+v", c.Added)
	}
	if len(c.Removed) != 1 || c.Removed[0].Key != k || c.Removed[0].Value != "v1" {
		t.Errorf("unexpected removed: %+v", c.Removed)
	}
}

func TestDictionary_RemoveAbsentRaisesNothing(t *testing.T) {
	d := NewDictionary[*doc, int]()
	changes := recordChanges(d)

	if d.Remove(&doc{}) {
		t.Error("expected Remove of absent key to report false")
	}
	d.Clear()

	if len(*changes) != 0 {
		t.Errorf("expected no changes, got %+v", *changes)
	}
}

func TestDictionary_RemoveEmitsChange(t *testing.T) {
	d := NewDictionary[string, int]()
	d.Add("a", 1)
	changes := recordChanges(d)

	d.Remove("a")

	want := []DictionaryChange[string, int]{{Removed: []Entry[string, int]{{"a", 1}}}}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("expected %+v, got %+v", want, *changes)
	}
}

func TestDictionary_KeyEncodingUnchanged(t *testing.T) {
	key := &shape{A: 1, B: []int{2}}
	before, _ := json.Marshal(key)
	fieldsBefore := reflect.TypeOf(*key).NumField()

	d := NewDictionary[*shape, bool]()
	d.Add(key, true)
	during, _ := json.Marshal(key)
	d.Remove(key)
	after, _ := json.Marshal(key)

	if string(before) != `{"a":1,"b":[2]}` {
		t.Fatalf("unexpected encoding %s", before)
	}
	if string(during) != string(before) || string(after) != string(before) {
		t.Errorf("expected encoding unchanged: %s / %s / %s", before, during, after)
	}
	if reflect.TypeOf(*key).NumField() != fieldsBefore {
		t.Error("expected key fields unchanged")
	}
}

func TestDictionary_ContainerIsolation(t *testing.T) {
	key := &doc{ID: 1}
	c1 := NewDictionary[*doc, string]()
	c2 := NewDictionary[*doc, string]()
	c3 := NewDictionary[*doc, string]()
	c1.Add(key, "one")
	c2.Add(key, "two")
	c3.Add(key, "three")

	c1.Remove(key)
	if c1.ContainsKey(key) {
		t.Error("expected key removed from c1")
	}
	if v, err := c2.GetValueByKey(key); err != nil || v != "two" {
		t.Errorf("expected c2 unaffected, got %q (%v)", v, err)
	}

	c1.Add(key, "again")
	c1.Clear()
	if v, err := c3.GetValueByKey(key); err != nil || v != "three" {
		t.Errorf("expected c3 unaffected, got %q (%v)", v, err)
	}
	if !c2.ContainsKey(key) {
		t.Error("expected c2 to still contain key")
	}
}

func TestDictionary_GetValueByKeyMissing(t *testing.T) {
	d := NewDictionary[string, int]()
	if _, err := d.GetValueByKey("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
	if _, ok := d.Get("missing"); ok {
		t.Error("expected Get to report missing key")
	}
}

func TestDictionary_HeterogeneousKeys(t *testing.T) {
	d := NewDictionary[any, string]()
	d.Add(2, "int")
	d.Add("2", "string")
	d.Add(true, "bool")
	d.Add([]int{2}, "slice")

	if d.Len() != 4 {
		t.Fatalf("expected 4 entries, got %d", d.Len())
	}
	if v, _ := d.GetValueByKey(2); v != "int" {
		t.Errorf("expected int, got %q", v)
	}
	if v, _ := d.GetValueByKey("2"); v != "string" {
		t.Errorf("expected string, got %q", v)
	}
	if d.ContainsKey(2.0) {
		t.Error("expected float 2 to be a different key")
	}
}

func TestDictionary_FindKey(t *testing.T) {
	d := NewDictionary[*doc, int]()
	a, b, c := &doc{ID: 1}, &doc{ID: 2}, &doc{ID: 3}
	d.Add(a, 1)
	d.Add(b, 2)
	d.Add(c, 3)

	k, ok := d.FindKey(func(k *doc) bool { return k.ID > 1 })
	if !ok || k != b {
		t.Errorf("expected b, got %+v (ok=%v)", k, ok)
	}
	if _, ok := d.FindKey(func(k *doc) bool { return k.ID > 10 }); ok {
		t.Error("expected no match")
	}
}

func TestDictionary_ContainsValue(t *testing.T) {
	v1 := &doc{ID: 1}
	d := NewDictionary[string, *doc]()
	d.Add("a", v1)

	if !d.ContainsValue(v1) {
		t.Error("expected identical value to be found")
	}
	if d.ContainsValue(&doc{ID: 1}) {
		t.Error("expected structurally equal value not to match by default")
	}

	byID := NewDictionary(WithValueEqual[string, *doc](func(a, b *doc) bool { return a.ID == b.ID }))
	byID.Add("a", v1)
	if !byID.ContainsValue(&doc{ID: 1}) {
		t.Error("expected custom equality to match")
	}
}

func TestDictionary_ClearEmitsAllRemoved(t *testing.T) {
	d := NewDictionary[string, int]()
	d.Add("a", 1)
	d.Add("b", 2)
	changes := recordChanges(d)

	d.Clear()

	want := []DictionaryChange[string, int]{{Removed: []Entry[string, int]{{"a", 1}, {"b", 2}}}}
	if !reflect.DeepEqual(*changes, want) {
		t.Errorf("expected %+v, got %+v", want, *changes)
	}
	if d.Len() != 0 || d.ContainsKey("a") {
		t.Error("expected empty dictionary")
	}
}

func TestDictionary_OrderedViews(t *testing.T) {
	d := NewDictionary[string, int]()
	d.Add("z", 26)
	d.Add("a", 1)
	d.Add("m", 13)
	d.Remove("a")
	d.Add("a", 100)

	if got := d.Keys(); !reflect.DeepEqual(got, []string{"z", "m", "a"}) {
		t.Errorf("unexpected keys %v", got)
	}
	if got := d.Values(); !reflect.DeepEqual(got, []int{26, 13, 100}) {
		t.Errorf("unexpected values %v", got)
	}
}

func TestDictionary_FailingHandlerIsIsolated(t *testing.T) {
	var suppressed []error
	d := NewDictionary(WithDictionaryDispatch[string, int](dispatch.WithErrorObserver(func(err error) {
		suppressed = append(suppressed, err)
	})))
	_ = d.Changed().On(dispatch.NewHandler(func(DictionaryChange[string, int]) error {
		return errors.New("boom")
	}))
	calls := 0
	d.OnChanged(func(DictionaryChange[string, int]) { calls++ })

	d.Add("a", 1)

	if calls != 1 {
		t.Errorf("expected second handler called once, got %d", calls)
	}
	if len(suppressed) != 1 {
		t.Errorf("expected 1 suppressed failure, got %d", len(suppressed))
	}
	if !d.ContainsKey("a") {
		t.Error("expected mutation to be applied")
	}
}

func TestDictionary_HandlerMayReadDictionary(t *testing.T) {
	d := NewDictionary[string, int]()
	seen := -1
	d.OnChanged(func(DictionaryChange[string, int]) {
		seen = d.Len()
	})

	d.Add("a", 1)

	if seen != 1 {
		t.Errorf("expected handler to observe len 1, got %d", seen)
	}
}

func TestDictionary_NestedNaNKeyOverrides(t *testing.T) {
	d := NewDictionary[reading, string]()
	changes := recordChanges(d)
	key := reading{Value: math.NaN()}

	d.Add(key, "a")
	d.Add(key, "b")

	if d.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", d.Len())
	}
	if v, ok := d.Get(key); !ok || v != "b" {
		t.Errorf("expected b, got %q (ok=%v)", v, ok)
	}
	if !d.Remove(key) {
		t.Error("expected NaN key to be removable")
	}
	if d.Len() != 0 {
		t.Errorf("expected empty dictionary, got %d", d.Len())
	}
	if len(*changes) != 3 {
		t.Errorf("expected 3 change events, got %d", len(*changes))
	}
}

func TestDictionary_KeyWithMutatedMap(t *testing.T) {
	d := NewDictionary[labelled, int]()
	key := labelled{Labels: map[string]int{}}

	d.Add(key, 1)
	key.Labels["x"] = 1

	if !d.ContainsKey(key) {
		t.Fatal("expected key to survive mutation of its map")
	}
	if !d.Remove(key) {
		t.Error("expected mutated key to be removable")
	}
	if d.Len() != 0 {
		t.Errorf("expected empty dictionary, got %d", d.Len())
	}
}

func TestDictionary_EqualMapsAreDistinctKeys(t *testing.T) {
	d := NewDictionary[any, string]()
	d.Add(map[string]int{"a": 1}, "first")
	d.Add(map[string]int{"a": 1}, "second")

	if d.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", d.Len())
	}
}

func TestDictionary_EmptySlicesShareAKey(t *testing.T) {
	d := NewDictionary[any, string]()
	d.Add(make([]int, 0), "first")
	d.Add([]int{}, "second")

	if d.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", d.Len())
	}
	if v, _ := d.GetValueByKey([]int(nil)); v != "second" {
		t.Errorf("expected second, got %q", v)
	}
}
