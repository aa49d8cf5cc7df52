package lua

import (
	"reflect"
	"testing"
	"time"

	glua "github.com/yuin/gopher-lua"
)

func TestBridgeToGoValue(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	b := NewBridge(L)

	if err := L.DoString(`
		arr = { 1, 2.5, "x", true }
		obj = { name = "a", nested = { 1, 2 } }
		sparse = { [1] = "a", [3] = "c" }
		cyc = {}
		cyc.self = cyc
	`); err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	tests := []struct {
		name string
		in   glua.LValue
		want any
	}{
		{"nil", glua.LNil, nil},
		{"integer", glua.LNumber(3), int64(3)},
		{"float", glua.LNumber(1.5), 1.5},
		{"string", glua.LString("s"), "s"},
		{"array", L.GetGlobal("arr"), []any{int64(1), 2.5, "x", true}},
		{"object", L.GetGlobal("obj"), map[string]any{"name": "a", "nested": []any{int64(1), int64(2)}}},
		{"sparse", L.GetGlobal("sparse"), map[string]any{"1": "a", "3": "c"}},
		{"cycle", L.GetGlobal("cyc"), map[string]any{"self": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := b.ToGoValue(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToGoValue() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBridgeToLuaValue(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	b := NewBridge(L)

	type payload struct {
		Path   string `json:"path"`
		Size   int
		Hidden string `json:"-"`
		secret string
	}

	tbl, ok := b.ToLuaValue(payload{Path: "a.txt", Size: 3, Hidden: "h", secret: "s"}).(*glua.LTable)
	if !ok {
		t.Fatal("struct should convert to a table")
	}
	if tbl.RawGetString("path") != glua.LString("a.txt") {
		t.Errorf("path = %v", tbl.RawGetString("path"))
	}
	if tbl.RawGetString("Size") != glua.LNumber(3) {
		t.Errorf("Size = %v", tbl.RawGetString("Size"))
	}
	if tbl.RawGetString("Hidden") != glua.LNil || tbl.RawGetString("secret") != glua.LNil {
		t.Error("skipped fields should not be converted")
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if got := b.ToLuaValue(ts); got != glua.LString("2024-01-02T03:04:05Z") {
		t.Errorf("time = %v", got)
	}

	list, ok := b.ToLuaValue([]string{"a", "b"}).(*glua.LTable)
	if !ok || list.Len() != 2 || list.RawGetInt(2) != glua.LString("b") {
		t.Errorf("slice conversion = %v", list)
	}

	back := b.ToGoValue(b.ToLuaValue(map[string]any{"n": 1, "items": []any{"x"}}))
	want := map[string]any{"n": int64(1), "items": []any{"x"}}
	if !reflect.DeepEqual(back, want) {
		t.Errorf("round trip = %#v, want %#v", back, want)
	}
}
