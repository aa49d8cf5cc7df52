package lua

import (
	"fmt"

	"github.com/google/uuid"
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/observable/internal/observable"
)

const dictTypeName = "observable.dict"

// DictChangedEvent returns the bus event raised when the named dict changes.
func DictChangedEvent(name string) string {
	return "dict." + name + ".changed"
}

// luaDict is the userdata value behind dict.new.
type luaDict struct {
	name string
	dict *observable.Dictionary[lua.LValue, lua.LValue]
}

func (r *Runtime) installDict(L *lua.LState) {
	mt := L.NewTypeMetatable(dictTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"add":            dictAdd,
		"remove":         dictRemove,
		"get":            dictGet,
		"contains":       dictContains,
		"contains_value": dictContainsValue,
		"find":           dictFind,
		"clear":          dictClear,
		"len":            dictLen,
		"keys":           dictKeys,
		"values":         dictValues,
		"name":           dictName,
	}))
	L.SetField(mt, "__len", L.NewFunction(dictLen))
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		d := checkDict(L)
		L.Push(lua.LString(fmt.Sprintf("dict(%s, %d)", d.name, d.dict.Len())))
		return 1
	}))

	mod := L.NewTable()
	L.SetField(mod, "new", L.NewFunction(r.luaDictNew))
	L.SetGlobal("dict", mod)
}

func (r *Runtime) luaDictNew(L *lua.LState) int {
	name := L.OptString(1, "")
	if name == "" {
		name = uuid.NewString()
	}

	d := &luaDict{
		name: name,
		dict: observable.NewDictionary[lua.LValue, lua.LValue](),
	}
	event := DictChangedEvent(name)
	d.dict.OnChanged(func(c observable.DictionaryChange[lua.LValue, lua.LValue]) {
		r.bus.RaiseSafe(event, map[string]any{
			"name":    name,
			"added":   r.entriesToGo(c.Added),
			"removed": r.entriesToGo(c.Removed),
		})
	})

	ud := L.NewUserData()
	ud.Value = d
	L.SetMetatable(ud, L.GetTypeMetatable(dictTypeName))
	L.Push(ud)
	return 1
}

func (r *Runtime) entriesToGo(entries []observable.Entry[lua.LValue, lua.LValue]) []any {
	out := make([]any, len(entries))
	for i, e := range entries {
		out[i] = map[string]any{
			"key":   r.bridge.ToGoValue(e.Key),
			"value": r.bridge.ToGoValue(e.Value),
		}
	}
	return out
}

func checkDict(L *lua.LState) *luaDict {
	ud := L.CheckUserData(1)
	if d, ok := ud.Value.(*luaDict); ok {
		return d
	}
	L.ArgError(1, "dict expected")
	return nil
}

func checkKey(L *lua.LState, n int) lua.LValue {
	key := L.CheckAny(n)
	if key == lua.LNil {
		L.ArgError(n, "key must not be nil")
	}
	return key
}

func dictAdd(L *lua.LState) int {
	d := checkDict(L)
	d.dict.Add(checkKey(L, 2), L.Get(3))
	return 0
}

func dictRemove(L *lua.LState) int {
	d := checkDict(L)
	L.Push(lua.LBool(d.dict.Remove(checkKey(L, 2))))
	return 1
}

func dictGet(L *lua.LState) int {
	d := checkDict(L)
	key := checkKey(L, 2)
	v, err := d.dict.GetValueByKey(key)
	if err != nil {
		L.RaiseError("%v: %s", err, L.ToStringMeta(key).String())
		return 0
	}
	L.Push(v)
	return 1
}

func dictContains(L *lua.LState) int {
	d := checkDict(L)
	L.Push(lua.LBool(d.dict.ContainsKey(checkKey(L, 2))))
	return 1
}

func dictContainsValue(L *lua.LState) int {
	d := checkDict(L)
	L.Push(lua.LBool(d.dict.ContainsValue(L.Get(2))))
	return 1
}

// dictFind returns the first key, in insertion order, for which the
// predicate returns a truthy value, or nil.
func dictFind(L *lua.LState) int {
	d := checkDict(L)
	fn := L.CheckFunction(2)

	var callErr error
	key, ok := d.dict.FindKey(func(k lua.LValue) bool {
		if callErr != nil {
			return false
		}
		if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, k); err != nil {
			callErr = err
			return false
		}
		ret := L.Get(-1)
		L.Pop(1)
		return lua.LVAsBool(ret)
	})
	if callErr != nil {
		L.RaiseError("dict.find: %v", callErr)
		return 0
	}
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(key)
	return 1
}

func dictClear(L *lua.LState) int {
	checkDict(L).dict.Clear()
	return 0
}

func dictLen(L *lua.LState) int {
	L.Push(lua.LNumber(checkDict(L).dict.Len()))
	return 1
}

func dictKeys(L *lua.LState) int {
	keys := checkDict(L).dict.Keys()
	t := L.CreateTable(len(keys), 0)
	for i, k := range keys {
		t.RawSetInt(i+1, k)
	}
	L.Push(t)
	return 1
}

func dictValues(L *lua.LState) int {
	values := checkDict(L).dict.Values()
	t := L.CreateTable(len(values), 0)
	for i, v := range values {
		t.RawSetInt(i+1, v)
	}
	L.Push(t)
	return 1
}

func dictName(L *lua.LState) int {
	L.Push(lua.LString(checkDict(L).name))
	return 1
}
