// Package lua runs event scripts written in Lua.
//
// A State is a sandboxed gopher-lua interpreter: only the base, table,
// string and math libraries are opened, the file loading functions are
// removed, print writes to a zerolog logger, and every top level call runs
// under a deadline.
//
// A Runtime binds a State to an event.Bus and installs two modules:
//
//	events.on("saved", function(data) print(data.path) end)
//	events.raise("saved", { path = "a.txt" })
//
//	local d = dict.new("open")
//	d:add("a.txt", true)   -- raises "dict.open.changed"
//
// # Threading
//
// gopher-lua's LState is not goroutine-safe. A State and the Runtime that
// owns it must be driven from one goroutine, including every Raise on the
// bus that can reach a handler registered by the script.
//
// # Conversion
//
// Bridge converts between Go and Lua values. Tables with contiguous integer
// keys starting at 1 become []any, other tables become map[string]any,
// integral numbers become int64. Go structs become tables keyed by their
// json tag or field name.
package lua
