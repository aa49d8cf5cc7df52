package identity

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// handle identifies a key that cannot serve as a map key on its own: its
// type is not comparable, or it may hold a NaN or an interface value.
type handle struct {
	typ  reflect.Type
	repr string
}

var (
	typeIDs    sync.Map // reflect.Type -> uint64
	lastTypeID atomic.Uint64
)

// typeID returns a process-unique number for t.
func typeID(t reflect.Type) uint64 {
	if id, ok := typeIDs.Load(t); ok {
		return id.(uint64)
	}
	id, _ := typeIDs.LoadOrStore(t, lastTypeID.Add(1))
	return id.(uint64)
}

// Of returns a comparable identity for key, suitable for use as a map key.
//
// Plain comparable values are their own identity. Any other key is encoded
// component by component: reference kinds contribute their address, floats
// contribute a canonical form in which every NaN is equal, and interface
// fields contribute their dynamic type. The contents behind a reference are
// never read, so mutating a map held by a key does not change its identity.
func Of(key any) any {
	if key == nil {
		return nil
	}

	t := reflect.TypeOf(key)
	if plain(t) {
		return key
	}

	var b strings.Builder
	encode(&b, reflect.ValueOf(key))
	return handle{typ: t, repr: b.String()}
}

// Same reports whether a and b have the same identity.
func Same(a, b any) bool {
	return Of(a) == Of(b)
}

// plain reports whether values of t can be used as map keys directly: t is
// comparable and equality never involves floats or interface values.
func plain(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return false
	case reflect.Array:
		return plain(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !plain(t.Field(i).Type) {
				return false
			}
		}
		return true
	}
	return true
}

func encode(b *strings.Builder, v reflect.Value) {
	switch v.Kind() {
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(v.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		encodeFloat(b, v.Float())
	case reflect.Complex64, reflect.Complex128:
		c := v.Complex()
		b.WriteByte('(')
		encodeFloat(b, real(c))
		b.WriteByte(',')
		encodeFloat(b, imag(c))
		b.WriteByte(')')
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
	case reflect.Pointer, reflect.Chan, reflect.UnsafePointer, reflect.Map, reflect.Func:
		b.WriteByte('@')
		b.WriteString(strconv.FormatUint(uint64(v.Pointer()), 16))
	case reflect.Slice:
		// Empty slices have no element to point at; all of them are one key.
		if v.Len() == 0 {
			b.WriteString("@[]")
			return
		}
		b.WriteByte('@')
		b.WriteString(strconv.FormatUint(uint64(v.Pointer()), 16))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(v.Len()))
	case reflect.Interface:
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		e := v.Elem()
		b.WriteByte('<')
		b.WriteString(strconv.FormatUint(typeID(e.Type()), 10))
		b.WriteByte('>')
		encode(b, e)
	case reflect.Array:
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			encode(b, v.Index(i))
		}
		b.WriteByte(']')
	case reflect.Struct:
		b.WriteByte('{')
		for i := 0; i < v.NumField(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			encode(b, v.Field(i))
		}
		b.WriteByte('}')
	}
}

func encodeFloat(b *strings.Builder, f float64) {
	switch {
	case math.IsNaN(f):
		b.WriteString("NaN")
	case f == 0:
		b.WriteByte('0')
	default:
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	}
}
