package runtime

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// ToString renders a value the way print shows it. Strings are bare at the
// top level and quoted inside objects.
func ToString(v Value) string {
	var b strings.Builder
	writeValue(&b, v, false)
	return b.String()
}

func writeValue(b *strings.Builder, v Value, nested bool) {
	switch v := v.(type) {
	case Null:
		b.WriteString("null")
	case Boolean:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case Number:
		b.WriteString(FormatNumber(float64(v)))
	case String:
		if nested {
			b.WriteString(strconv.Quote(string(v)))
		} else {
			b.WriteString(string(v))
		}
	case *Object:
		writeObject(b, v)
	case *NativeFunction, *Function:
		b.WriteString(v.String())
	default:
		b.WriteString("<unknown>")
	}
}

// writeObject prints properties in key order so output is deterministic.
func writeObject(b *strings.Builder, o *Object) {
	if len(o.Properties) == 0 {
		b.WriteString("{}")
		return
	}
	keys := make([]string, 0, len(o.Properties))
	for k := range o.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		writeValue(b, o.Properties[k], true)
	}
	b.WriteString(" }")
}

// FormatNumber prints integral values without a fractional part and keeps
// the shortest representation otherwise.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToPropertyKey converts a computed member key into a property name.
func ToPropertyKey(v Value) (string, bool) {
	switch v := v.(type) {
	case String:
		return string(v), true
	case Number:
		return FormatNumber(float64(v)), true
	default:
		return "", false
	}
}

// Equal reports structural equality for primitives and identity for
// objects and functions. NaN is not equal to itself.
func Equal(a, b Value) bool {
	switch a := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Boolean:
		bb, ok := b.(Boolean)
		return ok && a == bb
	case Number:
		bn, ok := b.(Number)
		return ok && a == bn
	case String:
		bs, ok := b.(String)
		return ok && a == bs
	case *Object:
		bo, ok := b.(*Object)
		return ok && a == bo
	case *NativeFunction:
		bf, ok := b.(*NativeFunction)
		return ok && a == bf
	case *Function:
		bf, ok := b.(*Function)
		return ok && a == bf
	default:
		return false
	}
}
