package models

import (
	"math"
	"strconv"
)

// Value is any JSON value. The set of implementations is closed:
// String, Number, Bool, Null, Array and Object.
type Value interface {
	isValue()
}

// String is a JSON string.
type String string

// Number is a JSON number.
type Number float64

// Bool is a JSON boolean.
type Bool bool

// Null is the JSON null literal.
type Null struct{}

// Array is an ordered sequence of values.
type Array []Value

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value Value
}

// Object is an insertion-ordered list of members. Keys are not required to be unique.
type Object []Member

// NullValue is the canonical Null instance.
var NullValue = Null{}

func (String) isValue() {}
func (Number) isValue() {}
func (Bool) isValue()   {}
func (Null) isValue()   {}
func (Array) isValue()  {}
func (Object) isValue() {}

// Kind identifies the variant of a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "null"
	}
}

// KindOf returns the variant of v. A nil Value is reported as KindNull.
func KindOf(v Value) Kind {
	switch v.(type) {
	case String:
		return KindString
	case Number:
		return KindNumber
	case Bool:
		return KindBool
	case Array:
		return KindArray
	case Object:
		return KindObject
	default:
		return KindNull
	}
}

// Set appends a member and returns the extended object. Existing members with the
// same key are left alone.
func (o Object) Set(key string, v Value) Object {
	return append(o, Member{Key: key, Value: v})
}

// Get returns the value of the first member named key.
func (o Object) Get(key string) (Value, bool) {
	for _, m := range o {
		if m.Key == key {
			return m.Value, true
		}
	}
	return nil, false
}

// String returns the shortest decimal text that parses back to n.
// Plain notation is used for 1e-6 <= |n| < 1e21 and exponent notation otherwise.
// NaN and infinities have no JSON form and yield "null".
func (n Number) String() string {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "null"
	}

	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, f, format, -1, 64)

	if format == 'e' {
		// clean up e-09 to e-9
		l := len(b)
		if l >= 4 && b[l-4] == 'e' && b[l-3] == '-' && b[l-2] == '0' {
			b[l-2] = b[l-1]
			b = b[:l-1]
		}
	}
	return string(b)
}
