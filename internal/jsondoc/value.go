// Package jsondoc implements the JSON document model shared by the store:
// a closed Value type, key/index Paths, detached Views and the splice
// algorithm that merges a View back into a document.
package jsondoc

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
)

// Kind is the variant tag of a Value.
type Kind uint8

const (
	// KindNull is the JSON null.
	KindNull Kind = iota
	// KindBool is true or false.
	KindBool
	// KindNumber is a JSON number, kept as its decimal text.
	KindNumber
	// KindString is a JSON string.
	KindString
	// KindArray is an ordered sequence of values.
	KindArray
	// KindObject is a mapping from string to value.
	KindObject
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindNumber: "number",
	KindString: "string",
	KindArray:  "array",
	KindObject: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a JSON value.
//
// The zero Value is null. Arrays and objects hold their children by value but
// share backing storage when a Value is copied with assignment; use Clone to
// obtain an independent copy.
type Value struct {
	kind Kind
	b    bool
	num  json.Number
	str  string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null Value.
func Null() Value {
	return Value{}
}

// Bool returns a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Int returns a number Value holding i.
func Int(i int64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatInt(i, 10))}
}

// Float returns a number Value holding f. NaN and infinities have no JSON
// representation and fail when the value is encoded.
func Float(f float64) Value {
	return Value{kind: KindNumber, num: json.Number(strconv.FormatFloat(f, 'g', -1, 64))}
}

// NumberFrom returns a number Value holding the literal n.
func NumberFrom(n json.Number) Value {
	return Value{kind: KindNumber, num: n}
}

// String returns a string Value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Array returns an array Value holding elems.
func Array(elems ...Value) Value {
	if elems == nil {
		elems = []Value{}
	}
	return Value{kind: KindArray, arr: elems}
}

// Object returns an object Value holding members. A nil map yields an empty
// object.
func Object(members map[string]Value) Value {
	if members == nil {
		members = map[string]Value{}
	}
	return Value{kind: KindObject, obj: members}
}

// EmptyObject returns {}.
func EmptyObject() Value {
	return Object(nil)
}

// Kind returns the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBool reports whether v is a boolean.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsNumber reports whether v is a number.
func (v Value) IsNumber() bool { return v.kind == KindNumber }

// IsString reports whether v is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsArray reports whether v is an array.
func (v Value) IsArray() bool { return v.kind == KindArray }

// IsObject reports whether v is an object.
func (v Value) IsObject() bool { return v.kind == KindObject }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsInt returns the number held by v if it is an integer that fits in int64.
func (v Value) AsInt() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	i, err := v.num.Int64()
	return i, err == nil
}

// AsFloat returns the number held by v as a float64.
func (v Value) AsFloat() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	return f, err == nil
}

// Number returns the literal of a number Value, or "" for other kinds.
func (v Value) Number() json.Number {
	return v.num
}

// Len returns the number of elements of an array or members of an object.
func (v Value) Len() (int, error) {
	switch v.kind {
	case KindArray:
		return len(v.arr), nil
	case KindObject:
		return len(v.obj), nil
	case KindNull, KindBool, KindNumber, KindString:
		return 0, &Error{Code: ErrLenNotDefined}
	}
	return 0, &Error{Code: ErrLenNotDefined}
}

// IsEmpty reports whether v is an empty array or object. Scalars are never
// empty.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindArray:
		return len(v.arr) == 0
	case KindObject:
		return len(v.obj) == 0
	case KindNull, KindBool, KindNumber, KindString:
	}
	return false
}

// Keys returns the member names of an object in sorted order, or nil.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	return slices.Sorted(maps.Keys(v.obj))
}

// Key returns the member named key of an object.
func (v Value) Key(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	c, ok := v.obj[key]
	return c, ok
}

// Index returns the element at i of an array.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Value{}, false
	}
	return v.arr[i], true
}

// Lookup returns the child of v selected by step. The child shares storage
// with v.
func (v Value) Lookup(step PathStep) (Value, error) {
	if step.isIndex {
		if v.kind != KindArray {
			return Value{}, &Error{Code: ErrNotAnArray}
		}
		if step.index < 0 || step.index >= len(v.arr) {
			return Value{}, &Error{Code: ErrIndexOutOfBounds, Index: step.index}
		}
		return v.arr[step.index], nil
	}
	if v.kind != KindObject {
		return Value{}, &Error{Code: ErrNotAnObject, Key: step.key}
	}
	c, ok := v.obj[step.key]
	if !ok {
		return Value{}, &Error{Code: ErrKeyNotFound, Key: step.key}
	}
	return c, nil
}

// Elems returns the elements of an array, sharing storage with v.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// Set inserts or overwrites the member key of an object.
func (v *Value) Set(key string, c Value) error {
	if v.kind != KindObject {
		return &Error{Code: ErrNotAnObject, Key: key}
	}
	v.obj[key] = c
	return nil
}

// Delete removes the member key of an object.
func (v *Value) Delete(key string) error {
	if v.kind != KindObject {
		return &Error{Code: ErrNotAnObject, Key: key}
	}
	if _, ok := v.obj[key]; !ok {
		return &Error{Code: ErrKeyNotFound, Key: key}
	}
	delete(v.obj, key)
	return nil
}

// Append adds c at the end of an array.
func (v *Value) Append(c Value) error {
	if v.kind != KindArray {
		return &Error{Code: ErrNotAnArray}
	}
	v.arr = append(v.arr, c)
	return nil
}

// SetIndex replaces the element at i of an array.
func (v *Value) SetIndex(i int, c Value) error {
	if v.kind != KindArray {
		return &Error{Code: ErrNotAnArray}
	}
	if i < 0 || i >= len(v.arr) {
		return &Error{Code: ErrIndexOutOfBounds, Index: i}
	}
	v.arr[i] = c
	return nil
}

// RemoveIndex removes the element at i of an array, shifting later elements.
func (v *Value) RemoveIndex(i int) error {
	if v.kind != KindArray {
		return &Error{Code: ErrNotAnArray}
	}
	if i < 0 || i >= len(v.arr) {
		return &Error{Code: ErrIndexOutOfBounds, Index: i}
	}
	v.arr = slices.Delete(v.arr, i, i+1)
	return nil
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindArray:
		arr := make([]Value, len(v.arr))
		for i, c := range v.arr {
			arr[i] = c.Clone()
		}
		return Value{kind: KindArray, arr: arr}
	case KindObject:
		obj := make(map[string]Value, len(v.obj))
		for k, c := range v.obj {
			obj[k] = c.Clone()
		}
		return Value{kind: KindObject, obj: obj}
	case KindNull, KindBool, KindNumber, KindString:
	}
	return v
}

// Equal reports whether v and o are structurally equal. Numbers compare by
// value, so 1 and 1.0 are equal.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		if v.num == o.num {
			return true
		}
		a, errA := v.num.Float64()
		b, errB := o.num.Float64()
		return errA == nil && errB == nil && a == b
	case KindString:
		return v.str == o.str
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindObject:
		return maps.EqualFunc(v.obj, o.obj, Value.Equal)
	}
	return false
}

// Interface returns v as the generic Go representation used by
// encoding/json with UseNumber: nil, bool, json.Number, string, []any and
// map[string]any.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num
	case KindString:
		return v.str
	case KindArray:
		out := make([]any, len(v.arr))
		for i, c := range v.arr {
			out[i] = c.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, c := range v.obj {
			out[k] = c.Interface()
		}
		return out
	case KindNull:
	}
	return nil
}

// String returns the compact JSON encoding of v.
func (v Value) String() string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("!(%v)", err)
	}
	return string(b)
}

// fromInterface converts the generic decoded representation produced by
// encoding/json or gopkg.in/yaml.v3 into a Value.
func fromInterface(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t.Clone(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		return NumberFrom(t), nil
	case string:
		return String(t), nil
	case int:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint64:
		return NumberFrom(json.Number(strconv.FormatUint(t, 10))), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Value{}, fmt.Errorf("unsupported number %v", t)
		}
		return Float(t), nil
	case []any:
		arr := make([]Value, len(t))
		for i, e := range t {
			c, err := fromInterface(e)
			if err != nil {
				return Value{}, err
			}
			arr[i] = c
		}
		return Array(arr...), nil
	case map[string]any:
		obj := make(map[string]Value, len(t))
		for k, e := range t {
			c, err := fromInterface(e)
			if err != nil {
				return Value{}, err
			}
			obj[k] = c
		}
		return Object(obj), nil
	default:
		return Value{}, fmt.Errorf("unsupported type %T", x)
	}
}
