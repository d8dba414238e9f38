package jsondoc

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch"
)

// View is a detached value together with the Path used to reach it from the
// root of some document.
//
// A View exclusively owns its value: navigation clones the selected child and
// the mutators only modify the receiver. Mutators return the receiver so calls
// can be chained. A View does not hold any lock; hand it to Store.Merge to
// write it back.
type View struct {
	value Value
	path  Path
}

// NewView returns a View owning a copy of value, reached through path.
func NewView(value Value, path Path) *View {
	return &View{value: value.Clone(), path: path.Clone()}
}

// Value returns a clone of the view's value.
func (v *View) Value() Value {
	return v.value.Clone()
}

// Path returns the path of the view.
func (v *View) Path() Path {
	return v.path.Clone()
}

// Kind returns the kind of the view's value.
func (v *View) Kind() Kind {
	return v.value.kind
}

// Len returns the length of an array or object view.
func (v *View) Len() (int, error) {
	n, err := v.value.Len()
	if err != nil {
		return 0, errAt(ErrLenNotDefined, v.path)
	}
	return n, nil
}

// IsEmpty reports whether the view holds an empty array or object.
func (v *View) IsEmpty() bool {
	return v.value.IsEmpty()
}

// Clone returns an independent copy of v.
func (v *View) Clone() *View {
	return &View{value: v.value.Clone(), path: v.path.Clone()}
}

// String returns the path and compact JSON of the view.
func (v *View) String() string {
	p := v.path.String()
	if p == "" {
		p = "/"
	}
	return p + " = " + v.value.String()
}

// Get returns a new View on the member key of an object view.
func (v *View) Get(key string) (*View, error) {
	return v.descend(Key(key))
}

// At returns a new View on the element at index of an array view.
func (v *View) At(index int) (*View, error) {
	return v.descend(Index(index))
}

// Walk returns a new View on the value designated by the RFC 6901 pointer,
// relative to v.
func (v *View) Walk(pointer string) (*View, error) {
	c, p, err := DescendPointer(v.value, v.path, pointer)
	if err != nil {
		return nil, err
	}
	return &View{value: c.Clone(), path: p}, nil
}

func (v *View) descend(step PathStep) (*View, error) {
	c, p, err := Descend(v.value, v.path, step)
	if err != nil {
		return nil, err
	}
	return &View{value: c.Clone(), path: p}, nil
}

// Insert serializes x and stores it as the member key of an object view,
// overwriting any previous member.
func (v *View) Insert(key string, x any) (*View, error) {
	if v.value.kind != KindObject {
		return v, &Error{Code: ErrNotAnObject, Path: v.path.String(), Key: key}
	}
	c, err := FromGo(x)
	if err != nil {
		return v, err
	}
	v.value.obj[key] = c
	return v, nil
}

// Remove deletes the member key of an object view.
func (v *View) Remove(key string) (*View, error) {
	if err := v.value.Delete(key); err != nil {
		return v, at(err, v.path)
	}
	return v, nil
}

// RemoveAt deletes the element at index of an array view.
func (v *View) RemoveAt(index int) (*View, error) {
	if err := v.value.RemoveIndex(index); err != nil {
		return v, at(err, v.path)
	}
	return v, nil
}

// Push serializes x and appends it to an array view.
func (v *View) Push(x any) (*View, error) {
	if v.value.kind != KindArray {
		return v, errAt(ErrNotAnArray, v.path)
	}
	c, err := FromGo(x)
	if err != nil {
		return v, err
	}
	v.value.arr = append(v.value.arr, c)
	return v, nil
}

// ForEach calls fn on every element of an array view, in order. fn may modify
// the element in place.
func (v *View) ForEach(fn func(*Value)) (*View, error) {
	if v.value.kind != KindArray {
		return v, errAt(ErrNotAnArray, v.path)
	}
	for i := range v.value.arr {
		fn(&v.value.arr[i])
	}
	return v, nil
}

// Replace serializes x and makes it the whole value of the view.
func (v *View) Replace(x any) (*View, error) {
	c, err := FromGo(x)
	if err != nil {
		return v, err
	}
	v.value = c
	return v, nil
}

// MergeFrom splices the value of other into v at other's path.
//
// other's path is interpreted relative to v; when it starts with v's own path
// (other was navigated from v), that prefix is dropped first. v is unchanged
// on error.
func (v *View) MergeFrom(other *View) (*View, error) {
	rel := other.path.TrimPrefix(v.path)
	if err := Splice(&v.value, rel, other.value.Clone()); err != nil {
		return v, err
	}
	return v, nil
}

// ApplyPatch applies an RFC 6902 JSON patch to the view's value. v is
// unchanged on error.
func (v *View) ApplyPatch(patch []byte) (*View, error) {
	next, err := ApplyPatch(v.value, patch)
	if err != nil {
		return v, at(err, v.path)
	}
	v.value = next
	return v, nil
}

// Decode decodes the view's value into out.
func (v *View) Decode(out any) error {
	if err := v.value.Decode(out); err != nil {
		if e, ok := err.(*Error); ok {
			e.Path = v.path.String()
		}
		return err
	}
	return nil
}

// Descend returns the child of v selected by step and base extended with
// step. The child shares storage with v. Errors report base as location.
func Descend(v Value, base Path, step PathStep) (Value, Path, error) {
	c, err := v.Lookup(step)
	if err != nil {
		return Value{}, nil, at(err, base)
	}
	return c, base.Append(step), nil
}

// DescendPointer resolves an RFC 6901 pointer relative to v. Each token is an
// array index when the current value is an array and an object key otherwise.
// Array indexes must be canonical decimal numbers: "01" and "-" are rejected.
func DescendPointer(v Value, base Path, pointer string) (Value, Path, error) {
	cur, p := v, base
	for _, tok := range ParsePointer(pointer) {
		var step PathStep
		if cur.kind == KindArray {
			i, ok := ParseIndex(tok)
			if !ok {
				return Value{}, nil, &Error{Code: ErrInvalidPath, Path: p.String() + "/" + escapeToken(tok)}
			}
			step = Index(i)
		} else {
			step = Key(tok)
		}
		var err error
		if cur, p, err = Descend(cur, p, step); err != nil {
			return Value{}, nil, err
		}
	}
	return cur, p, nil
}

// ApplyPatch returns the result of applying an RFC 6902 JSON patch to v. v is
// not modified.
func ApplyPatch(v Value, patch []byte) (Value, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return Value{}, ErrPatch.Wrap(err)
	}
	doc, err := json.Marshal(v)
	if err != nil {
		return Value{}, ErrPatch.Wrap(err)
	}
	out, err := ops.Apply(doc)
	if err != nil {
		return Value{}, ErrPatch.Wrap(err)
	}
	next, err := Parse(out)
	if err != nil {
		return Value{}, ErrPatch.Wrap(err)
	}
	return next, nil
}

// at sets the location of err when it is an *Error without one.
func at(err error, p Path) error {
	if e, ok := err.(*Error); ok && e.Path == "" {
		e.Path = p.String()
	}
	return err
}
