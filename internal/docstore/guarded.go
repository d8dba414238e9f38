package docstore

import (
	"github.com/maruel/docdb/internal/jsondoc"
)

// cursor is the narrowed location shared by ReadView and WriteView. value
// aliases the locked document.
type cursor struct {
	value    jsondoc.Value
	path     jsondoc.Path
	released bool
}

func (c *cursor) check() error {
	if c.released {
		return &jsondoc.Error{Code: jsondoc.ErrLockReleased, Path: c.path.String()}
	}
	return nil
}

func (c *cursor) descend(step jsondoc.PathStep) error {
	if err := c.check(); err != nil {
		return err
	}
	v, p, err := jsondoc.Descend(c.value, c.path, step)
	if err != nil {
		return err
	}
	c.value, c.path = v, p
	return nil
}

func (c *cursor) walk(pointer string) error {
	if err := c.check(); err != nil {
		return err
	}
	v, p, err := jsondoc.DescendPointer(c.value, c.path, pointer)
	if err != nil {
		return err
	}
	c.value, c.path = v, p
	return nil
}

// Path returns the path of the narrowed location.
func (c *cursor) Path() jsondoc.Path {
	return c.path.Clone()
}

// Value returns a copy of the value at the narrowed location.
func (c *cursor) Value() (jsondoc.Value, error) {
	if err := c.check(); err != nil {
		return jsondoc.Value{}, err
	}
	return c.value.Clone(), nil
}

// Tree returns a detached View of the narrowed location. The View can be
// mutated and merged back with Store.Merge after the guard is released.
func (c *cursor) Tree() (*jsondoc.View, error) {
	if err := c.check(); err != nil {
		return nil, err
	}
	return jsondoc.NewView(c.value, c.path), nil
}

// Kind returns the kind of the value at the narrowed location.
func (c *cursor) Kind() (jsondoc.Kind, error) {
	if err := c.check(); err != nil {
		return jsondoc.KindNull, err
	}
	return c.value.Kind(), nil
}

// Len returns the length of the array or object at the narrowed location.
func (c *cursor) Len() (int, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	n, err := c.value.Len()
	if err != nil {
		return 0, &jsondoc.Error{Code: jsondoc.ErrLenNotDefined, Path: c.path.String()}
	}
	return n, nil
}

// Decode decodes the value at the narrowed location into out.
func (c *cursor) Decode(out any) error {
	if err := c.check(); err != nil {
		return err
	}
	if err := c.value.Decode(out); err != nil {
		if e, ok := err.(*jsondoc.Error); ok {
			e.Path = c.path.String()
		}
		return err
	}
	return nil
}

// ReadView holds the shared lock of a Store on a narrowed location of the
// document.
//
// Navigation narrows the guard in place and returns the receiver; on error
// the guard keeps its location. Every call made after Release fails with
// jsondoc.ErrLockReleased.
type ReadView struct {
	cursor
	st *state
}

// Get narrows the guard to the member key of an object.
func (r *ReadView) Get(key string) (*ReadView, error) {
	return r, r.descend(jsondoc.Key(key))
}

// At narrows the guard to the element at index of an array.
func (r *ReadView) At(index int) (*ReadView, error) {
	return r, r.descend(jsondoc.Index(index))
}

// Walk narrows the guard along an RFC 6901 pointer relative to the current
// location.
func (r *ReadView) Walk(pointer string) (*ReadView, error) {
	return r, r.walk(pointer)
}

// Release releases the shared lock. It is safe to call more than once.
func (r *ReadView) Release() {
	if r.released {
		return
	}
	r.released = true
	r.value = jsondoc.Value{}
	r.st.mu.RUnlock()
}

// ReadInto decodes the value at the location of r into a new T.
func ReadInto[T any](r *ReadView) (T, error) {
	var out T
	err := r.Decode(&out)
	return out, err
}

// WriteView holds the exclusive lock of a Store on a narrowed location of the
// document.
//
// Navigation behaves like ReadView. Mutations apply to a copy of the narrowed
// value which is then spliced into the document before the call returns; the
// document is unchanged when a mutation fails.
type WriteView struct {
	cursor
	st *state
}

// Get narrows the guard to the member key of an object.
func (w *WriteView) Get(key string) (*WriteView, error) {
	return w, w.descend(jsondoc.Key(key))
}

// At narrows the guard to the element at index of an array.
func (w *WriteView) At(index int) (*WriteView, error) {
	return w, w.descend(jsondoc.Index(index))
}

// Walk narrows the guard along an RFC 6901 pointer relative to the current
// location.
func (w *WriteView) Walk(pointer string) (*WriteView, error) {
	return w, w.walk(pointer)
}

// Insert serializes x and stores it as the member key of an object.
func (w *WriteView) Insert(key string, x any) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.Insert(key, x)
		return err
	})
}

// Remove deletes the member key of an object.
func (w *WriteView) Remove(key string) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.Remove(key)
		return err
	})
}

// RemoveAt deletes the element at index of an array.
func (w *WriteView) RemoveAt(index int) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.RemoveAt(index)
		return err
	})
}

// Push serializes x and appends it to an array.
func (w *WriteView) Push(x any) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.Push(x)
		return err
	})
}

// ForEach calls fn on every element of an array, in order.
func (w *WriteView) ForEach(fn func(*jsondoc.Value)) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.ForEach(fn)
		return err
	})
}

// Replace serializes x and makes it the value at the narrowed location.
func (w *WriteView) Replace(x any) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.Replace(x)
		return err
	})
}

// MergeFrom splices other into the narrowed location; see jsondoc.View.MergeFrom.
func (w *WriteView) MergeFrom(other *jsondoc.View) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.MergeFrom(other)
		return err
	})
}

// ApplyPatch applies an RFC 6902 JSON patch to the narrowed location.
func (w *WriteView) ApplyPatch(patch []byte) (*WriteView, error) {
	return w, w.mutate(func(v *jsondoc.View) error {
		_, err := v.ApplyPatch(patch)
		return err
	})
}

// Release releases the exclusive lock. It is safe to call more than once.
func (w *WriteView) Release() {
	if w.released {
		return
	}
	w.released = true
	w.value = jsondoc.Value{}
	w.st.mu.Unlock()
}

func (w *WriteView) mutate(fn func(v *jsondoc.View) error) error {
	if err := w.check(); err != nil {
		return err
	}
	v := jsondoc.NewView(w.value, w.path)
	if err := fn(v); err != nil {
		return err
	}
	next := v.Value()
	if err := jsondoc.Splice(&w.st.root, w.path, next); err != nil {
		return err
	}
	w.value = next
	w.st.commit()
	return nil
}
