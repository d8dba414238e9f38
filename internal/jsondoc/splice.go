package jsondoc

// Splice replaces the value found at path inside doc with v.
//
// The path is resolved step by step against the current content of doc: a key
// step requires an object containing the key and an index step requires an
// array, otherwise ErrInvalidPath is returned; an out of range index returns
// ErrIndexOutOfBounds. doc is only written once every step resolved, so on
// error it is left untouched. An empty path replaces the whole document.
//
// v is stored as is; callers that keep using v must pass a clone.
func Splice(doc *Value, path Path, v Value) error {
	return splice(doc, path, 0, v)
}

func splice(cur *Value, path Path, depth int, v Value) error {
	if depth == len(path) {
		*cur = v
		return nil
	}
	step := path[depth]
	if step.isIndex {
		if cur.kind != KindArray {
			return &Error{Code: ErrInvalidPath, Path: path[:depth+1].String(), Err: &Error{Code: ErrNotAnArray}}
		}
		if step.index < 0 || step.index >= len(cur.arr) {
			return &Error{Code: ErrIndexOutOfBounds, Path: path[:depth].String(), Index: step.index}
		}
		return splice(&cur.arr[step.index], path, depth+1, v)
	}
	if cur.kind != KindObject {
		return &Error{Code: ErrInvalidPath, Path: path[:depth+1].String(), Err: &Error{Code: ErrNotAnObject, Key: step.key}}
	}
	child, ok := cur.obj[step.key]
	if !ok {
		return &Error{Code: ErrInvalidPath, Path: path[:depth+1].String(), Err: &Error{Code: ErrKeyNotFound, Key: step.key}}
	}
	if err := splice(&child, path, depth+1, v); err != nil {
		return err
	}
	cur.obj[step.key] = child
	return nil
}
