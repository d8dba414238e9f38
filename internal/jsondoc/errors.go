package jsondoc

import (
	"fmt"
	"strings"
)

// ErrorCode identifies the kind of failure of a document operation.
//
// ErrorCode implements error so the constants can be used as targets for
// errors.Is:
//
//	if errors.Is(err, jsondoc.ErrKeyNotFound) { ... }
type ErrorCode string

const (
	// ErrNotAnObject is returned when an object operation targets another kind.
	ErrNotAnObject ErrorCode = "NOT_AN_OBJECT"
	// ErrNotAnArray is returned when an array operation targets another kind.
	ErrNotAnArray ErrorCode = "NOT_AN_ARRAY"
	// ErrKeyNotFound is returned when an object does not contain the key.
	ErrKeyNotFound ErrorCode = "KEY_NOT_FOUND"
	// ErrIndexOutOfBounds is returned when an array index is out of range.
	ErrIndexOutOfBounds ErrorCode = "INDEX_OUT_OF_BOUNDS"
	// ErrInvalidPath is returned when a recorded path no longer resolves
	// against the document it is merged into.
	ErrInvalidPath ErrorCode = "INVALID_JSON_PATH"
	// ErrTypeMismatch is returned when a value cannot be decoded into the
	// requested Go type.
	ErrTypeMismatch ErrorCode = "TYPE_MISMATCH"
	// ErrLenNotDefined is returned when the length of a scalar is requested.
	ErrLenNotDefined ErrorCode = "LEN_NOT_DEFINED"
	// ErrLockReleased is returned when a guarded view is used after its lock
	// was released.
	ErrLockReleased ErrorCode = "LOCK_RELEASED"
	// ErrIO is returned when the persistence backend fails.
	ErrIO ErrorCode = "IO"
	// ErrDeserialize is returned when bytes cannot be parsed into a Value.
	ErrDeserialize ErrorCode = "DESERIALIZE"
	// ErrSerialize is returned when a Go value cannot be converted to a Value
	// or a Value cannot be encoded.
	ErrSerialize ErrorCode = "SERIALIZE"
	// ErrPatch is returned when a JSON patch cannot be decoded or applied.
	ErrPatch ErrorCode = "PATCH_FAILED"
)

var codeMessages = map[ErrorCode]string{
	ErrNotAnObject:      "not an object",
	ErrNotAnArray:       "not an array",
	ErrKeyNotFound:      "key not found",
	ErrIndexOutOfBounds: "index out of bounds",
	ErrInvalidPath:      "invalid JSON path",
	ErrTypeMismatch:     "type mismatch",
	ErrLenNotDefined:    "length not defined",
	ErrLockReleased:     "lock already released",
	ErrIO:               "I/O error",
	ErrDeserialize:      "deserialize error",
	ErrSerialize:        "serialize error",
	ErrPatch:            "patch failed",
}

// Error implements the error interface.
func (c ErrorCode) Error() string {
	if m, ok := codeMessages[c]; ok {
		return m
	}
	return strings.ToLower(string(c))
}

// Error is the concrete error returned by this package and by the store.
type Error struct {
	// Code is the kind of failure.
	Code ErrorCode
	// Path is the JSON pointer of the value the operation was applied to.
	Path string
	// Key is the object key involved, if any.
	Key string
	// Index is the array index involved, if any. Only meaningful for
	// ErrIndexOutOfBounds.
	Index int
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.Error())
	switch e.Code {
	case ErrKeyNotFound, ErrNotAnObject:
		if e.Key != "" {
			fmt.Fprintf(&b, " %q", e.Key)
		}
	case ErrIndexOutOfBounds:
		fmt.Fprintf(&b, " %d", e.Index)
	default:
	}
	if e.Path != "" {
		fmt.Fprintf(&b, " at %s", e.Path)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Is reports whether target is the ErrorCode of e.
func (e *Error) Is(target error) bool {
	c, ok := target.(ErrorCode)
	return ok && c == e.Code
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns an *Error with code c wrapping err.
func (c ErrorCode) Wrap(err error) *Error {
	return &Error{Code: c, Err: err}
}

func errAt(c ErrorCode, p Path) *Error {
	return &Error{Code: c, Path: p.String()}
}
