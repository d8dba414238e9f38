package jsondoc

import (
	"strconv"
	"strings"
)

// PathStep is one step of a Path: either an object key or an array index.
type PathStep struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a step descending into the object member key.
func Key(key string) PathStep {
	return PathStep{key: key}
}

// Index returns a step descending into the array element at index.
func Index(index int) PathStep {
	return PathStep{index: index, isIndex: true}
}

// IsIndex reports whether s is an array index step.
func (s PathStep) IsIndex() bool {
	return s.isIndex
}

// Key returns the object key of a key step.
func (s PathStep) Key() string {
	return s.key
}

// Index returns the array index of an index step.
func (s PathStep) Index() int {
	return s.index
}

// String returns the step as a JSON pointer reference token.
func (s PathStep) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return escapeToken(s.key)
}

// Path records how a value was reached from a document root.
//
// A Path is meaningful only relative to the snapshot it was recorded against.
// Paths are never modified in place; Append returns a new Path.
type Path []PathStep

// Append returns a copy of p extended with steps.
func (p Path) Append(steps ...PathStep) Path {
	out := make(Path, 0, len(p)+len(steps))
	out = append(out, p...)
	return append(out, steps...)
}

// Clone returns a copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Equal reports whether p and o contain the same steps.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether p starts with prefix.
func (p Path) HasPrefix(prefix Path) bool {
	return len(p) >= len(prefix) && p[:len(prefix)].Equal(prefix)
}

// TrimPrefix returns p without prefix. p is returned unchanged if it does not
// start with prefix.
func (p Path) TrimPrefix(prefix Path) Path {
	if !p.HasPrefix(prefix) {
		return p
	}
	return p[len(prefix):].Clone()
}

// String returns p as an RFC 6901 JSON pointer. The root is "".
func (p Path) String() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// ParsePointer splits an RFC 6901 JSON pointer into unescaped reference
// tokens. "" denotes the root and returns no tokens; "/" is the member named
// "". A pointer not starting with "/" is accepted as a relative pointer.
func ParsePointer(pointer string) []string {
	if pointer == "" {
		return nil
	}
	pointer = strings.TrimPrefix(pointer, "/")
	tokens := strings.Split(pointer, "/")
	for i, t := range tokens {
		tokens[i] = unescapeToken(t)
	}
	return tokens
}

// ParseIndex parses an array index reference token: "0" or a decimal number
// without leading zero.
func ParseIndex(token string) (int, bool) {
	if token == "" || len(token) > 1 && token[0] == '0' {
		return 0, false
	}
	for _, c := range token {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	i, err := strconv.Atoi(token)
	return i, err == nil
}

func escapeToken(key string) string {
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}

func unescapeToken(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}
