package jsondoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler. Numbers keep their literal text.
func (v *Value) UnmarshalJSON(data []byte) error {
	p, err := Parse(data)
	if err != nil {
		return err
	}
	*v = p
	return nil
}

// Parse decodes a single JSON document.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return Value{}, ErrDeserialize.Wrap(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, ErrDeserialize.Wrap(errors.New("trailing data after JSON value"))
	}
	v, err := fromInterface(x)
	if err != nil {
		return Value{}, ErrDeserialize.Wrap(err)
	}
	return v, nil
}

// Encode returns the JSON encoding of v, indented with two spaces when pretty
// is set.
func Encode(v Value, pretty bool) ([]byte, error) {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, ErrSerialize.Wrap(err)
	}
	return data, nil
}

// FromGo converts any JSON-serializable Go value into a Value by encoding it
// with encoding/json. A Value or *Value argument is cloned.
func FromGo(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t.Clone(), nil
	case *Value:
		if t == nil {
			return Null(), nil
		}
		return t.Clone(), nil
	}
	data, err := json.Marshal(x)
	if err != nil {
		return Value{}, ErrSerialize.Wrap(err)
	}
	v, err := Parse(data)
	if err != nil {
		return Value{}, ErrSerialize.Wrap(err)
	}
	return v, nil
}

// Into decodes v into a new T.
func Into[T any](v Value) (T, error) {
	var out T
	err := v.Decode(&out)
	return out, err
}

// Decode decodes v into out, which must be a non-nil pointer.
func (v Value) Decode(out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return ErrSerialize.Wrap(err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return ErrTypeMismatch.Wrap(err)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler. Numbers are emitted as integers when
// they are integral and as floats otherwise.
func (v Value) MarshalYAML() (any, error) {
	return v.yamlInterface()
}

func (v Value) yamlInterface() (any, error) {
	switch v.kind {
	case KindNumber:
		if i, err := v.num.Int64(); err == nil {
			return i, nil
		}
		f, err := v.num.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", v.num, err)
		}
		return f, nil
	case KindArray:
		out := make([]any, len(v.arr))
		for i, c := range v.arr {
			y, err := c.yamlInterface()
			if err != nil {
				return nil, err
			}
			out[i] = y
		}
		return out, nil
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, c := range v.obj {
			y, err := c.yamlInterface()
			if err != nil {
				return nil, err
			}
			out[k] = y
		}
		return out, nil
	case KindNull, KindBool, KindString:
	}
	return v.Interface(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler. Mapping keys must be strings;
// timestamps are kept as RFC 3339 strings.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var x any
	if err := node.Decode(&x); err != nil {
		return ErrDeserialize.Wrap(err)
	}
	x, err := normalizeYAML(x)
	if err != nil {
		return ErrDeserialize.Wrap(err)
	}
	p, err := fromInterface(x)
	if err != nil {
		return ErrDeserialize.Wrap(err)
	}
	*v = p
	return nil
}

// ParseYAML decodes a single YAML document.
func ParseYAML(data []byte) (Value, error) {
	var v Value
	if err := yaml.Unmarshal(data, &v); err != nil {
		var e *Error
		if errors.As(err, &e) {
			return Value{}, err
		}
		return Value{}, ErrDeserialize.Wrap(err)
	}
	return v, nil
}

func normalizeYAML(x any) (any, error) {
	switch t := x.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case float32:
		return float64(t), nil
	case uint:
		return json.Number(strconv.FormatUint(uint64(t), 10)), nil
	case []any:
		for i, e := range t {
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			t[i] = n
		}
		return t, nil
	case map[string]any:
		for k, e := range t {
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			t[k] = n
		}
		return t, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("mapping key %v is not a string", k)
			}
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	}
	return x, nil
}
