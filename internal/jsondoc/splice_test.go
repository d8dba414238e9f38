package jsondoc

import (
	"errors"
	"testing"
)

func TestSplice(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		path    Path
		value   Value
		want    string
		wantErr ErrorCode
	}{
		{
			name:  "empty path replaces document",
			doc:   `{"a":1}`,
			path:  nil,
			value: Array(Int(1)),
			want:  `[1]`,
		},
		{
			name:  "object member",
			doc:   `{"a":{"b":1}}`,
			path:  Path{Key("a"), Key("b")},
			value: String("x"),
			want:  `{"a":{"b":"x"}}`,
		},
		{
			name:  "array element",
			doc:   `{"a":[1,2,3]}`,
			path:  Path{Key("a"), Index(1)},
			value: Bool(true),
			want:  `{"a":[1,true,3]}`,
		},
		{
			name:    "missing key",
			doc:     `{"a":{}}`,
			path:    Path{Key("a"), Key("b")},
			value:   Null(),
			wantErr: ErrInvalidPath,
		},
		{
			name:    "key step on array",
			doc:     `{"a":[1]}`,
			path:    Path{Key("a"), Key("b")},
			value:   Null(),
			wantErr: ErrInvalidPath,
		},
		{
			name:    "index step on object",
			doc:     `{"a":{"0":1}}`,
			path:    Path{Key("a"), Index(0)},
			value:   Null(),
			wantErr: ErrInvalidPath,
		},
		{
			name:    "index out of range",
			doc:     `{"a":[1]}`,
			path:    Path{Key("a"), Index(1)},
			value:   Null(),
			wantErr: ErrIndexOutOfBounds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustParse(t, tt.doc)
			before := doc.Clone()
			err := Splice(&doc, tt.path, tt.value)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Splice() error = %v, want %v", err, tt.wantErr)
				}
				if !doc.Equal(before) {
					t.Errorf("document modified on error: %s", doc)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got := doc.String(); got != tt.want {
				t.Errorf("Splice() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSpliceErrorLocation(t *testing.T) {
	doc := mustParse(t, `{"a":{"b":{}}}`)
	err := Splice(&doc, Path{Key("a"), Key("b"), Key("c"), Key("d")}, Null())
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Splice() = %v", err)
	}
	if e.Code != ErrInvalidPath || e.Path != "/a/b/c" {
		t.Errorf("Splice() = %v", e)
	}
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("cause not reported: %v", err)
	}
}

func TestSpliceIdempotent(t *testing.T) {
	doc := mustParse(t, `{"list":[{"id":1},{"id":2}]}`)
	p := Path{Key("list"), Index(0)}
	v := mustParse(t, `{"id":10}`)
	for range 2 {
		if err := Splice(&doc, p, v.Clone()); err != nil {
			t.Fatal(err)
		}
	}
	if got := doc.String(); got != `{"list":[{"id":10},{"id":2}]}` {
		t.Errorf("got %s", got)
	}
}
