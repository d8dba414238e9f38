package jsondoc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPath(t *testing.T) {
	t.Run("String", func(t *testing.T) {
		tests := []struct {
			path Path
			want string
		}{
			{nil, ""},
			{Path{Key("a")}, "/a"},
			{Path{Key("a"), Index(3), Key("b")}, "/a/3/b"},
			{Path{Key("a/b"), Key("c~d")}, "/a~1b/c~0d"},
			{Path{Key("")}, "/"},
		}
		for _, tt := range tests {
			if got := tt.path.String(); got != tt.want {
				t.Errorf("%#v.String() = %q, want %q", tt.path, got, tt.want)
			}
		}
	})

	t.Run("Append does not alias", func(t *testing.T) {
		base := make(Path, 1, 4)
		base[0] = Key("a")
		p1 := base.Append(Key("b"))
		p2 := base.Append(Key("c"))
		if p1.String() != "/a/b" || p2.String() != "/a/c" {
			t.Errorf("p1 = %s, p2 = %s", p1, p2)
		}
	})

	t.Run("TrimPrefix", func(t *testing.T) {
		p := Path{Key("a"), Index(1), Key("b")}
		if got := p.TrimPrefix(Path{Key("a")}).String(); got != "/1/b" {
			t.Errorf("TrimPrefix(/a) = %q", got)
		}
		if got := p.TrimPrefix(Path{Key("x")}).String(); got != "/a/1/b" {
			t.Errorf("TrimPrefix(/x) = %q", got)
		}
		if got := p.TrimPrefix(p); len(got) != 0 {
			t.Errorf("TrimPrefix(self) = %q", got)
		}
		// An index step never matches a key step with the same text.
		if p.HasPrefix(Path{Key("a"), Key("1")}) {
			t.Error("key \"1\" matched index 1")
		}
	})
}

func TestParsePointer(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"/", []string{""}},
		{"/a/b", []string{"a", "b"}},
		{"a/b", []string{"a", "b"}},
		{"/a~1b/c~0d", []string{"a/b", "c~d"}},
		{"/~01", []string{"~1"}},
		{"/a//b", []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParsePointer(tt.in)); diff != "" {
				t.Errorf("ParsePointer(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"0", 0, true},
		{"10", 10, true},
		{"01", 0, false},
		{"-", 0, false},
		{"+1", 0, false},
		{"-1", 0, false},
		{"", 0, false},
		{"1a", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseIndex(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseIndex(%q) = %d, %t, want %d, %t", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
