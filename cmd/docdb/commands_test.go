package main

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maruel/docdb/internal/config"
	"github.com/maruel/docdb/internal/docstore"
	"github.com/maruel/docdb/internal/jsondoc"
)

// docdb runs a command against the document at path and returns its output.
func docdb(t *testing.T, path, stdin string, args ...string) (string, error) {
	t.Helper()
	cfg := config.Default()
	cfg.DB = path
	cfg.Pretty = false
	s, err := docstore.Open(path, cfg.StoreOptions(slog.New(slog.DiscardHandler))...)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	err = run(t.Context(), s, &cfg, strings.NewReader(stdin), &out, args)
	return out.String(), err
}

func TestCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	steps := []struct {
		args  []string
		stdin string
		want  string
	}{
		{[]string{"get"}, "", "{}\n"},
		{[]string{"set", "/user", `{"name":"ada","tags":[]}`}, "", ""},
		{[]string{"push", "/user/tags", `"x"`}, "", ""},
		{[]string{"push", "/user/tags", `"y"`}, "", ""},
		{[]string{"set", "/user/tags/0", `"z"`}, "", ""},
		{[]string{"get", "/user/tags"}, "", "[\"z\",\"y\"]\n"},
		{[]string{"delete", "/user/tags/1"}, "", ""},
		{[]string{"set", "/a~1b", "1"}, "", ""},
		{[]string{"get", "/a~1b"}, "", "1\n"},
		{[]string{"set", "/", "5"}, "", ""},
		{[]string{"get", "/"}, "", "5\n"},
		{[]string{"delete", "/"}, "", ""},
		{[]string{"patch", "-"}, `[{"op":"remove","path":"/a~1b"}]`, ""},
		{[]string{"export"}, "", `{"user":{"name":"ada","tags":["z"]}}` + "\n"},
		{[]string{"export", "-format", "yaml"}, "", "user:\n    name: ada\n    tags:\n        - z\n"},
	}
	for _, st := range steps {
		got, err := docdb(t, path, st.stdin, st.args...)
		if err != nil {
			t.Fatalf("%v: %v", st.args, err)
		}
		if got != st.want {
			t.Errorf("%v = %q, want %q", st.args, got, st.want)
		}
	}
}

func TestCommandErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"list":[1],"obj":{}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		args []string
		want error
	}{
		{[]string{"get", "/missing"}, jsondoc.ErrKeyNotFound},
		{[]string{"push", "/obj", "1"}, jsondoc.ErrNotAnArray},
		{[]string{"delete", "/list/5"}, jsondoc.ErrIndexOutOfBounds},
		{[]string{"delete", "/list/00"}, jsondoc.ErrInvalidPath},
		{[]string{"get", "/list/01"}, jsondoc.ErrInvalidPath},
		{[]string{"set", "/obj", "{"}, jsondoc.ErrDeserialize},
		{[]string{"patch", "-"}, jsondoc.ErrPatch},
	}
	for _, tt := range tests {
		if _, err := docdb(t, path, "[{}]", tt.args...); !errors.Is(err, tt.want) {
			t.Errorf("%v = %v, want %v", tt.args, err, tt.want)
		}
	}
	if _, err := docdb(t, path, "", "frobnicate"); err == nil {
		t.Error("unknown command accepted")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"list":[1],"obj":{}}` {
		t.Errorf("document rewritten by failed commands: %s", data)
	}
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")
	src := filepath.Join(dir, "in.yaml")
	if err := os.WriteFile(src, []byte("a: 1\nb: [true, null]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := docdb(t, path, "", "import", src); err != nil {
		t.Fatal(err)
	}
	got, err := docdb(t, path, "", "get")
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"a":1,"b":[true,null]}`+"\n" {
		t.Errorf("get = %q", got)
	}
}

func TestSplitPointer(t *testing.T) {
	tests := []struct {
		in, parent, last string
		ok               bool
	}{
		{"", "", "", false},
		{"/", "", "", true},
		{"/a/", "/a", "", true},
		{"/a", "", "a", true},
		{"/a/b/0", "/a/b", "0", true},
		{"/a~1b/c~0d", "/a~1b", "c~d", true},
		{"a", "", "a", true},
	}
	for _, tt := range tests {
		parent, last, ok := splitPointer(tt.in)
		if parent != tt.parent || last != tt.last || ok != tt.ok {
			t.Errorf("splitPointer(%q) = %q, %q, %v", tt.in, parent, last, ok)
		}
	}
}
