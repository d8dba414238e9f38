package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/maruel/docdb/internal/config"
	"github.com/maruel/docdb/internal/docstore"
	"github.com/maruel/docdb/internal/jsondoc"
	"gopkg.in/yaml.v3"
)

// env is what a command operates on.
type env struct {
	s      *docstore.Store
	cfg    *config.Config
	stdin  io.Reader
	stdout io.Writer
}

type command struct {
	name  string
	usage string
	help  string
	// mutates commands write the document back when it is dirty.
	mutates bool
	run     func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{"get", "get [pointer]", "print the value at pointer", false, cmdGet},
	{"set", "set <pointer> <json>", "set the value at pointer", true, cmdSet},
	{"delete", "delete <pointer>", "remove a key or an array element", true, cmdDelete},
	{"push", "push <pointer> <json>", "append to the array at pointer", true, cmdPush},
	{"patch", "patch <file|->", "apply an RFC 6902 JSON patch", true, cmdPatch},
	{"export", "export [-format json|yaml]", "print the whole document", false, cmdExport},
	{"import", "import <file|->", "replace the document with JSON or YAML", true, cmdImport},
	{"watch", "watch", "reload the document on external changes", false, cmdWatch},
}

func run(ctx context.Context, s *docstore.Store, cfg *config.Config, stdin io.Reader, stdout io.Writer, args []string) error {
	e := &env{s: s, cfg: cfg, stdin: stdin, stdout: stdout}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		if err := c.run(ctx, e, args[1:]); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
		if c.mutates && s.Dirty() {
			if err := s.Write(); err != nil {
				return fmt.Errorf("%s: %w", c.name, err)
			}
			slog.DebugContext(ctx, "document written", "db", s.Name(), "rev", s.Revision())
		}
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func cmdGet(_ context.Context, e *env, args []string) error {
	if len(args) > 1 {
		return errors.New("usage: get [pointer]")
	}
	pointer := ""
	if len(args) == 1 {
		pointer = args[0]
	}
	return e.s.View(func(r *docstore.ReadView) error {
		if _, err := r.Walk(pointer); err != nil {
			return err
		}
		v, err := r.Value()
		if err != nil {
			return err
		}
		return e.writeJSON(v)
	})
}

func cmdSet(_ context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: set <pointer> <json>")
	}
	v, err := jsondoc.Parse([]byte(args[1]))
	if err != nil {
		return err
	}
	parent, last, ok := splitPointer(args[0])
	if !ok {
		return e.s.Merge(jsondoc.NewView(v, nil))
	}
	return e.s.Modify(func(w *docstore.WriteView) error {
		if _, err := w.Walk(parent); err != nil {
			return err
		}
		k, err := w.Kind()
		if err != nil {
			return err
		}
		if k == jsondoc.KindArray {
			i, err := parseIndex(last)
			if err != nil {
				return err
			}
			if _, err := w.At(i); err != nil {
				return err
			}
			_, err = w.Replace(v)
			return err
		}
		_, err = w.Insert(last, v)
		return err
	})
}

func cmdDelete(_ context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <pointer>")
	}
	parent, last, ok := splitPointer(args[0])
	if !ok {
		return errors.New("cannot delete the root")
	}
	return e.s.Modify(func(w *docstore.WriteView) error {
		if _, err := w.Walk(parent); err != nil {
			return err
		}
		k, err := w.Kind()
		if err != nil {
			return err
		}
		if k == jsondoc.KindArray {
			i, err := parseIndex(last)
			if err != nil {
				return err
			}
			_, err = w.RemoveAt(i)
			return err
		}
		_, err = w.Remove(last)
		return err
	})
}

func cmdPush(_ context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: push <pointer> <json>")
	}
	v, err := jsondoc.Parse([]byte(args[1]))
	if err != nil {
		return err
	}
	return e.s.Modify(func(w *docstore.WriteView) error {
		if _, err := w.Walk(args[0]); err != nil {
			return err
		}
		_, err := w.Push(v)
		return err
	})
}

func cmdPatch(_ context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: patch <file|->")
	}
	data, err := readInput(e, args[0])
	if err != nil {
		return err
	}
	return e.s.Patch(data)
}

func cmdExport(_ context.Context, e *env, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	format := fs.String("format", "json", "Output format (json, yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 0 {
		return fmt.Errorf("unknown arguments: %v", fs.Args())
	}
	v := e.s.Snapshot().Value()
	switch *format {
	case "json":
		return e.writeJSON(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return jsondoc.ErrSerialize.Wrap(err)
		}
		_, err = e.stdout.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
}

func cmdImport(_ context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: import <file|->")
	}
	data, err := readInput(e, args[0])
	if err != nil {
		return err
	}
	var v jsondoc.Value
	switch strings.ToLower(filepath.Ext(args[0])) {
	case ".yaml", ".yml":
		v, err = jsondoc.ParseYAML(data)
	default:
		v, err = jsondoc.Parse(data)
	}
	if err != nil {
		return err
	}
	return e.s.Merge(jsondoc.NewView(v, nil))
}

func cmdWatch(ctx context.Context, e *env, args []string) error {
	if len(args) != 0 {
		return errors.New("usage: watch")
	}
	slog.InfoContext(ctx, "watching", "db", e.s.Name(), "rev", e.s.Revision())
	return e.s.Watch(ctx)
}

// splitPointer splits an RFC 6901 pointer into the pointer of its parent and
// its last unescaped token. ok is false for the root.
func splitPointer(p string) (parent, last string, ok bool) {
	if p == "" {
		return "", "", false
	}
	i := strings.LastIndexByte(p, '/')
	if t := jsondoc.ParsePointer("/" + p[i+1:]); len(t) == 1 {
		last = t[0]
	}
	return p[:max(i, 0)], last, true
}

func parseIndex(s string) (int, error) {
	i, ok := jsondoc.ParseIndex(s)
	if !ok {
		return 0, fmt.Errorf("%w: array index %q", jsondoc.ErrInvalidPath, s)
	}
	return i, nil
}

func readInput(e *env, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(e.stdin)
	}
	return os.ReadFile(name) //nolint:gosec // G304: name is a command line argument
}

func (e *env) writeJSON(v jsondoc.Value) error {
	data, err := jsondoc.Encode(v, e.cfg.Pretty)
	if err != nil {
		return err
	}
	_, err = e.stdout.Write(append(data, '\n'))
	return err
}
