package docstore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/maruel/docdb/internal/jsondoc"
)

func TestWatch(t *testing.T) {
	s, path := setupStore(t, `{"v":0}`)
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// The watcher may not be registered yet; keep rewriting until the change
	// is observed.
	deadline := time.Now().Add(10 * time.Second)
	for {
		if err := os.WriteFile(path, []byte(`{"v":1}`), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
		if s.Snapshot().Value().String() == `{"v":1}` {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("external write not observed")
		}
	}
	if s.Dirty() {
		t.Error("dirty after reload")
	}

	// Own writes are not reloaded and do not disturb the document.
	if err := s.Insert("w", true); err != nil {
		t.Fatal(err)
	}
	if err := s.Write(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	if got := s.Snapshot().Value().String(); got != `{"v":1,"w":true}` {
		t.Errorf("document = %s", got)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Watch = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchRequiresFileBackend(t *testing.T) {
	s := New("mem", jsondoc.EmptyObject(), WithBackend(&MemoryBackend{}), quiet)
	if err := s.Watch(t.Context()); !errors.Is(err, ErrNotWatchable) {
		t.Errorf("Watch = %v, want ErrNotWatchable", err)
	}
}
