package docstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/maruel/docdb/internal/jsondoc"
)

// ErrNotWatchable is returned by Watch when the backend is not a FileBackend.
var ErrNotWatchable = errors.New("backend does not support watching")

// Watch reloads the document every time its file is rewritten by another
// process, until ctx is canceled. It blocks on the calling goroutine and
// returns ctx.Err() on cancellation.
//
// Watch requires a FileBackend. Rewrites producing the bytes this store last
// loaded or saved are ignored. Content that fails to parse is logged and
// skipped.
func (s *Store) Watch(ctx context.Context) error {
	switch s.st.backend.(type) {
	case FileBackend, *FileBackend:
	default:
		return fmt.Errorf("watch %s: %w: %T", s.st.name, ErrNotWatchable, s.st.backend)
	}
	target, err := filepath.Abs(s.st.name)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	// Watch the directory: atomic saves replace the file's inode.
	if err := w.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	s.st.logger.DebugContext(ctx, "docstore: watching", "name", s.st.name)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if err := s.reloadIfChanged(); err != nil {
				s.st.logger.WarnContext(ctx, "docstore: failed to reload", "name", s.st.name, "err", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.st.logger.WarnContext(ctx, "docstore: error watching document", "name", s.st.name, "err", err)
		}
	}
}

func (s *Store) reloadIfChanged() error {
	data, err := s.st.backend.Load(s.st.name)
	if err != nil {
		return jsondoc.ErrIO.Wrap(err)
	}
	if s.st.isLastSaved(data) {
		return nil
	}
	root, err := jsondoc.Parse(data)
	if err != nil {
		return err
	}
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.replace(root, data)
	return nil
}
