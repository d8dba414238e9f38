package docstore

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/maruel/docdb/internal/jsondoc"
	"github.com/maruel/ksid"
	"golang.org/x/time/rate"
)

// Store is a handle on a shared JSON document.
//
// Handles returned by Clone share the lock and the document. A Store is safe
// for concurrent use by multiple goroutines.
type Store struct {
	st *state
}

// state is shared by all the handles of a Store.
type state struct {
	name    string
	backend Backend
	logger  *slog.Logger
	pretty  bool
	flush   *rate.Limiter

	mu   sync.RWMutex
	root jsondoc.Value
	rev  ksid.ID

	// saveMu guards the fields below. It is taken after mu.
	saveMu    sync.Mutex
	written   ksid.ID
	lastSaved []byte
}

// Option configures a Store.
type Option func(*state)

// WithBackend sets the persistence backend. The default is FileBackend.
func WithBackend(b Backend) Option {
	return func(s *state) {
		s.backend = b
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *state) {
		s.logger = l
	}
}

// WithPretty selects indented (the default) or compact JSON output.
func WithPretty(pretty bool) Option {
	return func(s *state) {
		s.pretty = pretty
	}
}

// WithAutoFlush saves the document after committed mutations, at most burst
// times in a row and then once every minInterval. A zero minInterval saves
// after every mutation.
func WithAutoFlush(minInterval time.Duration, burst int) Option {
	return func(s *state) {
		s.flush = rate.NewLimiter(rate.Every(minInterval), burst)
	}
}

func newState(name string, opts []Option) *state {
	s := &state{name: name, backend: FileBackend{}, logger: slog.Default(), pretty: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open loads the document stored under name. A missing document is an empty
// object.
func Open(name string, opts ...Option) (*Store, error) {
	s := newState(name, opts)
	root, data, err := s.load()
	if err != nil {
		return nil, err
	}
	s.root = root
	s.rev = ksid.NewID()
	s.written = s.rev
	s.lastSaved = data
	return &Store{st: s}, nil
}

// New returns a Store holding a copy of root without touching the backend.
// The store is dirty until written.
func New(name string, root jsondoc.Value, opts ...Option) *Store {
	s := newState(name, opts)
	s.root = root.Clone()
	s.rev = ksid.NewID()
	return &Store{st: s}
}

// NewFrom saves contents under name, then opens it.
func NewFrom(name string, contents []byte, opts ...Option) (*Store, error) {
	s := newState(name, opts)
	if err := s.backend.Save(name, contents); err != nil {
		return nil, jsondoc.ErrIO.Wrap(err)
	}
	return Open(name, opts...)
}

// load reads and parses the backing bytes.
func (s *state) load() (jsondoc.Value, []byte, error) {
	data, err := s.backend.Load(s.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("docstore: document not found, starting empty", "name", s.name)
			return jsondoc.EmptyObject(), nil, nil
		}
		return jsondoc.Value{}, nil, jsondoc.ErrIO.Wrap(err)
	}
	root, err := jsondoc.Parse(data)
	if err != nil {
		return jsondoc.Value{}, nil, fmt.Errorf("failed to parse %s: %w", s.name, err)
	}
	s.logger.Debug("docstore: loaded", "name", s.name, "bytes", len(data))
	return root, data, nil
}

// Name returns the name the document is stored under.
func (s *Store) Name() string {
	return s.st.name
}

// Clone returns a new handle sharing the lock and the document of s.
func (s *Store) Clone() *Store {
	return &Store{st: s.st}
}

// Snapshot returns a detached copy of the whole document.
func (s *Store) Snapshot() *jsondoc.View {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return jsondoc.NewView(s.st.root, nil)
}

// Read acquires the shared lock and returns a guard on the document root. The
// caller must call Release.
func (s *Store) Read() *ReadView {
	s.st.mu.RLock()
	return &ReadView{cursor: cursor{value: s.st.root}, st: s.st}
}

// Update acquires the exclusive lock and returns a guard on the document root.
// The caller must call Release.
func (s *Store) Update() *WriteView {
	s.st.mu.Lock()
	return &WriteView{cursor: cursor{value: s.st.root}, st: s.st}
}

// View calls fn with a ReadView released when fn returns.
func (s *Store) View(fn func(r *ReadView) error) error {
	r := s.Read()
	defer r.Release()
	return fn(r)
}

// Modify calls fn with a WriteView released when fn returns.
//
// Mutations made through the WriteView before an error are kept.
func (s *Store) Modify(fn func(w *WriteView) error) error {
	w := s.Update()
	defer w.Release()
	return fn(w)
}

// Insert serializes x and stores it as the member key of the root object.
func (s *Store) Insert(key string, x any) error {
	w := s.Update()
	defer w.Release()
	_, err := w.Insert(key, x)
	return err
}

// Merge splices a copy of the view's value into the document at the view's
// path. The document is unchanged on error.
func (s *Store) Merge(v *jsondoc.View) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if err := jsondoc.Splice(&s.st.root, v.Path(), v.Value()); err != nil {
		return err
	}
	s.st.commit()
	return nil
}

// MergeAndWrite merges v and then writes the document.
func (s *Store) MergeAndWrite(v *jsondoc.View) error {
	if err := s.Merge(v); err != nil {
		return err
	}
	return s.Write()
}

// Patch applies an RFC 6902 JSON patch to the whole document. The document is
// unchanged on error.
func (s *Store) Patch(patch []byte) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	next, err := jsondoc.ApplyPatch(s.st.root, patch)
	if err != nil {
		return err
	}
	s.st.root = next
	s.st.commit()
	return nil
}

// Write serializes the document and saves it through the backend.
func (s *Store) Write() error {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.save()
}

// Reload replaces the document with the content of the backend.
func (s *Store) Reload() error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	root, data, err := s.st.load()
	if err != nil {
		return err
	}
	s.st.replace(root, data)
	return nil
}

// Revision returns the ID of the last committed mutation or load. IDs are
// time sortable.
func (s *Store) Revision() ksid.ID {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	return s.st.rev
}

// Dirty reports whether the document has mutations not yet written.
func (s *Store) Dirty() bool {
	s.st.mu.RLock()
	defer s.st.mu.RUnlock()
	s.st.saveMu.Lock()
	defer s.st.saveMu.Unlock()
	return s.st.rev != s.st.written
}

// replace installs a freshly loaded document. Must be called with mu held.
func (s *state) replace(root jsondoc.Value, data []byte) {
	s.root = root
	s.rev = ksid.NewID()
	s.saveMu.Lock()
	s.written = s.rev
	s.lastSaved = data
	s.saveMu.Unlock()
	s.logger.Info("docstore: reloaded", "name", s.name, "rev", s.rev)
}
