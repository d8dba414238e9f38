package docstore

import (
	"bytes"

	"github.com/maruel/docdb/internal/jsondoc"
	"github.com/maruel/ksid"
)

// commit records a mutation of the document and saves it when auto-flush is
// enabled and the limiter allows it. Must be called with mu held exclusively.
//
// A failed auto-flush is logged and leaves the store dirty; the mutation itself
// is kept.
func (s *state) commit() {
	s.rev = ksid.NewID()
	if s.flush == nil || !s.flush.Allow() {
		return
	}
	if err := s.save(); err != nil {
		s.logger.Warn("docstore: auto-flush failed", "name", s.name, "err", err)
	}
}

// save encodes and saves the document. Must be called with mu held.
func (s *state) save() error {
	data, err := jsondoc.Encode(s.root, s.pretty)
	if err != nil {
		return err
	}
	if s.pretty {
		data = append(data, '\n')
	}
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	if err := s.backend.Save(s.name, data); err != nil {
		return jsondoc.ErrIO.Wrap(err)
	}
	s.written = s.rev
	s.lastSaved = data
	s.logger.Debug("docstore: saved", "name", s.name, "bytes", len(data), "rev", s.rev)
	return nil
}

// isLastSaved reports whether data is what this process last loaded or saved.
func (s *state) isLastSaved(data []byte) bool {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	return s.lastSaved != nil && bytes.Equal(s.lastSaved, data)
}
