// Package session owns one index writer for the duration of a repetition.
// A Session opens the index, adds corpus documents one at a time, rotates the
// writer (close and reopen in append mode) on request, and finishes the index
// with an optimize and a document count.
package session

import (
	"context"
	"log/slog"
	"strconv"

	benchErrors "github.com/Aman-CERP/indexbench/internal/errors"
	"github.com/Aman-CERP/indexbench/internal/store"
)

// Field names written for every document.
const (
	TitleField = "title"
	BodyField  = "body"
)

// Session is one writer handle on an index directory.
// A Session is not safe for concurrent use.
type Session struct {
	engine store.Engine
	path   string

	writer    store.Writer
	added     int
	rotations int
	closed    bool
}

// New creates a session for the index at path. Call Open before adding documents.
func New(engine store.Engine, path string) *Session {
	return &Session{engine: engine, path: path}
}

// Open opens the writer. prior is the number of documents already in the
// index; zero creates a fresh index, anything else appends.
func (s *Session) Open(ctx context.Context, prior int) error {
	if s.writer != nil {
		return benchErrors.New(benchErrors.ErrCodeInternal, "session is already open", nil)
	}
	if prior < 0 {
		return benchErrors.ValidationError("prior document count must not be negative", nil).
			WithDetail("prior", strconv.Itoa(prior))
	}

	mode := store.ModeCreate
	if prior > 0 {
		mode = store.ModeAppend
	}

	w, err := s.engine.Open(ctx, s.path, mode)
	if err != nil {
		return err
	}

	s.writer = w
	s.added = prior
	s.closed = false
	return nil
}

// AddDocument reads the file at path and adds it under the next document ID.
// IDs are the 1-based running count, so re-adding the same file on wraparound
// produces a new document.
func (s *Session) AddDocument(ctx context.Context, path string, storeBody bool) error {
	if s.writer == nil {
		return benchErrors.New(benchErrors.ErrCodeInternal, "session is not open", nil)
	}

	doc, err := readDocument(path, strconv.Itoa(s.added+1), storeBody)
	if err != nil {
		return err
	}

	if err := s.writer.AddDocument(ctx, doc); err != nil {
		return err
	}
	s.added++
	return nil
}

// Rotate closes the writer, which flushes it durably, and reopens the index in
// append mode. soFar is the running document count at the rotation point.
func (s *Session) Rotate(ctx context.Context, soFar int) error {
	if s.writer == nil {
		return benchErrors.New(benchErrors.ErrCodeInternal, "session is not open", nil)
	}

	w := s.writer
	s.writer = nil
	if err := w.Close(); err != nil {
		return err
	}

	next, err := s.engine.Open(ctx, s.path, store.ModeAppend)
	if err != nil {
		return err
	}
	s.writer = next
	s.rotations++

	slog.Debug("writer_rotated",
		slog.Int("docs_so_far", soFar),
		slog.Int("rotation", s.rotations))
	return nil
}

// Finish optimizes the index, reads the final document count and closes the
// writer. The session is closed afterwards even when Finish fails.
func (s *Session) Finish(ctx context.Context) (int, error) {
	if s.writer == nil {
		return 0, benchErrors.New(benchErrors.ErrCodeInternal, "session is not open", nil)
	}
	defer func() { _ = s.Close() }()

	if err := s.writer.Optimize(ctx); err != nil {
		return 0, err
	}
	count, err := s.writer.DocumentCount(ctx)
	if err != nil {
		return 0, err
	}

	w := s.writer
	s.writer = nil
	s.closed = true
	if err := w.Close(); err != nil {
		return 0, err
	}
	return int(count), nil
}

// Close releases the writer. It is idempotent and safe on any error path.
func (s *Session) Close() error {
	if s.closed || s.writer == nil {
		s.closed = true
		return nil
	}
	s.closed = true

	w := s.writer
	s.writer = nil
	return w.Close()
}

// Added returns the running document count, including the prior count.
func (s *Session) Added() int {
	return s.added
}

// Rotations returns how many times the writer was rotated.
func (s *Session) Rotations() int {
	return s.rotations
}
