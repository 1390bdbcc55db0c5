// Package corpus provides restartable sentence sources.
//
// Every stage of the pipeline re-reads its corpus from the start, so a
// source must support Reset and report its length without consuming the
// current pass.
package corpus

import "github.com/cognicore/korsub/pkg/korsub/features"

// Source yields whitespace-tokenized sentences.
type Source interface {
	// Next returns the next sentence, or false when the pass is over.
	Next() ([]string, bool)
	// Err returns the first read error of the current pass.
	Err() error
	// Reset rewinds the source to its first sentence.
	Reset() error
	// Len returns the number of sentences in one pass. It is cached.
	Len() (int, error)
}

// LRSource yields sentences already split into leading/trailing units.
type LRSource interface {
	Next() ([]features.LR, bool)
	Err() error
	Reset() error
	Len() (int, error)
}

// Slice is an in-memory Source.
type Slice struct {
	sents [][]string
	pos   int
}

// NewSlice wraps sents. Empty sentences are kept as-is.
func NewSlice(sents [][]string) *Slice {
	return &Slice{sents: sents}
}

// Next implements Source.
func (s *Slice) Next() ([]string, bool) {
	if s.pos >= len(s.sents) {
		return nil, false
	}
	sent := s.sents[s.pos]
	s.pos++
	return sent, true
}

// Err implements Source.
func (s *Slice) Err() error { return nil }

// Reset implements Source.
func (s *Slice) Reset() error {
	s.pos = 0
	return nil
}

// Len implements Source.
func (s *Slice) Len() (int, error) { return len(s.sents), nil }

// LRSlice is an in-memory LRSource.
type LRSlice struct {
	sents [][]features.LR
	pos   int
}

// NewLRSlice wraps sents.
func NewLRSlice(sents [][]features.LR) *LRSlice {
	return &LRSlice{sents: sents}
}

// Next implements LRSource.
func (s *LRSlice) Next() ([]features.LR, bool) {
	if s.pos >= len(s.sents) {
		return nil, false
	}
	sent := s.sents[s.pos]
	s.pos++
	return sent, true
}

// Err implements LRSource.
func (s *LRSlice) Err() error { return nil }

// Reset implements LRSource.
func (s *LRSlice) Reset() error {
	s.pos = 0
	return nil
}

// Len implements LRSource.
func (s *LRSlice) Len() (int, error) { return len(s.sents), nil }
