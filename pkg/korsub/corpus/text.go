package corpus

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

const maxLineBytes = 16 << 20

// TextOptions configures a TextFile.
type TextOptions struct {
	// MaxSentences stops the pass after this many sentences; <= 0 reads all.
	MaxSentences int
	// Lowercase folds every token to lower case.
	Lowercase bool
}

// TextFile reads one sentence per line. Blank lines are skipped.
type TextFile struct {
	path   string
	opts   TextOptions
	f      *os.File
	sc     *bufio.Scanner
	n      int
	err    error
	length int
}

// OpenText opens path for reading.
func OpenText(path string, opts TextOptions) (*TextFile, error) {
	t := &TextFile{path: path, opts: opts, length: -1}
	if err := t.Reset(); err != nil {
		return nil, err
	}
	return t, nil
}

// Next implements Source.
func (t *TextFile) Next() ([]string, bool) {
	if t.sc == nil || t.err != nil {
		return nil, false
	}
	if t.opts.MaxSentences > 0 && t.n >= t.opts.MaxSentences {
		return nil, false
	}
	for t.sc.Scan() {
		line := strings.TrimSpace(t.sc.Text())
		if line == "" {
			continue
		}
		if t.opts.Lowercase {
			line = strings.ToLower(line)
		}
		t.n++
		return strings.Fields(line), true
	}
	if err := t.sc.Err(); err != nil {
		t.err = fmt.Errorf("read %s: %w", t.path, err)
	}
	return nil, false
}

// Err implements Source.
func (t *TextFile) Err() error { return t.err }

// Reset implements Source.
func (t *TextFile) Reset() error {
	if t.f != nil {
		t.f.Close()
	}
	f, err := os.Open(t.path)
	if err != nil {
		t.f, t.sc = nil, nil
		return err
	}
	t.f = f
	t.sc = newScanner(f)
	t.n = 0
	t.err = nil
	return nil
}

// Len implements Source by counting non-blank lines in a separate read.
func (t *TextFile) Len() (int, error) {
	if t.length >= 0 {
		return t.length, nil
	}
	f, err := os.Open(t.path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n := 0
	sc := newScanner(f)
	for sc.Scan() {
		if t.opts.MaxSentences > 0 && n >= t.opts.MaxSentences {
			break
		}
		if strings.TrimSpace(sc.Text()) != "" {
			n++
		}
	}
	if err := sc.Err(); err != nil {
		return 0, fmt.Errorf("read %s: %w", t.path, err)
	}
	t.length = n
	return n, nil
}

// Close releases the underlying file.
func (t *TextFile) Close() error {
	if t.f == nil {
		return nil
	}
	err := t.f.Close()
	t.f, t.sc = nil, nil
	return err
}

func newScanner(f *os.File) *bufio.Scanner {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	return sc
}
