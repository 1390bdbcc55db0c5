package corpus

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/cognicore/korsub/pkg/korsub/features"
	"github.com/cognicore/korsub/pkg/korsub/internalerr"
)

// Column indices of a four-column record:
// <surface> \t <morph/tag analysis> \t <split A> \t <split B>
const (
	colSurface = 0
	colSplitA  = 2
	colSplitB  = 3
)

// FourColumnOptions configures a FourColumn reader.
type FourColumnOptions struct {
	// AdjectiveSplit selects split A, which reads noun+copula as an
	// adjective (컬렉션이/Adjective 라는/Eomi). The default is split B
	// (컬렉션/Noun 이라는/Josa).
	AdjectiveSplit bool
	// MaxSentences stops the pass after this many sentences; <= 0 reads all.
	MaxSentences int
	Logger       *slog.Logger
}

// FourColumn reads tab-separated morphologically analysed corpora. A blank
// line ends a sentence.
//
// Malformed records (too few columns, an analysis without a "/tag") are
// skipped and counted; they never abort the pass. Tokens whose surface is
// empty after stripping non-Hangul characters are dropped silently.
type FourColumn struct {
	paths  []string
	opts   FourColumnOptions
	col    int
	log    *slog.Logger
	file   int
	f      *os.File
	sc     *bufio.Scanner
	n      int
	skip   int
	err    error
	length int
}

// OpenFourColumn prepares a reader over paths, read in order.
func OpenFourColumn(paths []string, opts FourColumnOptions) (*FourColumn, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: four-column corpus has no paths", internalerr.ErrInvalidInput)
	}
	c := &FourColumn{paths: paths, opts: opts, col: colSplitB, log: opts.Logger, length: -1}
	if opts.AdjectiveSplit {
		c.col = colSplitA
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// Next implements LRSource.
func (c *FourColumn) Next() ([]features.LR, bool) {
	if c.err != nil {
		return nil, false
	}
	if c.opts.MaxSentences > 0 && c.n >= c.opts.MaxSentences {
		return nil, false
	}
	var sent []features.LR
	for {
		if c.sc == nil {
			if !c.openNext() {
				break
			}
		}
		if !c.sc.Scan() {
			if err := c.sc.Err(); err != nil {
				c.err = fmt.Errorf("read %s: %w", c.paths[c.file-1], err)
				return nil, false
			}
			c.closeFile()
			if len(sent) > 0 {
				break
			}
			continue
		}
		line := strings.TrimSpace(c.sc.Text())
		if line == "" {
			if len(sent) > 0 {
				break
			}
			continue
		}
		lr, ok, malformed := c.parse(line)
		if malformed {
			c.skip++
			c.log.Debug("skip malformed record", "line", line)
			continue
		}
		if ok {
			sent = append(sent, lr)
		}
	}
	if len(sent) == 0 {
		return nil, false
	}
	c.n++
	return sent, true
}

// parse converts one record. ok is false for tokens dropped by normalization.
func (c *FourColumn) parse(line string) (lr features.LR, ok, malformed bool) {
	cols := strings.Split(line, "\t")
	if len(cols) <= c.col {
		return lr, false, true
	}
	fields := strings.Fields(cols[c.col])
	if len(fields) == 0 {
		return lr, false, true
	}
	i := strings.LastIndexByte(fields[0], '/')
	if i <= 0 {
		return lr, false, true
	}
	morph, tag := fields[0][:i], fields[0][i+1:]

	surface := NormalizeHangul(cols[colSurface])
	if surface == "" {
		return lr, false, false
	}
	runes := []rune(surface)
	split := utf8.RuneCountInString(morph)
	if split > len(runes) {
		split = len(runes)
	}
	return features.LR{
		L:     string(runes[:split]),
		R:     string(runes[split:]),
		Morph: morph,
		Tag:   tag,
	}, true, false
}

// Skipped returns the number of malformed records skipped in this pass.
func (c *FourColumn) Skipped() int { return c.skip }

// Err implements LRSource.
func (c *FourColumn) Err() error { return c.err }

// Reset implements LRSource.
func (c *FourColumn) Reset() error {
	c.closeFile()
	for _, p := range c.paths {
		if _, err := os.Stat(p); err != nil {
			return err
		}
	}
	c.file, c.n, c.skip, c.err = 0, 0, 0, nil
	return nil
}

// Len implements LRSource with a full counting pass on a fresh reader.
func (c *FourColumn) Len() (int, error) {
	if c.length >= 0 {
		return c.length, nil
	}
	scan := &FourColumn{paths: c.paths, opts: c.opts, col: c.col, log: c.log, length: -1}
	defer scan.Close()
	n := 0
	for {
		if _, ok := scan.Next(); !ok {
			break
		}
		n++
	}
	if err := scan.Err(); err != nil {
		return 0, err
	}
	c.length = n
	return n, nil
}

// Close releases the current file.
func (c *FourColumn) Close() error {
	c.closeFile()
	return nil
}

func (c *FourColumn) openNext() bool {
	for c.file < len(c.paths) {
		path := c.paths[c.file]
		c.file++
		f, err := os.Open(path)
		if err != nil {
			c.err = err
			return false
		}
		c.f = f
		c.sc = newScanner(f)
		return true
	}
	return false
}

func (c *FourColumn) closeFile() {
	if c.f != nil {
		c.f.Close()
	}
	c.f, c.sc = nil, nil
}
