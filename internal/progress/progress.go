// Package progress reports streaming-pass progress through slog.
package progress

import (
	"log/slog"
	"runtime"
	"time"
)

// DefaultEvery is the default number of sentences between reports.
const DefaultEvery = 10000

// Reporter logs the state of a corpus pass every N sentences.
type Reporter struct {
	log   *slog.Logger
	stage string
	every int
	n     int
	start time.Time
}

// New creates a reporter for stage. A nil logger falls back to slog.Default()
// and every <= 0 uses DefaultEvery.
func New(log *slog.Logger, stage string, every int) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	if every <= 0 {
		every = DefaultEvery
	}
	return &Reporter{log: log, stage: stage, every: every, start: time.Now()}
}

// Tick counts one sentence. attrs is only evaluated when a report is due.
func (r *Reporter) Tick(attrs func() []any) {
	r.n++
	if r.n%r.every != 0 {
		return
	}
	r.emit("progress", attrs)
}

// Done logs the final state of the pass.
func (r *Reporter) Done(attrs func() []any) {
	r.emit("done", attrs)
}

// Count returns the number of sentences seen so far.
func (r *Reporter) Count() int {
	return r.n
}

func (r *Reporter) emit(msg string, attrs func() []any) {
	args := []any{
		"stage", r.stage,
		"sents", r.n,
		"heap_gb", HeapGB(),
		"elapsed", time.Since(r.start).Round(time.Millisecond),
	}
	if attrs != nil {
		args = append(args, attrs()...)
	}
	r.log.Info(msg, args...)
}

// HeapGB returns the bytes of allocated heap objects in GiB.
func HeapGB() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.HeapAlloc) / (1 << 30)
}
