// Package archive provides the append-only side channel the solver hands
// intermediate results to (rates, net rates, reversibilities, TOFs, DTRC),
// and the on-disk store for finished runs.
package archive

import (
	"encoding/json"
	"io"
	"time"
)

// Sink receives labeled values in call order. Implementations must be
// observational: archiving never affects solver results, and every engine
// path works against Noop.
type Sink interface {
	Archive(label string, value any)
}

// Noop discards everything.
type Noop struct{}

func (Noop) Archive(string, any) {}

// Record is one archived entry.
type Record struct {
	Seq   int    `json:"seq"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Memory keeps records in order, mainly for tests and the CLI.
type Memory struct {
	records []Record
}

func (m *Memory) Archive(label string, value any) {
	m.records = append(m.records, Record{Seq: len(m.records), Label: label, Value: value})
}

func (m *Memory) Records() []Record { return m.records }

// Labeled returns the archived values carrying the given label, in order.
func (m *Memory) Labeled(label string) []any {
	var out []any
	for _, r := range m.records {
		if r.Label == label {
			out = append(out, r.Value)
		}
	}
	return out
}

// Writer streams records as JSON lines. Write failures are dropped: the
// archive is fire-and-forget.
type Writer struct {
	enc *json.Encoder
	seq int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) Archive(label string, value any) {
	entry := struct {
		Record
		Time time.Time `json:"time"`
	}{
		Record: Record{Seq: w.seq, Label: label, Value: value},
		Time:   time.Now(),
	}
	w.seq++
	_ = w.enc.Encode(entry)
}
