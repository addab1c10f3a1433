package sos

import (
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// DiagnosticRecord describes the most recent unexpected SOS failure, kept
// for operator inspection.
type DiagnosticRecord struct {
	Message string    `json:"message"`
	Stack   string    `json:"stack,omitempty"`
	Time    time.Time `json:"time"`
}

// Diagnostics is a single-slot register: each Record overwrites the
// previous entry (last-writer-wins), and reads never observe a partial
// write. It is injected into the SOS service so tests can swap it out.
type Diagnostics struct {
	mu   sync.Mutex
	last *DiagnosticRecord
}

func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Record stores err as the latest diagnostic, capturing a stack trace when
// the error carries one.
func (d *Diagnostics) Record(err error) *DiagnosticRecord {
	record := &DiagnosticRecord{
		Message: err.Error(),
		Time:    time.Now().UTC(),
	}

	if tracer, ok := err.(stackTracer); ok {
		record.Stack = fmt.Sprintf("%+v", tracer.StackTrace())
	}

	d.mu.Lock()
	d.last = record
	d.mu.Unlock()

	return record
}

// Last returns the most recent record, or nil if nothing failed yet.
func (d *Diagnostics) Last() *DiagnosticRecord {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.last
}
