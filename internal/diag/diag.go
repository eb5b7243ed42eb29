// Package diag threads a diagnostics collector explicitly through the
// pipeline instead of relying on a package-level singleton (spec.md §5:
// "Implementations must avoid global singletons for error context by
// threading a diagnostics collector explicitly"). Grounded on the
// teacher's service.AggregatedError/TaskError pair in
// service/parallel_executor.go, generalized from "task failures across a
// worker pool" to "pipeline diagnostics across a module graph."
package diag

import (
	"strconv"
	"strings"

	"github.com/plank-ts/plank/domain"
)

// Collector accumulates domain.Error values produced by any stage. A
// fatal error aborts the pipeline (Fatal returns it); everything else is
// kept as a warning.
type Collector struct {
	errs []*domain.Error
}

// New creates an empty Collector.
func New() *Collector {
	return &Collector{}
}

// Add records err. If err is fatal, callers are expected to stop the
// pipeline and surface Fatal() immediately; Add itself never panics or
// exits so stages can keep collecting context before bailing out.
func (c *Collector) Add(err *domain.Error) {
	if err == nil {
		return
	}
	c.errs = append(c.errs, err)
}

// Fatal returns the first fatal error recorded, or nil if every recorded
// error is non-fatal (DanglingExport).
func (c *Collector) Fatal() error {
	for _, e := range c.errs {
		if e.Fatal() {
			return e
		}
	}
	return nil
}

// Warnings returns every recorded non-fatal error, in recording order.
func (c *Collector) Warnings() []*domain.Error {
	var out []*domain.Error
	for _, e := range c.errs {
		if !e.Fatal() {
			out = append(out, e)
		}
	}
	return out
}

// All returns every recorded error (fatal and non-fatal), in order.
func (c *Collector) All() []*domain.Error {
	return c.errs
}

// Empty reports whether nothing has been recorded.
func (c *Collector) Empty() bool {
	return len(c.errs) == 0
}

// AggregatedError combines several errors into one error value. No
// pipeline stage currently constructs one. Grounded on
// service/parallel_executor.go's AggregatedError.
type AggregatedError struct {
	Errors []error
}

func (e *AggregatedError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("multiple errors:\n")
	for i, err := range e.Errors {
		sb.WriteString("  ")
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteString(". ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Unwrap supports errors.Is/errors.As against the first recorded error.
func (e *AggregatedError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e.Errors[0]
}
