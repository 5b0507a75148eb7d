// Standard interfaces and datatypes for the SVK project.
// Terms:
//   "object" : A named file resource as understood by the remote storage service
//   "provider" : A specific implementation of the storage contract (http, s3)
//   "outcome" : The recorded result (status + timing) of one operation
package svk

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger is what svk components expect for diagnostics. logrus satisfies it
// directly; embedders may pass their own configured instance.
type Logger = logrus.FieldLogger

// RetrievalMode selects which retrieval path the storage provider uses for
// reads. Exactly one mode is active per run; it is fixed at invocation time
// and never negotiated with the server.
type RetrievalMode string

const (
	// Whole fetches the object body in one plain retrieval.
	Whole RetrievalMode = "download"
	// Chunked fetches the object over the streamed/segmented path.
	Chunked RetrievalMode = "download-chunked"
)

// ParseRetrievalMode maps the command-line selector to a RetrievalMode.
func ParseRetrievalMode(s string) (RetrievalMode, error) {
	switch RetrievalMode(s) {
	case Whole, Chunked:
		return RetrievalMode(s), nil
	}
	return "", fmt.Errorf("unrecognized retrieval mode %q (expected %q or %q)", s, Whole, Chunked)
}

// Operation identifies which lifecycle step produced an outcome.
type Operation string

const (
	OpDownload Operation = "downloaded"
	OpGenerate Operation = "generated"
	OpUpload   Operation = "uploaded"
	OpDelete   Operation = "deleted"
)

// StepOutcome is the result of one storage or generation step. It is created
// by the provider (or orchestrator, for local steps), handed to the report
// sink, and never mutated or retried.
type StepOutcome struct {
	Op   Operation
	Name string

	// HTTP status observed for the step. Zero means no status was observed
	// at all (a transport-level failure); Err then holds the cause.
	Status int
	Err    error

	// Size of the artifact, reported for generation steps only.
	Size int64

	Elapsed time.Duration
}

// OK reports whether the step fully succeeded: a 2xx status and no local
// error. A download that fetched the body but could not store it is not OK.
func (o StepOutcome) OK() bool {
	return o.Status >= 200 && o.Status < 300 && o.Err == nil
}

// LocalFailure reports whether the step observed a service success but failed
// against the local filesystem. This is the IOFailure class: the run cannot
// proceed past it, unlike a transport failure (which has no status at all).
func (o StepOutcome) LocalFailure() bool {
	return o.Err != nil && o.Status != 0
}

// A StorageService drives the four network operations of one verification run
// against a single storage provider. Implementations own their session
// (connection/authentication context) exclusively for the process lifetime;
// there is no explicit close contract.
//
// All calls are synchronous and time themselves. Network-level failures are
// absorbed into the returned outcome (Status 0) rather than returned as
// errors, so a run can always complete and report.
type StorageService interface {
	// Download issues a read over the endpoint selected by mode. A 200-class
	// status writes the body to the local artifact named name, overwriting.
	// Any other status signals absence: it is the designed not-found branch,
	// not an error. A successful download doubles as the existence probe.
	Download(mode RetrievalMode, name string) StepOutcome

	// Upload submits the local artifact named name as a multipart file field.
	Upload(name string) StepOutcome

	// Delete removes the remote object keyed by name. Best effort: callers
	// report non-success but never escalate it.
	Delete(name string) StepOutcome
}

// A ReportSink receives every step outcome, exactly once, in step order.
type ReportSink interface {
	Record(outcome StepOutcome)
}
