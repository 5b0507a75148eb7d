// The verification lifecycle: probe, generate, upload, fetch, cleanup.
package lifecycle

import (
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/storageresearch/svk/pkg/payload"
	"github.com/storageresearch/svk/pkg/svk"
)

// Args fixes the parameters of one verification run. Name, Size and Mode are
// set once at invocation and never change mid-run.
type Args struct {
	Name string
	Size int64
	Mode svk.RetrievalMode

	// Directory holding the local artifact; must match the storage service's.
	ArtifactDir string
}

// Runner drives one storage provider through the full object lifecycle,
// forwarding every step outcome to the report sink.
type Runner struct {
	store svk.StorageService
	sink  svk.ReportSink
	log   svk.Logger

	// Artifact generation, replaceable for testing.
	generate func(path string, size int64) error
}

func NewRunner(logger svk.Logger, store svk.StorageService, sink svk.ReportSink) *Runner {
	return &Runner{
		store:    store,
		sink:     sink,
		log:      logger,
		generate: payload.Ensure,
	}
}

// Run executes the lifecycle state machine:
//
//	Probe -> Generate -> Upload -> Fetch -> Cleanup
//
// A successful probe is the fast path: the object was already present and has
// been fetched, so Generate/Upload/Fetch are skipped. Network-observed
// failures are reported and the run continues; only a local filesystem
// failure (during Generate, or storing a fetched body) skips ahead. Cleanup
// (the remote delete) always runs, so no remote object outlives the run even
// when an intermediate step failed.
//
// The returned error is non-nil only for a filesystem failure; all other
// failures are visible solely through the reported outcomes.
func (r *Runner) Run(args Args) error {
	probe := r.store.Download(args.Mode, args.Name)
	r.sink.Record(probe)

	var ioErr error
	if probe.LocalFailure() {
		// The object is present and the body arrived, but it could not be
		// stored locally. That is an IOFailure, not an absent object; go
		// straight to cleanup.
		ioErr = probe.Err
	} else if !probe.OK() {
		r.log.Info("Object not present on the server, uploading: " + args.Name)
		ioErr = r.generateStep(args)
		if ioErr == nil {
			r.sink.Record(r.store.Upload(args.Name))
			fetch := r.store.Download(args.Mode, args.Name)
			r.sink.Record(fetch)
			if fetch.LocalFailure() {
				ioErr = fetch.Err
			}
		}
	}

	r.sink.Record(r.store.Delete(args.Name))

	if ioErr != nil {
		return errors.Wrap(ioErr, "Lifecycle aborted by local I/O failure")
	}
	return nil
}

func (r *Runner) generateStep(args Args) error {
	out := svk.StepOutcome{Op: svk.OpGenerate, Name: args.Name, Size: args.Size}

	start := time.Now()
	err := r.generate(filepath.Join(args.ArtifactDir, args.Name), args.Size)
	out.Elapsed = time.Since(start)
	out.Err = err

	r.sink.Record(out)
	return err
}
