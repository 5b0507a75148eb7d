// Report formatting for verification runs: one line per lifecycle step.
package report

import (
	"fmt"
	"io"

	"github.com/storageresearch/svk/pkg/svk"
)

// TextSink writes one human-readable line per step outcome. It does no
// aggregation and keeps no state across runs.
type TextSink struct {
	w io.Writer
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Record implements svk.ReportSink.
func (s *TextSink) Record(out svk.StepOutcome) {
	secs := out.Elapsed.Seconds()
	switch {
	case out.Op == svk.OpGenerate && out.Err != nil:
		fmt.Fprintf(s.w, "File generation failed: %s, %v, Time taken: %.2fs\n",
			out.Name, out.Err, secs)
	case out.Op == svk.OpGenerate:
		fmt.Fprintf(s.w, "File generated: %s, Size: %d bytes, Time taken: %.2fs\n",
			out.Name, out.Size, secs)
	case out.Status == 0:
		fmt.Fprintf(s.w, "File %s: %s, Status: no response (%v), Time taken: %.2fs\n",
			out.Op, out.Name, out.Err, secs)
	case out.Err != nil:
		fmt.Fprintf(s.w, "File %s: %s, Status: %d, Failed to store response: %v, Time taken: %.2fs\n",
			out.Op, out.Name, out.Status, out.Err, secs)
	default:
		fmt.Fprintf(s.w, "File %s: %s, Status: %d, Time taken: %.2fs\n",
			out.Op, out.Name, out.Status, secs)
	}
}
