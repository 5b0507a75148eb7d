package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/storageresearch/svk/pkg/svk"
	"github.com/stretchr/testify/assert"
)

func TestRecordStatusLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTextSink(&buf)

	sink.Record(svk.StepOutcome{
		Op:      svk.OpDownload,
		Name:    "obj.txt",
		Status:  200,
		Elapsed: 1234 * time.Millisecond,
	})

	assert.Equal(t, "File downloaded: obj.txt, Status: 200, Time taken: 1.23s\n", buf.String())
}

func TestRecordGenerateLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTextSink(&buf)

	sink.Record(svk.StepOutcome{
		Op:      svk.OpGenerate,
		Name:    "obj.txt",
		Size:    2048,
		Elapsed: 10 * time.Millisecond,
	})

	assert.Equal(t, "File generated: obj.txt, Size: 2048 bytes, Time taken: 0.01s\n", buf.String())
}

func TestRecordStoreFailureLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTextSink(&buf)

	sink.Record(svk.StepOutcome{
		Op:     svk.OpDownload,
		Name:   "obj.txt",
		Status: 200,
		Err:    errors.New("is a directory"),
	})

	assert.Equal(t, "File downloaded: obj.txt, Status: 200, Failed to store response: is a directory, Time taken: 0.00s\n", buf.String())
}

func TestRecordTransportFailureLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTextSink(&buf)

	sink.Record(svk.StepOutcome{
		Op:   svk.OpUpload,
		Name: "obj.txt",
		Err:  errors.New("connection refused"),
	})

	assert.Contains(t, buf.String(), "Status: no response (connection refused)")
}
