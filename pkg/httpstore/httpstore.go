// HTTP file-storage provider. Implements the svk.StorageService interface
// against the plain HTTP contract: POST /upload (multipart field "file"),
// GET /{name} or /download-chunked/{name}, DELETE /{name}.
package httpstore

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/storageresearch/svk/pkg/svk"
)

type httpStore struct {
	baseURL string
	// Directory holding local artifacts (generated content and downloads)
	dir string
	// The one session reused for every call of a run
	session *http.Client
	log     svk.Logger
}

// NewService returns a StorageService speaking the HTTP storage contract at
// baseURL. Artifacts are read from and written to artifactDir. A zero timeout
// disables the request deadline (the original client behavior); anything else
// expires hung calls as a transport failure outcome.
func NewService(logger svk.Logger, baseURL string, artifactDir string, timeout time.Duration) svk.StorageService {
	return &httpStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		dir:     artifactDir,
		session: &http.Client{Timeout: timeout},
		log:     logger,
	}
}

func (self *httpStore) Download(mode svk.RetrievalMode, name string) svk.StepOutcome {
	out := svk.StepOutcome{Op: svk.OpDownload, Name: name}

	var target string
	switch mode {
	case svk.Chunked:
		target = self.baseURL + "/download-chunked/" + url.PathEscape(name)
	default:
		target = self.baseURL + "/" + url.PathEscape(name)
	}
	self.log.Debug("GET " + target)

	start := time.Now()
	resp, err := self.session.Get(target)
	if err != nil {
		out.Elapsed = time.Since(start)
		out.Err = err
		return out
	}
	defer resp.Body.Close()

	out.Status = resp.StatusCode
	if out.Status >= 200 && out.Status < 300 {
		out.Err = self.writeArtifact(name, resp.Body)
	} else {
		// Drain so the kept-alive connection can be reused.
		io.Copy(io.Discard, resp.Body)
	}
	out.Elapsed = time.Since(start)

	if out.Err != nil {
		self.log.Warnf("Downloaded object %s but failed to store it: %v", name, out.Err)
	}
	return out
}

func (self *httpStore) Upload(name string) svk.StepOutcome {
	out := svk.StepOutcome{Op: svk.OpUpload, Name: name}

	body, contentType, err := multipartBody(filepath.Join(self.dir, name), name)
	if err != nil {
		out.Err = err
		return out
	}

	target := self.baseURL + "/upload"
	self.log.Debug("POST " + target)

	start := time.Now()
	resp, err := self.session.Post(target, contentType, body)
	out.Elapsed = time.Since(start)
	if err != nil {
		out.Err = err
		return out
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	out.Status = resp.StatusCode
	return out
}

func (self *httpStore) Delete(name string) svk.StepOutcome {
	out := svk.StepOutcome{Op: svk.OpDelete, Name: name}

	target := self.baseURL + "/" + url.PathEscape(name)
	self.log.Debug("DELETE " + target)

	start := time.Now()
	req, err := http.NewRequest(http.MethodDelete, target, nil)
	if err != nil {
		out.Err = err
		return out
	}
	resp, err := self.session.Do(req)
	out.Elapsed = time.Since(start)
	if err != nil {
		out.Err = err
		return out
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	out.Status = resp.StatusCode
	return out
}

// writeArtifact streams a response body to the artifact file for name,
// overwriting any previous content.
func (self *httpStore) writeArtifact(name string, body io.Reader) error {
	path := filepath.Join(self.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "Failed to create artifact "+path)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return errors.Wrap(err, "Failed to write artifact "+path)
	}
	return f.Close()
}

// multipartBody reads the artifact at path and wraps it in a multipart form
// with a single "file" field named fieldName.
func multipartBody(path, fieldName string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", errors.Wrap(err, "Failed to read artifact "+path)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fieldName)
	if err != nil {
		return nil, "", errors.Wrap(err, "Failed to build multipart form")
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", errors.Wrap(err, "Failed to read artifact "+path)
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "Failed to build multipart form")
	}
	return &buf, w.FormDataContentType(), nil
}
