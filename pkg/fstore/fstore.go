// A local file-store server implementing the HTTP storage contract that svk
// verifies: multipart upload, whole and chunked download, delete. It exists so
// runs can be exercised without a remote deployment; objects are plain files
// in a storage directory.
package fstore

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/storageresearch/svk/pkg/svk"
)

// Size of each flushed write on the chunked download path. Intentionally not
// a round multiple of typical object sizes so bodies span partial chunks.
const chunkSize = 60 * 1024

type Service struct {
	// Addr is the listen address, populated by Start.
	Addr string

	dir    string
	log    svk.Logger
	server *http.Server
}

func NewService(logger svk.Logger, storageDir string) *Service {
	return &Service{
		dir: storageDir,
		log: logger,
	}
}

// Router returns the HTTP handler serving the storage contract. Exposed so
// tests can drive the service without a listener.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/upload", s.handleUpload)
	r.Get("/download/{name}", s.handleDownload)
	r.Get("/download-chunked/{name}", s.handleChunkedDownload)
	r.Get("/{name}", s.handleDownload)
	r.Delete("/{name}", s.handleDelete)
	return r
}

// Start begins serving on addr (host:port; port 0 picks a free one) and
// returns once the listener is accepting connections.
func (s *Service) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "Failed to listen on "+addr)
	}
	s.Addr = ln.Addr().String()
	s.server = &http.Server{Handler: s.Router()}

	s.log.Info("File store listening on http://" + s.Addr)
	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("File store server failed: ", err)
		}
	}()
	return nil
}

func (s *Service) Shutdown() error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(context.Background())
}

func (s *Service) handleUpload(w http.ResponseWriter, r *http.Request) {
	mr, err := r.MultipartReader()
	if err != nil {
		http.Error(w, "Expected multipart form data", http.StatusBadRequest)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "Malformed multipart payload", http.StatusBadRequest)
			return
		}
		if part.FormName() != "file" {
			continue
		}

		name := sanitize(part.FileName())
		if name == "" {
			http.Error(w, "Invalid filename", http.StatusBadRequest)
			return
		}

		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); err == nil {
			http.Error(w, "File already exists", http.StatusConflict)
			return
		}

		f, err := os.Create(path)
		if err != nil {
			s.log.Error("Failed to create object file: ", err)
			http.Error(w, "Failed to store file", http.StatusInternalServerError)
			return
		}
		if _, err := io.Copy(f, part); err != nil {
			f.Close()
			os.Remove(path)
			http.Error(w, "Failed to store file", http.StatusInternalServerError)
			return
		}
		f.Close()
		s.log.Debug("Stored object " + name)
	}

	w.Write([]byte("File uploaded successfully"))
}

func (s *Service) handleDownload(w http.ResponseWriter, r *http.Request) {
	path, ok := s.objectPath(w, r)
	if !ok {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	w.Write(data)
}

func (s *Service) handleChunkedDownload(w http.ResponseWriter, r *http.Request) {
	path, ok := s.objectPath(w, r)
	if !ok {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	// Write in flushed blocks so the body goes out with chunked
	// transfer encoding instead of a Content-Length.
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, chunkSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err != nil {
			return
		}
	}
}

func (s *Service) handleDelete(w http.ResponseWriter, r *http.Request) {
	path, ok := s.objectPath(w, r)
	if !ok {
		return
	}
	if err := os.Remove(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	s.log.Debug("Deleted object " + filepath.Base(path))
	w.Write([]byte("File deleted successfully"))
}

// objectPath resolves the {name} route parameter to a storage path, rejecting
// anything that escapes the storage directory.
func (s *Service) objectPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := sanitize(chi.URLParam(r, "name"))
	if name == "" {
		http.Error(w, "Invalid filename", http.StatusBadRequest)
		return "", false
	}
	return filepath.Join(s.dir, name), true
}

func sanitize(name string) string {
	name = filepath.Base(name)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}
