package commands_test

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hwinj/hwinj/cmd/hwinj/commands"
)

// run executes the command line args and returns what it printed.
func run(t *testing.T, args ...string) (out string, usageError bool, err error) {
	t.Helper()

	var b bytes.Buffer
	a := commands.NewForTests(t, &b, args...)
	err = a.Run()
	return b.String(), a.UsageError(), err
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

// request is what the event database received.
type request struct {
	Method string
	Path   string
	Form   map[string]string
	File   string
}

type eventDatabase struct {
	*httptest.Server

	status int

	mu       sync.Mutex
	requests []request
}

// newEventDatabase starts a server answering every request with status and a new event id.
func newEventDatabase(t *testing.T, status int) *eventDatabase {
	t.Helper()

	db := &eventDatabase{status: status}
	db.Server = httptest.NewServer(http.HandlerFunc(db.handle))
	t.Cleanup(db.Close)
	return db
}

func (db *eventDatabase) handle(w http.ResponseWriter, r *http.Request) {
	req := request{Method: r.Method, Path: r.URL.Path, Form: make(map[string]string)}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				req.Form[k] = v[0]
			}
			if f, _, err := r.FormFile("eventFile"); err == nil {
				data, _ := io.ReadAll(f)
				req.File = string(data)
				f.Close()
			}
		}
	} else if err := r.ParseForm(); err == nil {
		for k, v := range r.PostForm {
			req.Form[k] = v[0]
		}
	}

	db.mu.Lock()
	db.requests = append(db.requests, req)
	db.mu.Unlock()

	w.WriteHeader(db.status)
	fmt.Fprint(w, `{"graceid": "H123"}`)
}

func (db *eventDatabase) received() []request {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.requests
}

// apiURL is the base URL of the event database API.
func (db *eventDatabase) apiURL() string {
	return db.URL + "/api/"
}
