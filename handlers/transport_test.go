package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
)

type recordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// fakeAPI answers REST calls by method and path suffix.
type fakeAPI struct {
	mu        sync.Mutex
	requests  []recordedRequest
	responses map[string]string
	status    map[string]int
}

func (f *fakeAPI) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   string(body),
	})
	f.mu.Unlock()

	status := http.StatusNoContent
	payload := ""
	for key, resp := range f.responses {
		method, suffix, _ := strings.Cut(key, " ")
		if method == req.Method && strings.HasSuffix(req.URL.Path, suffix) {
			status, payload = http.StatusOK, resp
		}
	}
	for key, code := range f.status {
		method, suffix, _ := strings.Cut(key, " ")
		if method == req.Method && strings.HasSuffix(req.URL.Path, suffix) {
			status = code
		}
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(payload)),
		Request:    req,
	}, nil
}

func (f *fakeAPI) all() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func newFakeSession(t *testing.T, api *fakeAPI) *discordgo.Session {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatal(err)
	}
	s.Client = &http.Client{Transport: api}
	s.MaxRestRetries = 0
	return s
}
