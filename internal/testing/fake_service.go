package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/tqlx/internal/models"
)

// RecordedRequest is a request received by [FakeService].
type RecordedRequest struct {
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
}

type fakeFailure struct {
	status int
	body   string
}

// FakeService is an in-memory stand-in for the playbook service served over [httptest].
//
// Playbooks are keyed by playbookId; server ids are "pb_" + playbookId.
type FakeService struct {
	Server     *httptest.Server
	Connectors []models.Connector

	mu        sync.Mutex
	playbooks map[string]models.Playbook
	requests  []RecordedRequest
	failures  map[string]fakeFailure
}

// NewFakeService starts a fake service that is closed when the test ends.
func NewFakeService(t *testing.T) *FakeService {
	t.Helper()

	f := &FakeService{
		playbooks: make(map[string]models.Playbook),
		failures:  make(map[string]fakeFailure),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake service.
func (f *FakeService) URL() string {
	return f.Server.URL
}

// Fail makes every request whose path ends with method ("CreatePlaybook", "UpdatePlaybook", "GetConnectors")
// answer with status and the raw body.
func (f *FakeService) Fail(method string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = fakeFailure{status: status, body: body}
}

// Calls returns how many requests were made to method.
func (f *FakeService) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, r := range f.requests {
		if strings.HasSuffix(r.Path, "/"+method) {
			n++
		}
	}
	return n
}

// Requests returns a copy of all recorded requests.
func (f *FakeService) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// LastBody returns the body of the most recent request to method, or nil.
func (f *FakeService) LastBody(method string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := len(f.requests) - 1; i >= 0; i-- {
		if strings.HasSuffix(f.requests[i].Path, "/"+method) {
			return f.requests[i].Body
		}
	}
	return nil
}

// Playbook returns the stored playbook for playbookID.
func (f *FakeService) Playbook(playbookID string) (models.Playbook, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.playbooks[playbookID]
	return p, ok
}

func (f *FakeService) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	failure, failing := f.failures[method]
	f.mu.Unlock()

	if failing {
		w.WriteHeader(failure.status)
		w.Write([]byte(failure.body))
		return
	}

	if r.Method != http.MethodPost {
		writeFakeError(w, http.StatusMethodNotAllowed, "unimplemented", "method not allowed")
		return
	}
	if !strings.HasPrefix(r.Header.Get("Authorization"), "ApiKey ") {
		writeFakeError(w, http.StatusUnauthorized, "unauthenticated", "missing API key")
		return
	}

	switch method {
	case "CreatePlaybook":
		f.createPlaybook(w, body)
	case "UpdatePlaybook":
		f.updatePlaybook(w, body)
	case "GetConnectors":
		writeFakeJSON(w, map[string]any{"connectors": f.Connectors})
	default:
		writeFakeError(w, http.StatusNotFound, "not_found", "unknown procedure")
	}
}

func (f *FakeService) createPlaybook(w http.ResponseWriter, body []byte) {
	var req struct {
		Playbook struct {
			ID string `json:"id"`
		} `json:"playbook"`
	}
	if err := json.Unmarshal(body, &req); err != nil || req.Playbook.ID == "" {
		writeFakeError(w, http.StatusBadRequest, "invalid_argument", "playbook.id is required")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.playbooks[req.Playbook.ID]; exists {
		writeFakeError(w, http.StatusConflict, "already_exists", "playbook already exists")
		return
	}

	playbook := models.Playbook{ID: "pb_" + req.Playbook.ID, PlaybookID: req.Playbook.ID}
	f.playbooks[req.Playbook.ID] = playbook
	writeFakeJSON(w, map[string]any{"playbook": map[string]string{"id": playbook.ID}})
}

func (f *FakeService) updatePlaybook(w http.ResponseWriter, body []byte) {
	var req models.UpdatePlaybookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeFakeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	existing, ok := f.playbooks[req.PlaybookID]
	if !ok {
		writeFakeError(w, http.StatusNotFound, "not_found", "playbook not found")
		return
	}

	playbook := models.Playbook{
		ID:              existing.ID,
		PlaybookID:      req.PlaybookID,
		Prompt:          req.Prompt,
		Name:            req.Name,
		EmailAddresses:  req.EmailAddresses,
		Status:          req.Status,
		ParadigmType:    req.ParadigmType,
		ParadigmOptions: req.ParadigmOptions,
		TriggerType:     req.TriggerType,
		CronString:      req.CronString,
	}
	f.playbooks[req.PlaybookID] = playbook
	writeFakeJSON(w, playbook)
}

func writeFakeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeFakeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}
