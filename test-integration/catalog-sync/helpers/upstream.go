package helpers

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// Upstream fakes the academy and labs services on one server.
// Academy paths live under /academy, labs paths under /labs.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	fixtures map[string]string
	requests map[string]int
}

// NewUpstream serves the default fixture: one module with two units, one exam and one machine
func NewUpstream() *Upstream {
	u := &Upstream{
		fixtures: map[string]string{
			"/academy/modules/5": `{"data": {"id": 5, "name": "SQL Injection Fundamentals", "difficulty": "Medium",
				"sections": [
					{"id": 501, "title": "Exploitation", "page": 2, "type": "interactive"},
					{"id": 500, "title": "Introduction", "page": 1, "type": "article"}
				],
				"tags": [{"id": 9, "name": "SQLi"}],
				"related_machines": [{"id": 42, "name": "Lame"}]}}`,
			"/academy/exams":           `{"data": [{"id": 1, "name": "CPTS", "logo": "cpts.svg"}]}`,
			"/academy/exams/1/modules": `{"data": [5]}`,
			"/labs/machine/profile/42": `{"info": {"id": 42, "name": "Lame", "os": "Linux", "difficultyText": "Easy"}}`,
			"/labs/machine/tags/42":    `{"info": [{"id": 9, "name": "SQLi", "category": "Vulnerability"}]}`,
		},
		requests: map[string]int{},
	}
	u.Server = httptest.NewServer(http.HandlerFunc(u.serve))
	return u
}

func (u *Upstream) serve(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.requests[r.URL.Path]++
	body, found := u.fixtures[r.URL.Path]
	u.mu.Unlock()

	if !found {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

// SetFixture replaces the body served for path
func (u *Upstream) SetFixture(path, body string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fixtures[path] = body
}

// Requests returns how many times path was requested
func (u *Upstream) Requests(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests[path]
}

// AcademyURL is the academy base URL
func (u *Upstream) AcademyURL() string {
	return u.URL + "/academy"
}

// LabsURL is the labs base URL
func (u *Upstream) LabsURL() string {
	return u.URL + "/labs"
}
