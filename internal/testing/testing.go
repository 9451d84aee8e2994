// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/lrcx/internal/models"
)

// Call records a single request made against [MockCatalog].
type Call struct {
	Method string
	Query  string
	Limit  int
	ID     int64
	At     time.Time
}

// MockCatalog is a test double for [services.Catalog].
//
// Search results are keyed by query, details and lyrics by track ID. LyricErrs and LyricPayloads are consumed in order
// per ID before falling back to Lyrics, which lets tests script failing attempts followed by a success.
type MockCatalog struct {
	mu sync.Mutex

	Results   map[string][]models.Candidate
	SearchErr error

	Details   map[int64]models.Candidate
	DetailErr error

	Lyrics        map[int64]models.LyricPayload
	LyricErrs     map[int64][]error
	LyricPayloads map[int64][]models.LyricPayload

	calls []Call
}

// NewMockCatalog creates an empty [MockCatalog].
func NewMockCatalog() *MockCatalog {
	return &MockCatalog{
		Results:       make(map[string][]models.Candidate),
		Details:       make(map[int64]models.Candidate),
		Lyrics:        make(map[int64]models.LyricPayload),
		LyricErrs:     make(map[int64][]error),
		LyricPayloads: make(map[int64][]models.LyricPayload),
	}
}

func (m *MockCatalog) record(c Call) {
	c.At = time.Now()
	m.calls = append(m.calls, c)
}

func (m *MockCatalog) Search(ctx context.Context, query string, limit int) ([]models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Method: "search", Query: query, Limit: limit})

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	results := m.Results[query]
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockCatalog) Detail(ctx context.Context, id int64) (models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Method: "detail", ID: id})

	if m.DetailErr != nil {
		return models.Candidate{}, m.DetailErr
	}
	d, ok := m.Details[id]
	if !ok {
		return models.Candidate{}, errors.New("song not found")
	}
	return d, nil
}

func (m *MockCatalog) Lyric(ctx context.Context, id int64) (models.LyricPayload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record(Call{Method: "lyric", ID: id})

	if errs := m.LyricErrs[id]; len(errs) > 0 {
		m.LyricErrs[id] = errs[1:]
		if errs[0] != nil {
			return models.LyricPayload{}, errs[0]
		}
	}
	if payloads := m.LyricPayloads[id]; len(payloads) > 0 {
		m.LyricPayloads[id] = payloads[1:]
		return payloads[0], nil
	}
	return m.Lyrics[id], nil
}

func (m *MockCatalog) Name() string { return "mock" }

// Calls returns a copy of the recorded calls.
func (m *MockCatalog) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// CountCalls returns the number of recorded calls to method.
func (m *MockCatalog) CountCalls(method string) int {
	n := 0
	for _, c := range m.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// timeoutError satisfies [net.Error] with Timeout() true.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// ErrTimeout is a network timeout suitable for [NewMockRoundTripper].
var ErrTimeout error = timeoutError{}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
