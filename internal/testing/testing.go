// package testing contains shared test doubles and filesystem assertions
package testing

import (
	"errors"
	"io"
	"net/http"
	"os"
	"testing"
)

// FWriter fails every Write. The zero value uses a canned error; set Err
// to control what callers observe.
type FWriter struct {
	Err error
}

func (f *FWriter) Write(p []byte) (int, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	return 0, errors.New("write failed")
}

// LimitedWriter forwards to target until the write budget is spent, then
// fails. Useful for breaking the second write of a two-write operation.
type LimitedWriter struct {
	remaining int
	target    io.Writer
}

func NewLimitedWriter(writes int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{remaining: writes, target: target}
}

func (l *LimitedWriter) Write(p []byte) (int, error) {
	if l.remaining <= 0 {
		return 0, errors.New("write limit exceeded")
	}
	l.remaining--
	return l.target.Write(p)
}

// MockRoundTripper serves a canned response or error for every request,
// standing in for an http.Client transport when no server should be hit.
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

// FCloser is a response body whose reads fail but whose Close succeeds.
type FCloser struct{}

func (f *FCloser) Read(p []byte) (int, error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error { return nil }

// Filesystem helpers for tests that write export files relative to the
// working directory.

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(content)
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file %s: %v", path, err)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Errorf("expected directory %s: %v", path, err)
		return
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", path)
	}
}
