package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/aashari/go-content-dashboard/internal/utils"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSink POSTs each entry as a JSON document to a remote endpoint
type HTTPSink struct {
	endpoint string
	client   Doer
}

// NewHTTPSink creates a sink for endpoint. A nil client uses http.DefaultClient.
func NewHTTPSink(endpoint string, client Doer) *HTTPSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSink{endpoint: endpoint, client: client}
}

// Send posts one entry. Any non-2xx answer is an error.
func (s *HTTPSink) Send(ctx context.Context, entry LogEntry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode log entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create log request: %w", err)
	}
	req.Header.Set(utils.HeaderContentType, utils.ContentTypeJSON)
	if entry.RequestID != "" {
		req.Header.Set(utils.HeaderRequestID, entry.RequestID)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send log entry: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("remote log endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// MemorySink keeps every entry it receives. It is safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	entries []LogEntry
	err     error
}

// NewMemorySink creates an empty in-memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// FailWith makes subsequent sends return err without storing the entry
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MemorySink) Send(ctx context.Context, entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of the received entries in arrival order
func (s *MemorySink) Entries() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LogEntry(nil), s.entries...)
}
