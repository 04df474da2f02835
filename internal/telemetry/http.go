package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Endpoint paths under the backend root.
const (
	ClickPath       = "/api/track_click"
	ReadAloudPath   = "/api/track_read_aloud"
	VoiceSearchPath = "/api/track_voice_search"
)

// HTTPSink posts each record as JSON. It blocks for the duration of the
// request, so wrap it in Async.
type HTTPSink struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewHTTPSink posts to endpoint.
func NewHTTPSink(endpoint string, timeout time.Duration, logger *log.Logger) *HTTPSink {
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &HTTPSink{
		baseURL: strings.TrimSuffix(endpoint, "/"),
		client:  &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

func (s *HTTPSink) RecordClick(c Click)             { s.post(ClickPath, c) }
func (s *HTTPSink) RecordReadAloud(r ReadAloud)     { s.post(ReadAloudPath, r) }
func (s *HTTPSink) RecordVoiceSearch(v VoiceSearch) { s.post(VoiceSearchPath, v) }

func (s *HTTPSink) post(path string, record any) {
	if err := s.send(path, record); err != nil {
		s.logger.Debug("Telemetry not recorded", "path", path, "err", err)
	}
}

func (s *HTTPSink) send(path string, record any) error {
	body, err := json.Marshal(record)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
