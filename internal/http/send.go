package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"trainload/internal/core"
)

// maxBodySize limits how much of a response body is kept for classification.
const maxBodySize = 10 * 1024 * 1024 // 10MB

// Response is what one request cycle observed. StatusCode is 0 when the
// transport produced no response; Err then holds the cause.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Latency    time.Duration
	BytesSent  int64
	Err        error
}

// Sender issues requests on behalf of actors.
type Sender struct {
	Client *http.Client
	Debug  *DebugLogger
	Clock  core.Clock
}

// Send performs req and reads the body. It never returns a Go error: every
// failure is folded into the Response so the caller can classify it.
func (s *Sender) Send(ctx context.Context, target string, req *http.Request) Response {
	clock := s.Clock
	if clock == nil {
		clock = core.RealClock{}
	}
	actorID := core.ActorIDFromContext(ctx)

	s.Debug.LogRequest(actorID, target, req)

	start := clock.Now()
	resp, err := s.Client.Do(req)
	if err != nil {
		latency := clock.Since(start)
		s.Debug.LogError(actorID, target, err.Error(), latency)
		return Response{Latency: latency, BytesSent: req.ContentLength, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	_, _ = io.Copy(io.Discard, resp.Body) // drain errors are ignorable
	latency := clock.Since(start)

	s.Debug.LogResponse(actorID, target, resp, body, latency)

	return Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Latency:    latency,
		BytesSent:  req.ContentLength,
		Err:        readErr,
	}
}
