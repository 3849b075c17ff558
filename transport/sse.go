// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/taskflow"
	"github.com/go-a2a/taskflow/server"
)

// SSEStream delivers task events to one subscriber as Server-Sent Events.
// Each event is wrapped in a JSON-RPC response envelope carrying the
// originating request id, so subscribers can correlate the stream with the
// call that opened it. It implements [server.EventSink].
type SSEStream struct {
	w         http.ResponseWriter
	flusher   http.Flusher
	requestID jsontext.Value

	mu      sync.Mutex
	started bool
	closed  bool
}

var _ server.EventSink = (*SSEStream)(nil)

// NewSSEStream creates an SSE stream over w for the request identified by
// requestID. It fails if the client connection does not support flushing.
func NewSSEStream(w http.ResponseWriter, requestID jsontext.Value) (*SSEStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming unsupported: response writer does not implement http.Flusher")
	}
	return &SSEStream{
		w:         w,
		flusher:   flusher,
		requestID: requestID,
	}, nil
}

// Send implements [server.EventSink]. The SSE headers go out with the first
// event; every event is flushed immediately so subscribers see updates as
// they are produced.
func (s *SSEStream) Send(event taskflow.TaskEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("stream is closed")
	}

	if !s.started {
		header := s.w.Header()
		header.Set("Content-Type", "text/event-stream")
		header.Set("Cache-Control", "no-cache")
		header.Set("Connection", "keep-alive")
		header.Set("X-Accel-Buffering", "no") // For Nginx proxy
		s.started = true
	}

	envelope := taskflow.NewJSONRPCResponse(s.requestID, event)
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()

	return nil
}

// Close implements [server.EventSink]. Closing is idempotent; closing an
// already-closed stream is a no-op.
func (s *SSEStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
