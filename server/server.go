// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package server implements the task orchestration engine: JSON-RPC method
// dispatch, the task lifecycle controller, streaming subscriptions and
// cooperative cancellation.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/taskflow"
	"github.com/go-a2a/taskflow/task"
)

// tracerName is the instrumentation scope for server spans.
const tracerName = "github.com/go-a2a/taskflow/server"

// Server is the protocol engine. It owns method dispatch, the task
// lifecycle, update persistence and streaming. Transport concerns (HTTP,
// SSE framing) live in the transport package; the Server consumes
// already-decoded request envelopes.
type Server struct {
	handler TaskHandler
	store   task.Store
	cancels task.CancelStore
	card    *taskflow.AgentCard

	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures a [Server].
type Option func(*Server)

// WithStore sets the task snapshot store. Defaults to an in-memory store.
func WithStore(store task.Store) Option {
	return func(s *Server) { s.store = store }
}

// WithCancelStore sets the cancellation flag store. Defaults to an
// in-memory store.
func WithCancelStore(cancels task.CancelStore) Option {
	return func(s *Server) { s.cancels = cancels }
}

// WithAgentCard sets the agent capability descriptor served to clients.
func WithAgentCard(card *taskflow.AgentCard) Option {
	return func(s *Server) { s.card = card }
}

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTracer sets the tracer for the server.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) { s.tracer = tracer }
}

// WithClock sets the time source used for status timestamps. Tests use this
// to make transitions deterministic.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer creates a new Server driving the given handler.
func NewServer(handler TaskHandler, opts ...Option) (*Server, error) {
	if handler == nil {
		return nil, errors.New("task handler cannot be nil")
	}

	s := &Server{
		handler: handler,
		logger:  slog.Default(),
		tracer:  otel.GetTracerProvider().Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = task.NewInMemoryStore()
	}
	if s.cancels == nil {
		s.cancels = task.NewInMemoryCancelStore()
	}

	return s, nil
}

// Card returns the agent capability descriptor, or nil if none was set.
func (s *Server) Card() *taskflow.AgentCard {
	return s.card
}

// Dispatch routes a decoded request envelope to its operation and returns
// the response envelope. It returns nil when the request must not be
// answered: every method here bears a response, so a null or absent request
// id makes the call unanswerable and it is dropped with a warning.
func (s *Server) Dispatch(ctx context.Context, req *taskflow.JSONRPCRequest) *taskflow.JSONRPCResponse {
	if !req.HasID() {
		s.logger.WarnContext(ctx, "dropping request without usable id",
			slog.String("method", req.Method))
		return nil
	}

	result, err := s.dispatchMethod(ctx, req)
	if err != nil {
		return taskflow.NewJSONRPCErrorResponse(req.ID, s.normalizeError(ctx, req, err).RPCError())
	}
	return taskflow.NewJSONRPCResponse(req.ID, result)
}

func (s *Server) dispatchMethod(ctx context.Context, req *taskflow.JSONRPCRequest) (any, error) {
	switch req.Method {
	case taskflow.MethodTasksSend:
		var params taskflow.TaskSendParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		return s.onSendTask(ctx, &params)

	case taskflow.MethodTasksGet:
		var params taskflow.TaskQueryParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		return s.onGetTask(ctx, &params)

	case taskflow.MethodTasksCancel:
		var params taskflow.TaskIDParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		return s.onCancelTask(ctx, &params)

	case taskflow.MethodTasksSendSubscribe:
		// Needs a push sink, so it only makes sense on a streaming
		// transport. See DispatchStream.
		return nil, taskflow.NewUnsupportedOperationError()

	case taskflow.MethodTasksResubscribe:
		return nil, taskflow.NewUnsupportedOperationError()

	case taskflow.MethodTasksPushNotificationSet:
		var params taskflow.TaskPushNotificationConfig
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		notSupported := taskflow.NewPushNotificationNotSupportedError()
		notSupported.TaskID = params.ID
		return nil, notSupported

	case taskflow.MethodTasksPushNotificationGet:
		var params taskflow.TaskIDParams
		if err := unmarshalParams(req.Params, &params); err != nil {
			return nil, err
		}
		notSupported := taskflow.NewPushNotificationNotSupportedError()
		notSupported.TaskID = params.ID
		return nil, notSupported

	default:
		return nil, taskflow.NewMethodNotFoundError()
	}
}

// DispatchStream handles a tasks/sendSubscribe envelope, driving sink until
// a final event has been delivered. A non-nil return means the stream never
// started and the caller should answer with an error envelope instead.
func (s *Server) DispatchStream(ctx context.Context, req *taskflow.JSONRPCRequest, sink EventSink) error {
	if !req.HasID() {
		s.logger.WarnContext(ctx, "dropping request without usable id",
			slog.String("method", req.Method))
		return nil
	}
	if req.Method != taskflow.MethodTasksSendSubscribe {
		return s.normalizeError(ctx, req, taskflow.NewMethodNotFoundError())
	}

	var params taskflow.TaskSendParams
	if err := unmarshalParams(req.Params, &params); err != nil {
		return s.normalizeError(ctx, req, err)
	}
	if err := s.onSendTaskSubscribe(ctx, &params, sink); err != nil {
		return s.normalizeError(ctx, req, err)
	}
	return nil
}

// unmarshalParams decodes raw params into the method's parameter type and
// validates them.
func unmarshalParams(raw jsontext.Value, params interface{ Validate() error }) error {
	if len(raw) == 0 {
		return taskflow.NewInvalidParamsError()
	}
	if err := json.Unmarshal(raw, params); err != nil {
		return taskflow.NewInvalidParamsError()
	}
	if err := params.Validate(); err != nil {
		invalid := taskflow.NewInvalidParamsError()
		invalid.Data = err.Error()
		return invalid
	}
	return nil
}

// normalizeError maps err to a protocol error, back-fills its task id from
// params when the failure happened before an operation could attach one, and
// logs it.
func (s *Server) normalizeError(ctx context.Context, req *taskflow.JSONRPCRequest, err error) *taskflow.Error {
	protoErr := taskflow.NormalizeError(err)
	if protoErr.TaskID == "" {
		protoErr.TaskID = taskIDFromParams(req.Params)
	}
	s.logger.WarnContext(ctx, "request failed",
		slog.String("method", req.Method),
		slog.String("task_id", protoErr.TaskID),
		slog.Int("code", protoErr.Code),
		slog.String("error", protoErr.Message))
	return protoErr
}

// taskIDFromParams extracts the id field from raw params, best effort.
func taskIDFromParams(raw jsontext.Value) string {
	if len(raw) == 0 {
		return ""
	}
	var probe struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ID
}
