// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport provides the HTTP and Server-Sent Events boundary for
// the protocol engine. It decodes inbound JSON-RPC envelopes, enforces
// structural validity, and hands well-formed requests to the server.
package transport

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/go-a2a/taskflow"
	"github.com/go-a2a/taskflow/auth"
	"github.com/go-a2a/taskflow/server"
)

// rawEnvelope holds an inbound request with every field still raw, so the
// handler can judge structure before committing to types.
type rawEnvelope struct {
	JSONRPC jsontext.Value `json:"jsonrpc"`
	ID      jsontext.Value `json:"id"`
	Method  jsontext.Value `json:"method"`
	Params  jsontext.Value `json:"params"`
}

// Handler is the HTTP front end of a [server.Server]. It serves the agent
// card on GET and JSON-RPC calls on POST, upgrading tasks/sendSubscribe
// calls to an SSE stream.
type Handler struct {
	server *server.Server
	logger *slog.Logger
}

var _ http.Handler = (*Handler)(nil)

// HandlerOption configures a [Handler].
type HandlerOption func(*Handler)

// WithLogger sets the logger for the handler.
func WithLogger(logger *slog.Logger) HandlerOption {
	return func(h *Handler) { h.logger = logger }
}

// NewHandler creates a new Handler fronting srv.
func NewHandler(srv *server.Server, opts ...HandlerOption) *Handler {
	h := &Handler{
		server: srv,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP implements [http.Handler].
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == taskflow.AgentCardWellKnownPath:
		h.serveAgentCard(w, r)
	case r.Method == http.MethodPost:
		h.serveRPC(w, r)
	default:
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

// serveAgentCard serves the agent capability descriptor.
func (h *Handler) serveAgentCard(w http.ResponseWriter, r *http.Request) {
	card := h.server.Card()
	if card == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.MarshalWrite(w, card); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write agent card",
			slog.String("error", err.Error()))
	}
}

// serveRPC decodes and structurally validates one JSON-RPC envelope, then
// routes it. A malformed envelope is a boundary failure answered with
// HTTP 400; protocol-level failures travel inside a 200 response.
func (h *Handler) serveRPC(w http.ResponseWriter, r *http.Request) {
	ctx := auth.NewContext(r.Context(), auth.FromAuthorizationHeader(r.Header.Get("Authorization")))

	var env rawEnvelope
	if err := json.UnmarshalRead(r.Body, &env); err != nil {
		h.writeError(w, http.StatusBadRequest, nullID, taskflow.NewJSONParseError())
		return
	}

	if err := validateEnvelope(&env); err != nil {
		h.writeError(w, http.StatusBadRequest, responseID(env.ID), err)
		return
	}

	var method string
	if err := json.Unmarshal(env.Method, &method); err != nil {
		h.writeError(w, http.StatusBadRequest, responseID(env.ID), taskflow.NewInvalidRequestError())
		return
	}

	req := &taskflow.JSONRPCRequest{
		JSONRPCMessage: taskflow.JSONRPCMessage{
			JSONRPC: "2.0",
			ID:      env.ID,
		},
		Method: method,
		Params: env.Params,
	}

	if !req.HasID() {
		// Unanswerable call (null or absent id); acknowledge receipt only.
		h.logger.WarnContext(ctx, "dropping call without a usable request id",
			slog.String("method", method))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if method == taskflow.MethodTasksSendSubscribe {
		h.serveStream(ctx, w, req)
		return
	}

	resp := h.server.Dispatch(ctx, req)
	if resp == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.writeResponse(w, http.StatusOK, resp)
}

// serveStream runs a tasks/sendSubscribe call over SSE. An error before the
// stream starts is answered as a regular JSON-RPC error response.
func (h *Handler) serveStream(ctx context.Context, w http.ResponseWriter, req *taskflow.JSONRPCRequest) {
	stream, err := NewSSEStream(w, req.ID)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, responseID(req.ID), taskflow.NewInternalError())
		return
	}

	if err := h.server.DispatchStream(ctx, req, stream); err != nil {
		h.writeError(w, http.StatusOK, responseID(req.ID), taskflow.NormalizeError(err))
	}
}

// nullID is the response id used when the request id is unusable.
var nullID = jsontext.Value("null")

// responseID picks the id to answer with: the request's own id when it is
// structurally valid, JSON null otherwise.
func responseID(id jsontext.Value) jsontext.Value {
	if validIDKind(id) {
		return id
	}
	return nullID
}

// validateEnvelope enforces the structural rules for an inbound envelope:
// the version tag must equal "2.0", method must be a non-empty string, id
// must be a string, number or null, and params when present must be an
// object or array.
func validateEnvelope(env *rawEnvelope) *taskflow.Error {
	if !bytes.Equal(env.JSONRPC, jsontext.Value(`"2.0"`)) {
		return taskflow.NewInvalidRequestError()
	}
	if len(env.Method) == 0 || env.Method.Kind() != '"' || bytes.Equal(env.Method, jsontext.Value(`""`)) {
		return taskflow.NewInvalidRequestError()
	}
	if !validIDKind(env.ID) {
		return taskflow.NewInvalidRequestError()
	}
	if len(env.Params) > 0 {
		if kind := env.Params.Kind(); kind != '{' && kind != '[' {
			return taskflow.NewInvalidRequestError()
		}
	}
	return nil
}

// validIDKind reports whether id is absent, a string, a number or null.
func validIDKind(id jsontext.Value) bool {
	if len(id) == 0 {
		return true
	}
	switch id.Kind() {
	case '"', '0', 'n':
		return true
	default:
		return false
	}
}

// writeError writes a JSON-RPC error envelope with the given HTTP status.
func (h *Handler) writeError(w http.ResponseWriter, status int, id jsontext.Value, protoErr *taskflow.Error) {
	h.writeResponse(w, status, taskflow.NewJSONRPCErrorResponse(id, protoErr.RPCError()))
}

// writeResponse serializes a response envelope.
func (h *Handler) writeResponse(w http.ResponseWriter, status int, resp *taskflow.JSONRPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, resp); err != nil {
		h.logger.Warn("failed to write response",
			slog.String("error", err.Error()))
	}
}
