// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command example runs a minimal agent that echoes the caller's text back
// as an artifact, demonstrating how to wire a task handler, server and HTTP
// transport together.
package main

import (
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-a2a/taskflow"
	"github.com/go-a2a/taskflow/server"
	"github.com/go-a2a/taskflow/task"
	"github.com/go-a2a/taskflow/transport"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	card := &taskflow.AgentCard{
		Name:        "echo-agent",
		Description: "Echoes the incoming message text back as an artifact.",
		URL:         "http://localhost" + *addr,
		Version:     taskflow.Version,
		Capabilities: taskflow.AgentCapabilities{
			Streaming: true,
		},
		Skills: []taskflow.AgentSkill{
			{ID: "echo", Name: "Echo", Description: "Repeats what you said."},
		},
	}

	srv, err := server.NewServer(echoHandler,
		server.WithStore(task.NewInMemoryStore()),
		server.WithCancelStore(task.NewInMemoryCancelStore()),
		server.WithAgentCard(card),
		server.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handler := transport.NewHandler(srv, transport.WithLogger(logger))

	logger.Info("listening", slog.String("addr", *addr))
	if err := http.ListenAndServe(*addr, handler); err != nil {
		logger.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// echoHandler streams a working status, one echoed artifact, and a
// completion status. It checks the cancellation probe between steps.
func echoHandler(ctx context.Context, tc *server.TaskContext) iter.Seq2[taskflow.Update, error] {
	return func(yield func(taskflow.Update, error) bool) {
		if !yield(taskflow.NewStatusUpdate(taskflow.TaskStateWorking, nil), nil) {
			return
		}
		if tc.IsCancelled() {
			return
		}

		text := taskflow.GetMessageText(tc.UserMessage, "\n")
		artifact := taskflow.NewTextArtifact("echo", fmt.Sprintf("you said: %s", text), "")
		if !yield(taskflow.NewArtifactUpdate(artifact), nil) {
			return
		}

		yield(taskflow.NewStatusUpdate(taskflow.TaskStateCompleted,
			taskflow.NewAgentTextMessage("done")), nil)
	}
}
