package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// NewLogger returns a JSON slog.Logger tagged with a fresh session id
func NewLogger(level slog.Leveler) *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("session", uuid.NewString())
}
