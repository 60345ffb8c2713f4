package services

import (
	"log/slog"
)

// LogToaster shows toasts as log lines, for headless runs.
type LogToaster struct {
	log *slog.Logger
}

func NewLogToaster(log *slog.Logger) *LogToaster {
	return &LogToaster{log: log}
}

func (t *LogToaster) Success(message string) {
	t.log.Info("Toast", "kind", "success", "message", message)
}

func (t *LogToaster) Error(message string) {
	t.log.Error("Toast", "kind", "error", "message", message)
}
