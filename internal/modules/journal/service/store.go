package service

import (
	"context"

	"daily_trader/internal/models"

	"github.com/google/uuid"
)

type Store interface {
	SaveOpen(ctx context.Context, runID string, rec models.OpenRecord) error
	SaveClose(ctx context.Context, runID string, rec models.CloseRecord) error
	Close()
}

// NewRunID идентификатор одного запуска команды.
func NewRunID() string { return uuid.NewString() }
