package service

import (
	"context"
	_ "embed"
	"fmt"

	"daily_trader/internal/models"
	"daily_trader/pkg/db"
)

//go:embed schema.sql
var schema string

type Postgres struct {
	tx *db.PgTxManager
}

// NewPostgres накатывает схему и возвращает журнал поверх пула.
func NewPostgres(ctx context.Context, tx *db.PgTxManager) (*Postgres, error) {
	if _, err := tx.Conn().Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("pg.migrate: %w", err)
	}
	return &Postgres{tx: tx}, nil
}

func (p *Postgres) SaveOpen(ctx context.Context, runID string, rec models.OpenRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SaveOpen: %w", err)
		}
	}()

	const q = `
INSERT INTO open_journal (
    run_id, ticker, epic, direction, size, desired_stop, desired_take,
    status, reason, deal_reference, deal_id, outcome,
    observed_stop, observed_take, attempts, update_issued, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`

	return p.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, q,
			runID, rec.Ticker, rec.Epic, rec.Direction, rec.Size, rec.DesiredStop, rec.DesiredTake,
			rec.Status, rec.Reason, rec.DealReference, rec.DealID, rec.Outcome,
			rec.ObservedStop, rec.ObservedTake, rec.Attempts, rec.UpdateIssued, rec.At,
		)
		return err
	})
}

func (p *Postgres) SaveClose(ctx context.Context, runID string, rec models.CloseRecord) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.SaveClose: %w", err)
		}
	}()

	const q = `
INSERT INTO close_journal (
    run_id, deal_id, epic, instrument, direction, size, open_level,
    opened_at, business_days, profit, closed, error
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`

	return p.tx.RunMaster(ctx, func(ctx context.Context, tx db.Transaction) error {
		_, err := tx.Exec(ctx, q,
			runID, rec.DealID, rec.Epic, rec.Instrument, rec.Direction, rec.Size, rec.OpenLevel,
			rec.OpenedAt, rec.BusinessDays, rec.Profit, rec.Closed, rec.Error,
		)
		return err
	})
}

func (p *Postgres) Close() { p.tx.Close() }
