// Package worker turns inbound AMQP transaction messages into stored
// records. Validation failures are permanent rejections; storage
// failures are retried by the consumer loop.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"kopilka/internal/amqp"
	"kopilka/internal/core"
	"kopilka/internal/store"
)

// IngestWorker persists transactions arriving from external feeds
type IngestWorker struct {
	store store.TransactionStore
}

func NewIngestWorker(st store.TransactionStore) *IngestWorker {
	return &IngestWorker{store: st}
}

// HandleTransactionMessage parses, validates and stores one inbound
// message. Parse and validation errors wrap amqp.ErrReject so the
// delivery is dropped instead of requeued.
func (w *IngestWorker) HandleTransactionMessage(ctx context.Context, msg *amqp.TransactionMessage) error {
	txn, err := w.toTransaction(msg)
	if err != nil {
		return fmt.Errorf("%w: %v", amqp.ErrReject, err)
	}

	created, err := w.store.CreateTransaction(ctx, txn)
	if err != nil {
		return fmt.Errorf("store transaction: %w", err)
	}

	slog.InfoContext(ctx, "Ingested external transaction",
		"id", created.ID,
		"category", created.Category,
		"amount_cents", created.Amount.Cents,
		"source", msg.Source)

	return nil
}

func (w *IngestWorker) toTransaction(msg *amqp.TransactionMessage) (core.Transaction, error) {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", msg.Date, err)
	}

	amount, err := core.ParseMoney(msg.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", msg.Amount, err)
	}

	txn := core.Transaction{
		Date:        date,
		Amount:      amount,
		Category:    msg.Category,
		Description: msg.Description,
		Type:        core.FlowType(msg.Type),
	}
	if txn.Category == "" {
		txn.Category = core.CategoryOther
	}
	if err := txn.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return txn, nil
}
