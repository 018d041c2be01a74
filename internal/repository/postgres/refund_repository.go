package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const refundColumns = `id, transaction_id, processor_refund_id,
	        amount, currency, status, reason,
	        metadata, processor_response,
	        processed_at, failed_at, created_at, updated_at`

// RefundRepository implements transaction.RefundRepository using PostgreSQL.
type RefundRepository struct {
	pool *pgxpool.Pool
}

// NewRefundRepository creates a new RefundRepository.
func NewRefundRepository(pool *pgxpool.Pool) *RefundRepository {
	return &RefundRepository{pool: pool}
}

func (r *RefundRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Create inserts a new refund.
func (r *RefundRepository) Create(ctx context.Context, ref *transaction.Refund) error {
	metadata, err := json.Marshal(ref.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	response, err := json.Marshal(ref.ProcessorResponse)
	if err != nil {
		return fmt.Errorf("marshal processor response: %w", err)
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO cashier_refunds
		 (id, transaction_id, processor_refund_id,
		  amount, currency, status, reason,
		  metadata, processor_response,
		  processed_at, failed_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		ref.ID, ref.TransactionID, nullIfEmpty(ref.ProcessorRefundID),
		ref.Amount, ref.Currency, string(ref.Status), ref.Reason,
		metadata, response,
		ref.ProcessedAt, ref.FailedAt, ref.CreatedAt, ref.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert refund: %w", err)
	}
	return nil
}

// GetByID retrieves a refund by its ID.
func (r *RefundRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Refund, error) {
	return r.scanRefund(r.db(ctx).QueryRow(ctx,
		`SELECT `+refundColumns+` FROM cashier_refunds WHERE id = $1`, id))
}

// Update updates an existing refund.
func (r *RefundRepository) Update(ctx context.Context, ref *transaction.Refund) error {
	metadata, err := json.Marshal(ref.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	response, err := json.Marshal(ref.ProcessorResponse)
	if err != nil {
		return fmt.Errorf("marshal processor response: %w", err)
	}

	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE cashier_refunds SET
		  processor_refund_id=$1, status=$2, reason=$3,
		  metadata=$4, processor_response=$5,
		  processed_at=$6, failed_at=$7, updated_at=$8
		 WHERE id=$9`,
		nullIfEmpty(ref.ProcessorRefundID), string(ref.Status), ref.Reason,
		metadata, response,
		ref.ProcessedAt, ref.FailedAt, ref.UpdatedAt, ref.ID,
	)
	if err != nil {
		return fmt.Errorf("update refund: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrRefundNotFound
	}
	return nil
}

// ListByTransaction lists refunds for a transaction, oldest first.
func (r *RefundRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Refund, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+refundColumns+` FROM cashier_refunds
		 WHERE transaction_id = $1 ORDER BY created_at ASC`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("list refunds: %w", err)
	}
	defer rows.Close()

	var refunds []*transaction.Refund
	for rows.Next() {
		ref, err := r.scanRefund(rows)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, ref)
	}
	return refunds, rows.Err()
}

// SumRefunded sums refund amounts for a transaction filtered by status. Called
// inside the refund transaction so the remaining-refundable check and the
// insert see the same ledger state.
func (r *RefundRepository) SumRefunded(ctx context.Context, transactionID uuid.UUID, status transaction.RefundStatus) (int64, error) {
	var total int64
	err := r.db(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM cashier_refunds
		 WHERE transaction_id = $1 AND status = $2`,
		transactionID, string(status),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum refunds: %w", err)
	}
	return total, nil
}

// scanRefund scans a refund from any source implementing the scanner interface.
func (r *RefundRepository) scanRefund(s scanner) (*transaction.Refund, error) {
	ref := &transaction.Refund{Metadata: make(map[string]any)}
	var (
		processorRefundID *string
		status            string
		metadata          []byte
		response          []byte
	)
	err := s.Scan(
		&ref.ID, &ref.TransactionID, &processorRefundID,
		&ref.Amount, &ref.Currency, &status, &ref.Reason,
		&metadata, &response,
		&ref.ProcessedAt, &ref.FailedAt, &ref.CreatedAt, &ref.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrRefundNotFound
		}
		return nil, fmt.Errorf("scan refund: %w", err)
	}

	if processorRefundID != nil {
		ref.ProcessorRefundID = *processorRefundID
	}
	ref.Status = transaction.RefundStatus(status)

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &ref.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal refund metadata: %w", err)
		}
	}
	if len(response) > 0 {
		if err := json.Unmarshal(response, &ref.ProcessorResponse); err != nil {
			return nil, fmt.Errorf("unmarshal processor response: %w", err)
		}
	}
	return ref, nil
}
