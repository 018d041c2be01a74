package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// allowedSortColumns is a whitelist of columns valid for ORDER BY.
var allowedSortColumns = map[string]string{
	"created_at": "created_at",
	"amount":     "amount",
	"status":     "status",
	"updated_at": "updated_at",
}

const transactionColumns = `id, processor_name, processor_transaction_id,
	        payable_type, payable_id,
	        payment_method_type, payment_method_brand, payment_method_last_four, payment_method_display_name,
	        amount, currency, status, description,
	        metadata, processor_response, error_code, error_message,
	        processed_at, failed_at, created_at, updated_at`

// TransactionRepository implements transaction.Repository using PostgreSQL.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

func (r *TransactionRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Create inserts a new transaction. The payment method snapshot is flattened
// into columns so the record stays self-contained.
func (r *TransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	response, err := json.Marshal(t.ProcessorResponse)
	if err != nil {
		return fmt.Errorf("marshal processor response: %w", err)
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO cashier_transactions
		 (id, processor_name, processor_transaction_id,
		  payable_type, payable_id,
		  payment_method_type, payment_method_brand, payment_method_last_four, payment_method_display_name,
		  amount, currency, status, description,
		  metadata, processor_response, error_code, error_message,
		  processed_at, failed_at, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		t.ID, t.ProcessorName, nullIfEmpty(t.ProcessorTransactionID),
		t.Payable.Type, t.Payable.ID,
		string(t.PaymentMethod.Type), string(t.PaymentMethod.Brand), t.PaymentMethod.LastFour, t.PaymentMethod.DisplayName,
		t.Amount, t.Currency, string(t.Status), t.Description,
		metadata, response, t.ErrorCode, t.ErrorMessage,
		t.ProcessedAt, t.FailedAt, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by its ID, including its refunds.
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	t, err := r.scanTransaction(r.db(ctx).QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM cashier_transactions WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadRefunds(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByProcessorTransactionID retrieves a transaction by the id the processor
// assigned to it.
func (r *TransactionRepository) GetByProcessorTransactionID(ctx context.Context, processorName, processorTxID string) (*transaction.Transaction, error) {
	t, err := r.scanTransaction(r.db(ctx).QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM cashier_transactions
		 WHERE processor_name = $1 AND processor_transaction_id = $2`,
		processorName, processorTxID))
	if err != nil {
		return nil, err
	}
	if err := r.loadRefunds(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Update updates an existing transaction. The snapshot columns are immutable
// after insert and are deliberately absent from the SET list.
func (r *TransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	response, err := json.Marshal(t.ProcessorResponse)
	if err != nil {
		return fmt.Errorf("marshal processor response: %w", err)
	}

	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE cashier_transactions SET
		  processor_transaction_id=$1, status=$2, description=$3,
		  metadata=$4, processor_response=$5, error_code=$6, error_message=$7,
		  processed_at=$8, failed_at=$9, updated_at=$10
		 WHERE id=$11`,
		nullIfEmpty(t.ProcessorTransactionID), string(t.Status), t.Description,
		metadata, response, t.ErrorCode, t.ErrorMessage,
		t.ProcessedAt, t.FailedAt, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrTransactionNotFound
	}
	return nil
}

// List lists transactions with optional filters.
func (r *TransactionRepository) List(ctx context.Context, f transaction.ListFilter) ([]*transaction.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM cashier_transactions WHERE 1=1`
	args := []any{}
	argIdx := 1

	if f.Payable != nil {
		query += fmt.Sprintf(" AND payable_type = $%d AND payable_id = $%d", argIdx, argIdx+1)
		args = append(args, f.Payable.Type, f.Payable.ID)
		argIdx += 2
	}
	if f.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, string(*f.Status))
		argIdx++
	}
	if f.ProcessorName != nil {
		query += fmt.Sprintf(" AND processor_name = $%d", argIdx)
		args = append(args, *f.ProcessorName)
		argIdx++
	}
	if f.Currency != nil {
		query += fmt.Sprintf(" AND currency = $%d", argIdx)
		args = append(args, strings.ToUpper(*f.Currency))
		argIdx++
	}
	if f.Amount != nil {
		query += fmt.Sprintf(" AND amount = $%d", argIdx)
		args = append(args, *f.Amount)
		argIdx++
	}
	if f.CreatedAfter != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)
		args = append(args, *f.CreatedAfter)
		argIdx++
	}
	if f.CreatedBefore != nil {
		query += fmt.Sprintf(" AND created_at <= $%d", argIdx)
		args = append(args, *f.CreatedBefore)
		argIdx++
	}

	// Strict whitelist for sort column
	sortBy := "created_at"
	if col, ok := allowedSortColumns[f.SortBy]; ok {
		sortBy = col
	}
	sortOrder := "DESC"
	if strings.EqualFold(f.SortOrder, "asc") {
		sortOrder = "ASC"
	}
	query += fmt.Sprintf(" ORDER BY %s %s", sortBy, sortOrder)

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*transaction.Transaction
	for rows.Next() {
		t, err := r.scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// SumAmountByPayable sums succeeded transaction amounts for an owner.
func (r *TransactionRepository) SumAmountByPayable(ctx context.Context, payable method.OwnerRef) (int64, error) {
	var total int64
	err := r.db(ctx).QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM cashier_transactions
		 WHERE payable_type = $1 AND payable_id = $2 AND status = $3`,
		payable.Type, payable.ID, string(transaction.StatusSucceeded),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum transactions: %w", err)
	}
	return total, nil
}

// CountByPayable counts transactions for an owner, optionally filtered by status.
func (r *TransactionRepository) CountByPayable(ctx context.Context, payable method.OwnerRef, status *transaction.PaymentStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM cashier_transactions WHERE payable_type = $1 AND payable_id = $2`
	args := []any{payable.Type, payable.ID}
	if status != nil {
		query += ` AND status = $3`
		args = append(args, string(*status))
	}

	var count int64
	if err := r.db(ctx).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}

// --- scanning helpers ---

// scanTransaction scans a transaction from any source implementing the scanner interface.
func (r *TransactionRepository) scanTransaction(s scanner) (*transaction.Transaction, error) {
	t := &transaction.Transaction{Metadata: make(map[string]any)}
	var (
		processorTxID *string
		snapType      string
		snapBrand     string
		status        string
		metadata      []byte
		response      []byte
	)
	err := s.Scan(
		&t.ID, &t.ProcessorName, &processorTxID,
		&t.Payable.Type, &t.Payable.ID,
		&snapType, &snapBrand, &t.PaymentMethod.LastFour, &t.PaymentMethod.DisplayName,
		&t.Amount, &t.Currency, &status, &t.Description,
		&metadata, &response, &t.ErrorCode, &t.ErrorMessage,
		&t.ProcessedAt, &t.FailedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}

	if processorTxID != nil {
		t.ProcessorTransactionID = *processorTxID
	}
	t.PaymentMethod.Type = method.Type(snapType)
	t.PaymentMethod.Brand = method.Brand(snapBrand)
	t.Status = transaction.PaymentStatus(status)

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal transaction metadata: %w", err)
		}
	}
	if len(response) > 0 {
		if err := json.Unmarshal(response, &t.ProcessorResponse); err != nil {
			return nil, fmt.Errorf("unmarshal processor response: %w", err)
		}
	}
	return t, nil
}

// loadRefunds populates the transaction's refund records so the ledger
// methods (TotalRefunded, RemainingRefundable) see the full history.
func (r *TransactionRepository) loadRefunds(ctx context.Context, t *transaction.Transaction) error {
	refundRepo := NewRefundRepository(r.pool)
	refunds, err := refundRepo.ListByTransaction(ctx, t.ID)
	if err != nil {
		return err
	}
	t.Refunds = refunds
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
