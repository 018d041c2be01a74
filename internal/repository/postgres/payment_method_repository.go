package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentMethodColumns = `id, owner_type, owner_id,
	        processor_name, processor_payment_method_id,
	        payment_method_type, brand, last_four, exp_month, exp_year,
	        is_default, metadata, created_at, updated_at`

// PaymentMethodRepository implements method.Repository using PostgreSQL.
type PaymentMethodRepository struct {
	pool *pgxpool.Pool
	tx   *TxManager
}

// NewPaymentMethodRepository creates a new PaymentMethodRepository.
func NewPaymentMethodRepository(pool *pgxpool.Pool) *PaymentMethodRepository {
	return &PaymentMethodRepository{pool: pool, tx: NewTxManager(pool)}
}

func (r *PaymentMethodRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

// Create inserts a new payment method.
func (r *PaymentMethodRepository) Create(ctx context.Context, pm *method.PaymentMethod) error {
	metadata, err := json.Marshal(pm.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.db(ctx).Exec(ctx,
		`INSERT INTO cashier_payment_methods
		 (id, owner_type, owner_id,
		  processor_name, processor_payment_method_id,
		  payment_method_type, brand, last_four, exp_month, exp_year,
		  is_default, metadata, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`,
		pm.ID, pm.Owner.Type, pm.Owner.ID,
		pm.ProcessorName, pm.ProcessorPaymentMethodID,
		string(pm.Type), string(pm.Brand), pm.LastFour, pm.ExpMonth, pm.ExpYear,
		pm.IsDefault, metadata, pm.CreatedAt, pm.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment method: %w", err)
	}
	return nil
}

// GetByID retrieves a payment method by its ID.
func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*method.PaymentMethod, error) {
	return r.scanPaymentMethod(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentMethodColumns+` FROM cashier_payment_methods WHERE id = $1`, id))
}

// ListByOwner lists payment methods for an owner, default first.
func (r *PaymentMethodRepository) ListByOwner(ctx context.Context, owner method.OwnerRef) ([]*method.PaymentMethod, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentMethodColumns+` FROM cashier_payment_methods
		 WHERE owner_type = $1 AND owner_id = $2
		 ORDER BY is_default DESC, created_at DESC`,
		owner.Type, owner.ID)
	if err != nil {
		return nil, fmt.Errorf("list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []*method.PaymentMethod
	for rows.Next() {
		pm, err := r.scanPaymentMethod(rows)
		if err != nil {
			return nil, err
		}
		methods = append(methods, pm)
	}
	return methods, rows.Err()
}

// GetDefault retrieves the owner's default payment method.
func (r *PaymentMethodRepository) GetDefault(ctx context.Context, owner method.OwnerRef) (*method.PaymentMethod, error) {
	return r.scanPaymentMethod(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentMethodColumns+` FROM cashier_payment_methods
		 WHERE owner_type = $1 AND owner_id = $2 AND is_default`,
		owner.Type, owner.ID))
}

// SetDefault clears the default flag on the owner's other payment methods and
// sets it on the given one, in a single database transaction.
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, owner method.OwnerRef, id uuid.UUID) error {
	return r.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := r.db(ctx).Exec(ctx,
			`UPDATE cashier_payment_methods SET is_default = FALSE, updated_at = NOW()
			 WHERE owner_type = $1 AND owner_id = $2 AND is_default`,
			owner.Type, owner.ID,
		); err != nil {
			return fmt.Errorf("clear default payment method: %w", err)
		}

		tag, err := r.db(ctx).Exec(ctx,
			`UPDATE cashier_payment_methods SET is_default = TRUE, updated_at = NOW()
			 WHERE id = $1 AND owner_type = $2 AND owner_id = $3`,
			id, owner.Type, owner.ID,
		)
		if err != nil {
			return fmt.Errorf("set default payment method: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domainErrors.ErrPaymentMethodNotFound
		}
		return nil
	})
}

// Delete removes a stored payment method.
func (r *PaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx,
		`DELETE FROM cashier_payment_methods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment method: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentMethodNotFound
	}
	return nil
}

// scanPaymentMethod scans a payment method from any source implementing the scanner interface.
func (r *PaymentMethodRepository) scanPaymentMethod(s scanner) (*method.PaymentMethod, error) {
	pm := &method.PaymentMethod{Metadata: make(map[string]any)}
	var (
		pmType   string
		brand    string
		metadata []byte
	)
	err := s.Scan(
		&pm.ID, &pm.Owner.Type, &pm.Owner.ID,
		&pm.ProcessorName, &pm.ProcessorPaymentMethodID,
		&pmType, &brand, &pm.LastFour, &pm.ExpMonth, &pm.ExpYear,
		&pm.IsDefault, &metadata, &pm.CreatedAt, &pm.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("scan payment method: %w", err)
	}

	pm.Type = method.Type(pmType)
	pm.Brand = method.Brand(brand)

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &pm.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal payment method metadata: %w", err)
		}
	}
	return pm, nil
}
