package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const paymentColumns = `id, commercial_opportunity_id, delivery_opportunity_id,
    seller_amount, supplier_amount, installer_amount, total_amount, status, created_at`

// CreatePaymentInstruction inserts the derived payment split for a completed
// delivery. The unique index on delivery_opportunity_id makes the call
// idempotent: a second call for the same delivery returns the existing row
// with created=false.
func (s *Store) CreatePaymentInstruction(ctx context.Context, instruction *PaymentInstruction) (*PaymentInstruction, bool, error) {
	if instruction == nil {
		return nil, false, errors.New("payment instruction required")
	}
	if instruction.DeliveryOpportunityID == "" {
		return nil, false, errors.New("delivery opportunity id required")
	}

	id := instruction.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := instruction.Status
	if status == "" {
		status = PaymentStatusPending
	}

	res, err := s.execWithRetry(ctx,
		`INSERT INTO payment_instructions (
            id, commercial_opportunity_id, delivery_opportunity_id,
            seller_amount, supplier_amount, installer_amount, total_amount, status, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT (delivery_opportunity_id) DO NOTHING`,
		id,
		nullableString(instruction.CommercialOpportunityID),
		instruction.DeliveryOpportunityID,
		instruction.SellerAmount,
		instruction.SupplierAmount,
		instruction.InstallerAmount,
		instruction.TotalAmount,
		status,
		formatTime(time.Now()),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert payment instruction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("insert payment instruction rows: %w", err)
	}

	stored, err := s.GetPaymentByDeliveryID(ctx, instruction.DeliveryOpportunityID)
	if err != nil {
		return nil, false, err
	}
	return stored, affected > 0, nil
}

// GetPaymentByDeliveryID fetches the payment instruction for a delivery, if any.
func (s *Store) GetPaymentByDeliveryID(ctx context.Context, deliveryID string) (*PaymentInstruction, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_instructions WHERE delivery_opportunity_id = ?`,
		deliveryID)
	instruction, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("payment for delivery %s: %w", deliveryID, ErrNotFound)
		}
		return nil, err
	}
	return instruction, nil
}

// ListPaymentInstructions returns every payment instruction, newest first.
func (s *Store) ListPaymentInstructions(ctx context.Context) ([]*PaymentInstruction, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payment_instructions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payment instructions: %w", err)
	}
	defer rows.Close()

	var instructions []*PaymentInstruction
	for rows.Next() {
		instruction, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instruction)
	}
	return instructions, rows.Err()
}

func scanPayment(scanner interface{ Scan(dest ...any) error }) (*PaymentInstruction, error) {
	var (
		instruction  PaymentInstruction
		commercialID sql.NullString
		createdRaw   sql.NullString
	)
	if err := scanner.Scan(
		&instruction.ID,
		&commercialID,
		&instruction.DeliveryOpportunityID,
		&instruction.SellerAmount,
		&instruction.SupplierAmount,
		&instruction.InstallerAmount,
		&instruction.TotalAmount,
		&instruction.Status,
		&createdRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan payment instruction: %w", err)
	}
	instruction.CommercialOpportunityID = stringOr(commercialID)
	instruction.CreatedAt = parseTime(createdRaw)
	return &instruction, nil
}
