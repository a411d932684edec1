package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizclash-backend/internal/models"
)

const paymentColumns = `id, order_code, user_id, package_id, amount, tokens,
	status, checkout_url, paid_at, created_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(
		&p.ID, &p.OrderCode, &p.UserID, &p.PackageID, &p.Amount, &p.Tokens,
		&p.Status, &p.CheckoutURL, &p.PaidAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = models.PaymentPending
	}
	q := `INSERT INTO payments
	      (id, order_code, user_id, package_id, amount, tokens, status, checkout_url)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q,
			p.ID, p.OrderCode, p.UserID, p.PackageID, p.Amount, p.Tokens,
			p.Status, p.CheckoutURL,
		)
		return err
	})
}

func GetPaymentByOrderCode(ctx context.Context, orderCode int64) (*models.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments WHERE order_code=$1`
	return scanPayment(DB.QueryRow(ctx, q, orderCode))
}

func ListPaymentsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Payment, error) {
	q := `SELECT ` + paymentColumns + ` FROM payments
	      WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SettlePayment flips a pending payment to PAID and credits its tokens, in
// one transaction. The row lock plus the status re-check make a replayed
// webhook a no-op, so tokens credit exactly once.
func SettlePayment(ctx context.Context, orderCode int64) (*models.Payment, error) {
	var settled *models.Payment
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `SELECT ` + paymentColumns + ` FROM payments WHERE order_code=$1 FOR UPDATE`
		p, err := scanPayment(tx.QueryRow(ctx, q, orderCode))
		if err != nil {
			return err
		}
		if p.Status != models.PaymentPending {
			settled = p
			return nil
		}

		now := time.Now().UTC()
		if _, err := tx.Exec(ctx,
			`UPDATE payments SET status=$2, paid_at=$3 WHERE id=$1`,
			p.ID, models.PaymentPaid, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE users SET token_balance = token_balance + $2 WHERE id=$1`,
			p.UserID, p.Tokens); err != nil {
			return err
		}

		p.Status = models.PaymentPaid
		p.PaidAt = &now
		settled = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// CancelPayment marks a still-pending payment CANCELLED. Paid payments are
// left untouched.
func CancelPayment(ctx context.Context, orderCode int64) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE payments SET status=$2 WHERE order_code=$1 AND status=$3`,
			orderCode, models.PaymentCancelled, models.PaymentPending)
		return err
	})
}
