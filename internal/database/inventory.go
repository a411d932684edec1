package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizclash-backend/internal/models"
)

// ErrInsufficientTokens is returned when a purchase costs more than the
// user's balance.
var ErrInsufficientTokens = errors.New("insufficient token balance")

// EnsureItem upserts the item row for an effect and returns it. Item rows
// are created lazily the first time a store item of that effect is bought.
func EnsureItem(ctx context.Context, effect models.EffectKind, title, description string) (*models.Item, error) {
	var item models.Item
	q := `INSERT INTO items (id, effect, title, description)
	      VALUES ($1, $2, $3, $4)
	      ON CONFLICT (effect) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description
	      RETURNING id, effect, title, description, created_at`
	err := DB.QueryRow(ctx, q, uuid.New(), effect, title, description).Scan(
		&item.ID, &item.Effect, &item.Title, &item.Description, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// PurchaseItem debits cost tokens from the user and credits qty copies of
// the item to their inventory, atomically. The user row lock makes the
// balance check-and-debit exclusive.
func PurchaseItem(ctx context.Context, userID, itemID uuid.UUID, qty, cost int) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var balance int
		err := tx.QueryRow(ctx,
			`SELECT token_balance FROM users WHERE id=$1 FOR UPDATE`, userID).Scan(&balance)
		if err != nil {
			return err
		}
		if balance < cost {
			return ErrInsufficientTokens
		}

		if _, err := tx.Exec(ctx,
			`UPDATE users SET token_balance = token_balance - $2 WHERE id=$1`,
			userID, cost); err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO inventory_items (id, user_id, item_id, quantity)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (user_id, item_id) DO UPDATE
			 SET quantity = inventory_items.quantity + EXCLUDED.quantity`,
			uuid.New(), userID, itemID, qty)
		return err
	})
}

// ListInventory returns the user's owned items with their catalog rows.
func ListInventory(ctx context.Context, userID uuid.UUID) ([]*models.InventoryItem, error) {
	q := `SELECT inv.id, inv.user_id, inv.item_id, inv.quantity, inv.created_at,
	             it.id, it.effect, it.title, it.description, it.created_at
	      FROM inventory_items inv
	      JOIN items it ON it.id = inv.item_id
	      WHERE inv.user_id=$1 AND inv.quantity > 0
	      ORDER BY it.effect`
	rows, err := DB.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.InventoryItem
	for rows.Next() {
		var inv models.InventoryItem
		var item models.Item
		err := rows.Scan(
			&inv.ID, &inv.UserID, &inv.ItemID, &inv.Quantity, &inv.CreatedAt,
			&item.ID, &item.Effect, &item.Title, &item.Description, &item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		inv.Item = &item
		out = append(out, &inv)
	}
	return out, rows.Err()
}

// AddTokens credits tokens straight to a user's balance.
func AddTokens(ctx context.Context, userID uuid.UUID, tokens int) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`UPDATE users SET token_balance = token_balance + $2 WHERE id=$1`,
			userID, tokens)
		return err
	})
}
