package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizclash-backend/internal/models"
)

func CreateTopic(ctx context.Context, t *models.Topic) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	q := `INSERT INTO topics (id, name, description) VALUES ($1, $2, $3)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, t.ID, t.Name, t.Description)
		return err
	})
}

func GetTopic(ctx context.Context, id uuid.UUID) (*models.Topic, error) {
	var t models.Topic
	q := `SELECT id, name, description, created_at FROM topics WHERE id=$1`
	err := DB.QueryRow(ctx, q, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func ListTopics(ctx context.Context) ([]*models.Topic, error) {
	rows, err := DB.Query(ctx, `SELECT id, name, description, created_at FROM topics ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func UpdateTopic(ctx context.Context, t *models.Topic) error {
	q := `UPDATE topics SET name=$2, description=$3 WHERE id=$1`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, t.ID, t.Name, t.Description)
		return err
	})
}

// DeleteTopic removes a topic and, via cascade, its questions.
func DeleteTopic(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM topics WHERE id=$1`, id)
		return err
	})
}
