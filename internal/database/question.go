package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizclash-backend/internal/models"
)

func CreateQuestion(ctx context.Context, q *models.Question) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	stmt := `INSERT INTO questions
	         (id, topic_id, content, difficulty, correct_answer,
	          wrong_answer_1, wrong_answer_2, wrong_answer_3)
	         VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt,
			q.ID, q.TopicID, q.Content, q.Difficulty, q.CorrectAnswer,
			q.WrongAnswer1, q.WrongAnswer2, q.WrongAnswer3,
		)
		return err
	})
}

func GetQuestion(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	stmt := `SELECT ` + questionColumns + ` FROM questions WHERE id=$1`
	return scanQuestion(DB.QueryRow(ctx, stmt, id))
}

func ListQuestionsByTopic(ctx context.Context, topicID uuid.UUID) ([]*models.Question, error) {
	stmt := `SELECT ` + questionColumns + ` FROM questions
	         WHERE topic_id=$1 ORDER BY created_at`
	rows, err := DB.Query(ctx, stmt, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func UpdateQuestion(ctx context.Context, q *models.Question) error {
	stmt := `UPDATE questions SET content=$2, difficulty=$3, correct_answer=$4,
	         wrong_answer_1=$5, wrong_answer_2=$6, wrong_answer_3=$7
	         WHERE id=$1`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, stmt,
			q.ID, q.Content, q.Difficulty, q.CorrectAnswer,
			q.WrongAnswer1, q.WrongAnswer2, q.WrongAnswer3,
		)
		return err
	})
}

func DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM questions WHERE id=$1`, id)
		return err
	})
}
