package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"quizclash-backend/internal/auth"
	"quizclash-backend/internal/models"
)

const userColumns = `id, name, username, email, password, role, avatar_url,
	token_balance, score, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.Password, &u.Role,
		&u.AvatarURL, &u.TokenBalance, &u.Score, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = models.RolePlayer
	}

	hash, err := auth.HashPassword(user.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash

	q := `INSERT INTO users (id, name, username, email, password, role, avatar_url)
	      VALUES ($1, $2, $3, $4, $5, $6, $7)`

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, execErr := tx.Exec(ctx, q,
			user.ID, user.Name, user.Username, user.Email,
			user.Password, user.Role, user.AvatarURL,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(DB.QueryRow(ctx, q, id))
}

func GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username=$1`
	return scanUser(DB.QueryRow(ctx, q, username))
}

func GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	return scanUser(DB.QueryRow(ctx, q, email))
}

// AuthenticateUser verifies credentials and, on success, returns a signed JWT.
func AuthenticateUser(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := GetUserByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("user not found or db error: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !ok {
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := auth.CreateJWT(user.ID.String(), string(user.Role))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, user, nil
}

// UpdateUserProfile changes the mutable profile fields.
func UpdateUserProfile(ctx context.Context, id uuid.UUID, name, avatarURL string) error {
	q := `UPDATE users SET name=$2, avatar_url=$3 WHERE id=$1`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, id, name, avatarURL)
		return err
	})
}

// UpdateUserPassword re-hashes and stores a new password.
func UpdateUserPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE users SET password=$2 WHERE id=$1`, id, hash)
		return err
	})
}

// AddScore credits points to a user's lifetime score.
func AddScore(ctx context.Context, id uuid.UUID, points int) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `UPDATE users SET score = score + $2 WHERE id=$1`, id, points)
		return err
	})
}

// LeaderboardEntry is one leaderboard row.
type LeaderboardEntry struct {
	Rank      int       `json:"rank"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Score     int       `json:"score"`
}

// TopUsersByScore returns the top limit users ordered by lifetime score.
func TopUsersByScore(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	q := `SELECT id, username, avatar_url, score,
	             rank() OVER (ORDER BY score DESC) AS rank
	      FROM users ORDER BY score DESC, username LIMIT $1`
	rows, err := DB.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.AvatarURL, &e.Score, &e.Rank); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UserRank computes a user's 1-based position by lifetime score.
func UserRank(ctx context.Context, id uuid.UUID) (int, error) {
	var rank int
	q := `SELECT rank FROM (
	        SELECT id, rank() OVER (ORDER BY score DESC) AS rank FROM users
	      ) ranked WHERE id=$1`
	err := DB.QueryRow(ctx, q, id).Scan(&rank)
	return rank, err
}
