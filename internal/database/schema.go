package database

import "context"

// schema is applied idempotently at startup; every statement tolerates the
// objects already existing.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'PLAYER',
		avatar_url TEXT NOT NULL DEFAULT '',
		token_balance INT NOT NULL DEFAULT 0,
		score INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS topics (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id UUID PRIMARY KEY,
		topic_id UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		difficulty INT NOT NULL DEFAULT 1,
		correct_answer TEXT NOT NULL,
		wrong_answer_1 TEXT,
		wrong_answer_2 TEXT,
		wrong_answer_3 TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS lobbies (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		code TEXT NOT NULL DEFAULT '',
		host_user_id UUID NOT NULL,
		topic_id UUID NOT NULL REFERENCES topics(id),
		status TEXT NOT NULL DEFAULT 'waiting',
		player_count INT NOT NULL DEFAULT 0,
		player_count_limit INT NOT NULL DEFAULT 0,
		initial_hand_size INT NOT NULL DEFAULT 3,
		max_items_per_player INT NOT NULL DEFAULT 5,
		match_time_sec INT NOT NULL DEFAULT 300,
		started_at TIMESTAMPTZ,
		ended_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS lobbies_active_code
		ON lobbies (code) WHERE status <> 'finished' AND code <> ''`,
	`CREATE TABLE IF NOT EXISTS match_players (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES lobbies(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id),
		score INT NOT NULL DEFAULT 0,
		cards_left INT NOT NULL DEFAULT 0,
		tokens_earned INT NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'waiting',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (match_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id UUID PRIMARY KEY,
		effect TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS match_cards (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES lobbies(id) ON DELETE CASCADE,
		question_id UUID NOT NULL REFERENCES questions(id),
		item_id UUID REFERENCES items(id),
		owner_id UUID,
		card_state TEXT NOT NULL DEFAULT 'pending',
		order_no INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		item_id UUID NOT NULL REFERENCES items(id),
		quantity INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (user_id, item_id)
	)`,
	`CREATE TABLE IF NOT EXISTS match_player_items (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES lobbies(id) ON DELETE CASCADE,
		user_id UUID NOT NULL,
		item_id UUID NOT NULL REFERENCES items(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		order_code BIGINT NOT NULL UNIQUE,
		user_id UUID NOT NULL REFERENCES users(id),
		package_id INT NOT NULL,
		amount INT NOT NULL,
		tokens INT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		checkout_url TEXT NOT NULL DEFAULT '',
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// EnsureSchema creates all tables and indexes that do not exist yet.
func EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
