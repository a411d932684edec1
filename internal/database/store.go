package database

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quizclash-backend/internal/match"
	"quizclash-backend/internal/models"
)

// MatchStore backs the match core with Postgres. Every WithTx call is one
// pgx transaction; FOR UPDATE row locks carry the core's exclusivity
// guarantees.
type MatchStore struct {
	pool *pgxpool.Pool
}

func NewMatchStore(pool *pgxpool.Pool) *MatchStore {
	return &MatchStore{pool: pool}
}

func (s *MatchStore) WithTx(ctx context.Context, fn func(tx match.Tx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(&matchTx{ctx: ctx, tx: tx})
	})
}

type matchTx struct {
	ctx context.Context
	tx  pgx.Tx
}

const lobbyColumns = `id, name, code, host_user_id, topic_id, status,
	player_count, player_count_limit, initial_hand_size, max_items_per_player,
	match_time_sec, started_at, ended_at, created_at, updated_at`

func scanLobby(row pgx.Row) (*models.Lobby, error) {
	var l models.Lobby
	err := row.Scan(
		&l.ID, &l.Name, &l.Code, &l.HostUserID, &l.TopicID, &l.Status,
		&l.PlayerCount, &l.PlayerCountLimit, &l.InitialHandSize, &l.MaxItemsPerPlayer,
		&l.MatchTimeSec, &l.StartedAt, &l.EndedAt, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, match.ErrLobbyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (t *matchTx) LobbyForUpdate(id uuid.UUID) (*models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + ` FROM lobbies WHERE id=$1 FOR UPDATE`
	return scanLobby(t.tx.QueryRow(t.ctx, q, id))
}

func (t *matchTx) LobbyByCodeForUpdate(code string) (*models.Lobby, error) {
	q := `SELECT ` + lobbyColumns + ` FROM lobbies
	      WHERE code=$1 AND status <> 'finished' FOR UPDATE`
	return scanLobby(t.tx.QueryRow(t.ctx, q, code))
}

func (t *matchTx) CodeInUse(code string) (bool, error) {
	var used bool
	q := `SELECT EXISTS (SELECT 1 FROM lobbies WHERE code=$1 AND status <> 'finished')`
	err := t.tx.QueryRow(t.ctx, q, code).Scan(&used)
	return used, err
}

func (t *matchTx) InsertLobby(l *models.Lobby) error {
	q := `INSERT INTO lobbies (` + lobbyColumns + `)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	_, err := t.tx.Exec(t.ctx, q,
		l.ID, l.Name, l.Code, l.HostUserID, l.TopicID, l.Status,
		l.PlayerCount, l.PlayerCountLimit, l.InitialHandSize, l.MaxItemsPerPlayer,
		l.MatchTimeSec, l.StartedAt, l.EndedAt, l.CreatedAt, l.UpdatedAt,
	)
	return err
}

func (t *matchTx) UpdateLobby(l *models.Lobby) error {
	q := `UPDATE lobbies SET name=$2, code=$3, host_user_id=$4, status=$5,
	      player_count=$6, started_at=$7, ended_at=$8, updated_at=$9
	      WHERE id=$1`
	_, err := t.tx.Exec(t.ctx, q,
		l.ID, l.Name, l.Code, l.HostUserID, l.Status,
		l.PlayerCount, l.StartedAt, l.EndedAt, l.UpdatedAt,
	)
	return err
}

func (t *matchTx) TopicExists(id uuid.UUID) (bool, error) {
	var ok bool
	err := t.tx.QueryRow(t.ctx, `SELECT EXISTS (SELECT 1 FROM topics WHERE id=$1)`, id).Scan(&ok)
	return ok, err
}

func (t *matchTx) QuestionCount(topicID uuid.UUID) (int, error) {
	var n int
	err := t.tx.QueryRow(t.ctx, `SELECT count(*) FROM questions WHERE topic_id=$1`, topicID).Scan(&n)
	return n, err
}

const questionColumns = `id, topic_id, content, difficulty, correct_answer,
	wrong_answer_1, wrong_answer_2, wrong_answer_3, created_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	err := row.Scan(
		&q.ID, &q.TopicID, &q.Content, &q.Difficulty, &q.CorrectAnswer,
		&q.WrongAnswer1, &q.WrongAnswer2, &q.WrongAnswer3, &q.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, match.ErrQuestionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (t *matchTx) RandomQuestions(topicID uuid.UUID, n int) ([]*models.Question, error) {
	q := `SELECT ` + questionColumns + ` FROM questions
	      WHERE topic_id=$1 ORDER BY random() LIMIT $2`
	rows, err := t.tx.Query(t.ctx, q, topicID, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) < n {
		return nil, match.ErrPoolTooSmall
	}
	return out, nil
}

func (t *matchTx) RandomQuestion(topicID uuid.UUID) (*models.Question, error) {
	q := `SELECT ` + questionColumns + ` FROM questions
	      WHERE topic_id=$1 ORDER BY random() LIMIT 1`
	return scanQuestion(t.tx.QueryRow(t.ctx, q, topicID))
}

const playerColumns = `id, match_id, user_id, score, cards_left, tokens_earned, status, created_at`

func scanPlayer(row pgx.Row) (*models.MatchPlayer, error) {
	var p models.MatchPlayer
	err := row.Scan(
		&p.ID, &p.MatchID, &p.UserID, &p.Score, &p.CardsLeft,
		&p.TokensEarned, &p.Status, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, match.ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *matchTx) PlayerForUpdate(matchID, userID uuid.UUID) (*models.MatchPlayer, error) {
	q := `SELECT ` + playerColumns + ` FROM match_players
	      WHERE match_id=$1 AND user_id=$2 FOR UPDATE`
	return scanPlayer(t.tx.QueryRow(t.ctx, q, matchID, userID))
}

func (t *matchTx) PlayerExists(matchID, userID uuid.UUID) (bool, error) {
	var ok bool
	q := `SELECT EXISTS (SELECT 1 FROM match_players WHERE match_id=$1 AND user_id=$2)`
	err := t.tx.QueryRow(t.ctx, q, matchID, userID).Scan(&ok)
	return ok, err
}

func (t *matchTx) PlayersByMatch(matchID uuid.UUID) ([]*models.MatchPlayer, error) {
	q := `SELECT ` + playerColumns + ` FROM match_players
	      WHERE match_id=$1 ORDER BY created_at`
	rows, err := t.tx.Query(t.ctx, q, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.MatchPlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (t *matchTx) TopOpponentForUpdate(matchID, userID uuid.UUID) (*models.MatchPlayer, error) {
	q := `SELECT ` + playerColumns + ` FROM match_players
	      WHERE match_id=$1 AND user_id <> $2 AND status='playing'
	      ORDER BY score DESC LIMIT 1 FOR UPDATE`
	return scanPlayer(t.tx.QueryRow(t.ctx, q, matchID, userID))
}

func (t *matchTx) InsertPlayer(p *models.MatchPlayer) error {
	q := `INSERT INTO match_players (` + playerColumns + `)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := t.tx.Exec(t.ctx, q,
		p.ID, p.MatchID, p.UserID, p.Score, p.CardsLeft,
		p.TokensEarned, p.Status, p.CreatedAt,
	)
	return err
}

func (t *matchTx) UpdatePlayer(p *models.MatchPlayer) error {
	q := `UPDATE match_players SET score=$3, cards_left=$4, tokens_earned=$5, status=$6
	      WHERE match_id=$1 AND user_id=$2`
	_, err := t.tx.Exec(t.ctx, q, p.MatchID, p.UserID, p.Score, p.CardsLeft, p.TokensEarned, p.Status)
	return err
}

func (t *matchTx) DeletePlayer(matchID, userID uuid.UUID) error {
	_, err := t.tx.Exec(t.ctx,
		`DELETE FROM match_players WHERE match_id=$1 AND user_id=$2`, matchID, userID)
	return err
}

const cardColumns = `id, match_id, question_id, item_id, owner_id, card_state, order_no, created_at`

func scanCard(row pgx.Row) (*models.MatchCard, error) {
	var c models.MatchCard
	err := row.Scan(
		&c.ID, &c.MatchID, &c.QuestionID, &c.ItemID, &c.OwnerID,
		&c.State, &c.OrderNo, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, match.ErrCardNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *matchTx) CardByID(id uuid.UUID) (*models.MatchCard, *models.Question, *models.Item, error) {
	q := `SELECT ` + cardColumns + ` FROM match_cards WHERE id=$1 FOR UPDATE`
	card, err := scanCard(t.tx.QueryRow(t.ctx, q, id))
	if err != nil {
		return nil, nil, nil, err
	}

	question, err := scanQuestion(t.tx.QueryRow(t.ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id=$1`, card.QuestionID))
	if err != nil {
		return nil, nil, nil, err
	}

	var item *models.Item
	if card.ItemID != nil {
		var it models.Item
		err := t.tx.QueryRow(t.ctx,
			`SELECT id, effect, title, description, created_at FROM items WHERE id=$1`,
			*card.ItemID,
		).Scan(&it.ID, &it.Effect, &it.Title, &it.Description, &it.CreatedAt)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, nil, err
		}
		if err == nil {
			item = &it
		}
	}
	return card, question, item, nil
}

func (t *matchTx) RandomPendingCard(matchID, ownerID uuid.UUID) (*models.MatchCard, *models.Question, error) {
	q := `SELECT ` + cardColumns + ` FROM match_cards
	      WHERE match_id=$1 AND owner_id=$2 AND card_state='pending'
	      ORDER BY random() LIMIT 1 FOR UPDATE`
	card, err := scanCard(t.tx.QueryRow(t.ctx, q, matchID, ownerID))
	if err != nil {
		return nil, nil, err
	}
	question, err := scanQuestion(t.tx.QueryRow(t.ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id=$1`, card.QuestionID))
	if err != nil {
		return nil, nil, err
	}
	return card, question, nil
}

func (t *matchTx) RandomUnboundPendingCard(matchID, ownerID uuid.UUID) (*models.MatchCard, error) {
	q := `SELECT ` + cardColumns + ` FROM match_cards
	      WHERE match_id=$1 AND owner_id=$2 AND card_state='pending' AND item_id IS NULL
	      ORDER BY random() LIMIT 1 FOR UPDATE`
	return scanCard(t.tx.QueryRow(t.ctx, q, matchID, ownerID))
}

func (t *matchTx) MaxOrderNo(matchID uuid.UUID) (int, error) {
	var n int
	q := `SELECT COALESCE(max(order_no), 0) FROM match_cards WHERE match_id=$1`
	err := t.tx.QueryRow(t.ctx, q, matchID).Scan(&n)
	return n, err
}

func (t *matchTx) InsertCard(c *models.MatchCard) error {
	q := `INSERT INTO match_cards (` + cardColumns + `)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := t.tx.Exec(t.ctx, q,
		c.ID, c.MatchID, c.QuestionID, c.ItemID, c.OwnerID,
		c.State, c.OrderNo, c.CreatedAt,
	)
	return err
}

func (t *matchTx) UpdateCard(c *models.MatchCard) error {
	q := `UPDATE match_cards SET item_id=$2, owner_id=$3, card_state=$4 WHERE id=$1`
	_, err := t.tx.Exec(t.ctx, q, c.ID, c.ItemID, c.OwnerID, c.State)
	return err
}

func (t *matchTx) InventoryForUpdate(userID, itemID uuid.UUID) (*models.InventoryItem, error) {
	var inv models.InventoryItem
	q := `SELECT id, user_id, item_id, quantity, created_at FROM inventory_items
	      WHERE user_id=$1 AND item_id=$2 FOR UPDATE`
	err := t.tx.QueryRow(t.ctx, q, userID, itemID).Scan(
		&inv.ID, &inv.UserID, &inv.ItemID, &inv.Quantity, &inv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, match.ErrInsufficientInventory
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (t *matchTx) UpdateInventory(inv *models.InventoryItem) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE inventory_items SET quantity=$2 WHERE id=$1`, inv.ID, inv.Quantity)
	return err
}

func (t *matchTx) InsertItemUsage(u *models.MatchPlayerItem) error {
	q := `INSERT INTO match_player_items (id, match_id, user_id, item_id, created_at)
	      VALUES ($1,$2,$3,$4,$5)`
	_, err := t.tx.Exec(t.ctx, q, u.ID, u.MatchID, u.UserID, u.ItemID, u.CreatedAt)
	return err
}

func (t *matchTx) AddUserTotals(userID uuid.UUID, score, tokens int) error {
	_, err := t.tx.Exec(t.ctx,
		`UPDATE users SET score = score + $2, token_balance = token_balance + $3 WHERE id=$1`,
		userID, score, tokens)
	return err
}
