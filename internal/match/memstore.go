package match

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/google/uuid"

	"quizclash-backend/internal/models"
)

// MemStore is an in-memory Store backend. Transactions run one at a time
// against a deep copy of the state and commit by swapping it in, so a
// failed transaction leaves nothing behind. It backs the core's tests and
// is handy for running the server without Postgres.
type MemStore struct {
	mu   sync.Mutex
	data *memData
}

type memData struct {
	topics    map[uuid.UUID]*models.Topic
	questions map[uuid.UUID]*models.Question
	lobbies   map[uuid.UUID]*models.Lobby
	players   map[uuid.UUID]map[uuid.UUID]*models.MatchPlayer
	cards     map[uuid.UUID]*models.MatchCard
	items     map[uuid.UUID]*models.Item
	inventory map[uuid.UUID]map[uuid.UUID]*models.InventoryItem
	usages    []*models.MatchPlayerItem
	users     map[uuid.UUID]*models.User
}

func newMemData() *memData {
	return &memData{
		topics:    make(map[uuid.UUID]*models.Topic),
		questions: make(map[uuid.UUID]*models.Question),
		lobbies:   make(map[uuid.UUID]*models.Lobby),
		players:   make(map[uuid.UUID]map[uuid.UUID]*models.MatchPlayer),
		cards:     make(map[uuid.UUID]*models.MatchCard),
		items:     make(map[uuid.UUID]*models.Item),
		inventory: make(map[uuid.UUID]map[uuid.UUID]*models.InventoryItem),
		users:     make(map[uuid.UUID]*models.User),
	}
}

func NewMemStore() *MemStore {
	return &MemStore{data: newMemData()}
}

// WithTx serializes transactions behind one mutex, giving the same
// exclusive read-modify-write guarantees the row locks provide in Postgres.
func (s *MemStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.data.clone()
	if err := fn(&memTx{d: work}); err != nil {
		return err
	}
	s.data = work
	return nil
}

func (d *memData) clone() *memData {
	c := newMemData()
	for k, v := range d.topics {
		t := *v
		c.topics[k] = &t
	}
	for k, v := range d.questions {
		q := *v
		c.questions[k] = &q
	}
	for k, v := range d.lobbies {
		l := *v
		c.lobbies[k] = &l
	}
	for mk, mv := range d.players {
		row := make(map[uuid.UUID]*models.MatchPlayer, len(mv))
		for uk, uv := range mv {
			p := *uv
			row[uk] = &p
		}
		c.players[mk] = row
	}
	for k, v := range d.cards {
		mc := *v
		c.cards[k] = &mc
	}
	for k, v := range d.items {
		it := *v
		c.items[k] = &it
	}
	for uk, uv := range d.inventory {
		row := make(map[uuid.UUID]*models.InventoryItem, len(uv))
		for ik, iv := range uv {
			inv := *iv
			row[ik] = &inv
		}
		c.inventory[uk] = row
	}
	c.usages = append(c.usages, d.usages...)
	for k, v := range d.users {
		u := *v
		c.users[k] = &u
	}
	return c
}

// Seeding and inspection helpers, used by tests and the dev server.

func (s *MemStore) SeedTopic(t *models.Topic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.data.topics[t.ID] = &cp
}

func (s *MemStore) SeedQuestion(q *models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *q
	s.data.questions[q.ID] = &cp
}

func (s *MemStore) SeedUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.data.users[u.ID] = &cp
}

func (s *MemStore) SeedItem(it *models.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *it
	s.data.items[it.ID] = &cp
}

func (s *MemStore) GrantInventory(userID, itemID uuid.UUID, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.data.inventory[userID]
	if !ok {
		row = make(map[uuid.UUID]*models.InventoryItem)
		s.data.inventory[userID] = row
	}
	inv, ok := row[itemID]
	if !ok {
		inv = &models.InventoryItem{ID: uuid.New(), UserID: userID, ItemID: itemID}
		row[itemID] = inv
	}
	inv.Quantity += qty
}

func (s *MemStore) Lobby(id uuid.UUID) (*models.Lobby, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.lobbies[id]
	if !ok {
		return nil, false
	}
	cp := *l
	return &cp, true
}

func (s *MemStore) Player(matchID, userID uuid.UUID) (*models.MatchPlayer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.data.players[matchID][userID]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (s *MemStore) CardsByOwner(matchID, ownerID uuid.UUID) []*models.MatchCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.MatchCard
	for _, c := range s.data.cards {
		if c.MatchID == matchID && c.OwnerID != nil && *c.OwnerID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out
}

func (s *MemStore) User(id uuid.UUID) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, false
	}
	cp := *u
	return &cp, true
}

func (s *MemStore) Inventory(userID, itemID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv, ok := s.data.inventory[userID][itemID]; ok {
		return inv.Quantity
	}
	return 0
}

func (s *MemStore) UsageCount(matchID, userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, u := range s.data.usages {
		if u.MatchID == matchID && u.UserID == userID {
			n++
		}
	}
	return n
}

// memTx implements Tx over the transaction's working copy.
type memTx struct {
	d *memData
}

func (t *memTx) LobbyForUpdate(id uuid.UUID) (*models.Lobby, error) {
	l, ok := t.d.lobbies[id]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return l, nil
}

func (t *memTx) LobbyByCodeForUpdate(code string) (*models.Lobby, error) {
	for _, l := range t.d.lobbies {
		if l.Code == code && l.Status != models.LobbyFinished {
			return l, nil
		}
	}
	return nil, ErrLobbyNotFound
}

func (t *memTx) CodeInUse(code string) (bool, error) {
	for _, l := range t.d.lobbies {
		if l.Code == code && l.Status != models.LobbyFinished {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertLobby(l *models.Lobby) error {
	cp := *l
	t.d.lobbies[l.ID] = &cp
	return nil
}

func (t *memTx) UpdateLobby(l *models.Lobby) error {
	cp := *l
	t.d.lobbies[l.ID] = &cp
	return nil
}

func (t *memTx) TopicExists(id uuid.UUID) (bool, error) {
	_, ok := t.d.topics[id]
	return ok, nil
}

func (t *memTx) QuestionCount(topicID uuid.UUID) (int, error) {
	n := 0
	for _, q := range t.d.questions {
		if q.TopicID == topicID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) questionPool(topicID uuid.UUID) []*models.Question {
	var pool []*models.Question
	for _, q := range t.d.questions {
		if q.TopicID == topicID {
			pool = append(pool, q)
		}
	}
	sort.Slice(pool, func(i, j int) bool { return pool[i].ID.String() < pool[j].ID.String() })
	return pool
}

func (t *memTx) RandomQuestions(topicID uuid.UUID, n int) ([]*models.Question, error) {
	pool := t.questionPool(topicID)
	if len(pool) < n {
		return nil, ErrPoolTooSmall
	}
	rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:n], nil
}

func (t *memTx) RandomQuestion(topicID uuid.UUID) (*models.Question, error) {
	pool := t.questionPool(topicID)
	if len(pool) == 0 {
		return nil, ErrQuestionNotFound
	}
	return pool[rand.Intn(len(pool))], nil
}

func (t *memTx) PlayerForUpdate(matchID, userID uuid.UUID) (*models.MatchPlayer, error) {
	p, ok := t.d.players[matchID][userID]
	if !ok {
		return nil, ErrPlayerNotFound
	}
	return p, nil
}

func (t *memTx) PlayerExists(matchID, userID uuid.UUID) (bool, error) {
	_, ok := t.d.players[matchID][userID]
	return ok, nil
}

func (t *memTx) PlayersByMatch(matchID uuid.UUID) ([]*models.MatchPlayer, error) {
	var out []*models.MatchPlayer
	for _, p := range t.d.players[matchID] {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (t *memTx) TopOpponentForUpdate(matchID, userID uuid.UUID) (*models.MatchPlayer, error) {
	var best *models.MatchPlayer
	for _, p := range t.d.players[matchID] {
		if p.UserID == userID || p.Status != models.PlayerPlaying {
			continue
		}
		if best == nil || p.Score > best.Score {
			best = p
		}
	}
	if best == nil {
		return nil, ErrPlayerNotFound
	}
	return best, nil
}

func (t *memTx) InsertPlayer(p *models.MatchPlayer) error {
	row, ok := t.d.players[p.MatchID]
	if !ok {
		row = make(map[uuid.UUID]*models.MatchPlayer)
		t.d.players[p.MatchID] = row
	}
	cp := *p
	row[p.UserID] = &cp
	return nil
}

func (t *memTx) UpdatePlayer(p *models.MatchPlayer) error {
	return t.InsertPlayer(p)
}

func (t *memTx) DeletePlayer(matchID, userID uuid.UUID) error {
	delete(t.d.players[matchID], userID)
	return nil
}

func (t *memTx) CardByID(id uuid.UUID) (*models.MatchCard, *models.Question, *models.Item, error) {
	c, ok := t.d.cards[id]
	if !ok {
		return nil, nil, nil, ErrCardNotFound
	}
	q, ok := t.d.questions[c.QuestionID]
	if !ok {
		return nil, nil, nil, ErrQuestionNotFound
	}
	var item *models.Item
	if c.ItemID != nil {
		item = t.d.items[*c.ItemID]
	}
	return c, q, item, nil
}

func (t *memTx) pendingCards(matchID, ownerID uuid.UUID, unboundOnly bool) []*models.MatchCard {
	var out []*models.MatchCard
	for _, c := range t.d.cards {
		if c.MatchID != matchID || c.State != models.CardPending {
			continue
		}
		if c.OwnerID == nil || *c.OwnerID != ownerID {
			continue
		}
		if unboundOnly && c.ItemID != nil {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderNo < out[j].OrderNo })
	return out
}

func (t *memTx) RandomPendingCard(matchID, ownerID uuid.UUID) (*models.MatchCard, *models.Question, error) {
	cards := t.pendingCards(matchID, ownerID, false)
	if len(cards) == 0 {
		return nil, nil, ErrCardNotFound
	}
	c := cards[rand.Intn(len(cards))]
	q, ok := t.d.questions[c.QuestionID]
	if !ok {
		return nil, nil, ErrQuestionNotFound
	}
	return c, q, nil
}

func (t *memTx) RandomUnboundPendingCard(matchID, ownerID uuid.UUID) (*models.MatchCard, error) {
	cards := t.pendingCards(matchID, ownerID, true)
	if len(cards) == 0 {
		return nil, ErrCardNotFound
	}
	return cards[rand.Intn(len(cards))], nil
}

func (t *memTx) MaxOrderNo(matchID uuid.UUID) (int, error) {
	max := 0
	for _, c := range t.d.cards {
		if c.MatchID == matchID && c.OrderNo > max {
			max = c.OrderNo
		}
	}
	return max, nil
}

func (t *memTx) InsertCard(c *models.MatchCard) error {
	cp := *c
	t.d.cards[c.ID] = &cp
	return nil
}

func (t *memTx) UpdateCard(c *models.MatchCard) error {
	return t.InsertCard(c)
}

func (t *memTx) InventoryForUpdate(userID, itemID uuid.UUID) (*models.InventoryItem, error) {
	inv, ok := t.d.inventory[userID][itemID]
	if !ok {
		return nil, ErrInsufficientInventory
	}
	return inv, nil
}

func (t *memTx) UpdateInventory(inv *models.InventoryItem) error {
	row, ok := t.d.inventory[inv.UserID]
	if !ok {
		row = make(map[uuid.UUID]*models.InventoryItem)
		t.d.inventory[inv.UserID] = row
	}
	cp := *inv
	row[inv.ItemID] = &cp
	return nil
}

func (t *memTx) InsertItemUsage(u *models.MatchPlayerItem) error {
	cp := *u
	t.d.usages = append(t.d.usages, &cp)
	return nil
}

func (t *memTx) AddUserTotals(userID uuid.UUID, score, tokens int) error {
	u, ok := t.d.users[userID]
	if !ok {
		// Settlement tolerates users missing from the store.
		return nil
	}
	u.Score += score
	u.TokenBalance += tokens
	return nil
}
