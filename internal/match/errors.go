package match

import "errors"

// Sentinel errors surfaced by the match core. Handlers map these onto HTTP
// status codes; nothing here is retried automatically except the join-code
// collision loop, which never escapes CreateLobby.
var (
	// Not found.
	ErrLobbyNotFound    = errors.New("lobby not found")
	ErrTopicNotFound    = errors.New("topic not found")
	ErrPlayerNotFound   = errors.New("player not in this match")
	ErrCardNotFound     = errors.New("match card not found")
	ErrQuestionNotFound = errors.New("question not found")

	// Conflicts.
	ErrAlreadyJoined = errors.New("player already joined this lobby")
	ErrLobbyFull     = errors.New("lobby player limit reached")
	ErrPoolTooSmall  = errors.New("topic question pool smaller than hand size")

	// Invalid state transitions.
	ErrLobbyNotWaiting = errors.New("lobby is not in waiting status")
	ErrLobbyNotPlaying = errors.New("lobby is not in playing status")
	ErrNotPlaying      = errors.New("player is not in playing status")
	ErrReadyUnchanged  = errors.New("ready state already set")
	ErrNotReadyable    = errors.New("player cannot change ready state now")
	ErrCardConsumed    = errors.New("card has already been answered")

	// Authorization.
	ErrNotHost = errors.New("only the host can start the match")

	// Inventory.
	ErrInsufficientInventory = errors.New("not enough items in inventory")
)
