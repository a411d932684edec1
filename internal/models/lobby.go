package models

import (
	"time"

	"github.com/google/uuid"
)

// LobbyStatus moves strictly waiting -> playing -> finished.
type LobbyStatus string

const (
	LobbyWaiting  LobbyStatus = "waiting"
	LobbyPlaying  LobbyStatus = "playing"
	LobbyFinished LobbyStatus = "finished"
)

// Lobby is a pre-match waiting room; once started, the same row is the match.
// Code is a short join code, unique among non-finished lobbies and cleared
// when the lobby terminates. PlayerCount mirrors the roster rows whose status
// is not "left"; PlayerCountLimit of 0 means unlimited.
type Lobby struct {
	ID                uuid.UUID   `json:"id"`
	Name              string      `json:"name"`
	Code              string      `json:"code"`
	HostUserID        uuid.UUID   `json:"host_user_id"`
	TopicID           uuid.UUID   `json:"topic_id"`
	Status            LobbyStatus `json:"status"`
	PlayerCount       int         `json:"player_count"`
	PlayerCountLimit  int         `json:"player_count_limit"`
	InitialHandSize   int         `json:"initial_hand_size"`
	MaxItemsPerPlayer int         `json:"max_items_per_player"`
	MatchTimeSec      int         `json:"match_time_sec"`
	StartedAt         *time.Time  `json:"started_at,omitempty"`
	EndedAt           *time.Time  `json:"ended_at,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}
