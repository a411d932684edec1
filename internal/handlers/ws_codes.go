package handlers

// Custom websocket close codes used by the lobby and match handlers.
const (
	InvalidAuthTokenError = 3001 // Auth token was invalid or expired.
	InvalidRoomIDError    = 3003 // Target lobby/match in the WS URL does not exist.
)
