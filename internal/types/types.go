package types

import "github.com/JmLalande/JMockDraft/internal/room"

// ClientMessage is the single client->server envelope. Type selects
// which of the remaining fields matter.
type ClientMessage struct {
	Type       string `json:"type"` // "Pick" | "Undo" | "RenameTeam" | "Leave"
	PlayerID   string `json:"player_id,omitempty"`
	PlayerName string `json:"player_name,omitempty"`
	Salary     int    `json:"salary,omitempty"`
	Position   string `json:"position,omitempty"`
	Team       int    `json:"team"`
	Name       string `json:"name,omitempty"`
	Meta       string `json:"meta,omitempty"`
}

type ServerMessage struct {
	Type  string         `json:"type"` // "StateSnapshot" | "Error"
	State *room.Snapshot `json:"state,omitempty"`
	Error string         `json:"error,omitempty"`
}
