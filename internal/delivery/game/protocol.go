package game

import (
	domain "maedn/internal/domain/game"
)

const (
	MsgRegister = "register"
	MsgReady    = "ready"
	MsgTurn     = "turn"
	MsgSnapshot = "snapshot"
	MsgUpdate   = "update"
	MsgError    = "error"
)

// Request is one inbound protocol line. Fields not used by a type stay empty.
type Request struct {
	Type          string  `json:"type"`
	Color         string  `json:"color,omitempty"`
	Name          string  `json:"name,omitempty"`
	ClientName    string  `json:"clientName,omitempty"`
	ClientVersion float64 `json:"clientVersion,omitempty"`
	Ready         *bool   `json:"ready,omitempty"`
	Selected      *int    `json:"selected,omitempty"`
}

type RegisterResponse struct {
	Type  string             `json:"type"`
	Color domain.PlayerColor `json:"color"`
}

type ReadyResponse struct {
	Type    string `json:"type"`
	Started bool   `json:"started"`
}

type TurnMessage struct {
	Type string              `json:"type"`
	Data domain.TurnResponse `json:"data"`
}

type SnapshotMessage struct {
	Type string          `json:"type"`
	Data domain.Snapshot `json:"data"`
}

type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func errorMessage(err error) ErrorMessage {
	return ErrorMessage{Type: MsgError, Error: err.Error()}
}
