package game

import (
	"encoding/json"
	"time"
)

type GameState string

const (
	StateWaitingForPlayers GameState = "WAITINGFORPLAYERS"
	StateRunning           GameState = "RUNNING"
	StateFinished          GameState = "FINISHED"
)

// Snapshot is a point-in-time read model of a match.
type Snapshot struct {
	State         GameState    `json:"state"`
	CurrentPlayer PlayerColor  `json:"currentPlayer"`
	Winner        PlayerColor  `json:"winner"`
	Players       []PlayerView `json:"players"`
}

// MarshalJSON writes an absent current player or winner as the literal
// "null" string that existing clients expect.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	players := s.Players
	if players == nil {
		players = []PlayerView{}
	}
	return json.Marshal(struct {
		State         GameState    `json:"state"`
		CurrentPlayer string       `json:"currentPlayer"`
		Winner        string       `json:"winner"`
		Players       []PlayerView `json:"players"`
	}{
		State:         s.State,
		CurrentPlayer: s.CurrentPlayer.String(),
		Winner:        s.Winner.String(),
		Players:       players,
	})
}

// Capture names the opponent figure a move would send back to start.
type Capture struct {
	Color  PlayerColor `json:"color"`
	Figure int         `json:"figure"`
}

// Option is the dry-run result for one figure. NewPosition is nil when the
// figure has no legal move with the current roll.
type Option struct {
	Figure      int         `json:"figure"`
	Color       PlayerColor `json:"color"`
	Dice        int         `json:"dice"`
	Position    Position    `json:"position"`
	NewPosition *Position   `json:"newPosition,omitempty"`
	Capture     *Capture    `json:"capture,omitempty"`
}

func (o Option) Legal() bool {
	return o.NewPosition != nil
}

// TurnResponse is the reply to a turn request. Exactly one of the fields is
// set, or none for an ignored request.
type TurnResponse struct {
	Options  []Option `json:"options,omitempty"`
	OK       string   `json:"ok,omitempty"`
	Finished string   `json:"finished,omitempty"`
}

func QueryResponse(options []Option) TurnResponse {
	if options == nil {
		options = []Option{}
	}
	return TurnResponse{Options: options}
}

func OKResponse() TurnResponse {
	return TurnResponse{OK: "ok"}
}

func FinishedResponse() TurnResponse {
	return TurnResponse{Finished: "finished"}
}

// MarshalJSON keeps an empty options list as [] so a query is never
// confused with an ignored request.
func (r TurnResponse) MarshalJSON() ([]byte, error) {
	out := map[string]any{}
	switch {
	case r.Options != nil:
		out["options"] = r.Options
	case r.OK != "":
		out["ok"] = r.OK
	case r.Finished != "":
		out["finished"] = r.Finished
	}
	return json.Marshal(out)
}

func (r TurnResponse) Empty() bool {
	return r.Options == nil && r.OK == "" && r.Finished == ""
}

// MatchResult is the archived record of a finished match.
type MatchResult struct {
	MatchID    string       `json:"match_id"`
	Winner     PlayerColor  `json:"winner"`
	Players    []PlayerView `json:"players"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Turns      int          `json:"turns"`
}
