package game

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"maedn/internal/bootstrap"
	"maedn/internal/httpresponse"
)

type WinCounter interface {
	CountWins(ctx context.Context, name string) (int64, error)
}

type GameHandler struct {
	cfg      bootstrap.Config
	log      *zap.SugaredLogger
	hub      *Hub
	wins     WinCounter
	upgrader websocket.Upgrader
}

type WinsResponse struct {
	Name string `json:"name"`
	Wins int64  `json:"wins"`
}

// NewGameHandler serves the hub over HTTP. wins may be nil when no archive is configured.
func NewGameHandler(cfg bootstrap.Config, log *zap.SugaredLogger, hub *Hub, wins WinCounter) *GameHandler {
	return &GameHandler{
		cfg:  cfg,
		log:  log,
		hub:  hub,
		wins: wins,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (g *GameHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("upgrade error: ", err)
		return
	}
	g.log.Infof("Websocket client connected: %s", r.RemoteAddr)
	g.hub.Serve(r.Context(), newWSConn(conn))
}

func (g *GameHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, g.hub.Snapshot())
}

func (g *GameHandler) GetWins(w http.ResponseWriter, r *http.Request) {
	if g.wins == nil {
		httpresponse.WriteResponseWithStatus(w, http.StatusServiceUnavailable,
			httpresponse.ErrorResponse{ErrorDescription: "match archive is not configured"})
		return
	}
	name := chi.URLParam(r, "name")
	if name == "" {
		httpresponse.WriteResponseWithStatus(w, http.StatusBadRequest,
			httpresponse.ErrorResponse{ErrorDescription: "name is required"})
		return
	}

	wins, err := g.wins.CountWins(r.Context(), name)
	if err != nil {
		g.log.Errorf("GetWins: %s: %v", name, err)
		httpresponse.WriteInternalErrorResponse(w)
		return
	}
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, WinsResponse{Name: name, Wins: wins})
}

func (g *GameHandler) Health(w http.ResponseWriter, r *http.Request) {
	httpresponse.WriteResponseWithStatus(w, http.StatusOK, map[string]string{"state": string(g.hub.Snapshot().State)})
}
