package game

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "maedn/internal/domain/game"
	errs "maedn/internal/errors"
	gameuc "maedn/internal/usecase/game"
	"maedn/internal/utils"
)

const sendBuffer = 64

// LineConn is a connection that carries one JSON message per line or frame.
type LineConn interface {
	ReadLine() ([]byte, error)
	WriteLine(data []byte) error
	Close() error
}

type SnapshotPublisher interface {
	Publish(ctx context.Context, matchID string, snapshot domain.Snapshot) error
}

type MatchArchive interface {
	SaveResult(ctx context.Context, result domain.MatchResult) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, string, domain.Snapshot) error { return nil }

type nopArchive struct{}

func (nopArchive) SaveResult(context.Context, domain.MatchResult) error { return nil }

// Hub connects every client session to the one game. Game calls happen on
// the session's reader goroutine; socket writes happen on its writer
// goroutine, so the game lock is never held across I/O.
type Hub struct {
	log       *zap.SugaredLogger
	game      *gameuc.Game
	publisher SnapshotPublisher
	archive   MatchArchive
	archived  atomic.Bool

	// updateMu orders snapshot fan-out so no session sees an older
	// snapshot after a newer one.
	updateMu sync.Mutex

	mu       sync.RWMutex
	sessions map[string]*Session
}

type Session struct {
	id   string
	conn LineConn
	send chan []byte

	mu    sync.Mutex
	color domain.PlayerColor
}

func NewHub(log *zap.SugaredLogger, game *gameuc.Game, publisher SnapshotPublisher, archive MatchArchive) *Hub {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if archive == nil {
		archive = nopArchive{}
	}
	return &Hub{
		log:       log,
		game:      game,
		publisher: publisher,
		archive:   archive,
		sessions:  make(map[string]*Session),
	}
}

func (h *Hub) Snapshot() domain.Snapshot {
	return h.game.Snapshot()
}

// Serve runs one client until its connection fails or ctx is done.
func (h *Hub) Serve(ctx context.Context, conn LineConn) {
	sess := &Session{
		id:    uuid.New().String(),
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
		color: domain.NoColor,
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	h.mu.Lock()
	h.sessions[sess.id] = sess
	h.mu.Unlock()
	h.log.Infof("Session %s connected", sess.id)

	writerDone := make(chan struct{})
	go h.writeLoop(sess, writerDone)

	for {
		line, err := conn.ReadLine()
		if err != nil {
			h.log.Debugf("Session %s read: %v", sess.id, err)
			break
		}
		h.log.Debugf("RX %s: %s", sess.id, line)

		reply, changed := h.handle(sess, line)
		sess.enqueue(h.log, utils.MustMarshal(reply))
		if changed {
			h.afterChange(ctx)
		}
	}

	h.disconnect(context.WithoutCancel(ctx), sess)
	<-writerDone
	_ = conn.Close()
}

func (h *Hub) writeLoop(sess *Session, done chan<- struct{}) {
	defer close(done)
	for msg := range sess.send {
		if err := sess.conn.WriteLine(msg); err != nil {
			h.log.Warnf("Session %s write: %v", sess.id, err)
			_ = sess.conn.Close()
			for range sess.send {
			}
			return
		}
		h.log.Debugf("TX %s: %s", sess.id, msg)
	}
}

func (h *Hub) disconnect(ctx context.Context, sess *Session) {
	h.mu.Lock()
	delete(h.sessions, sess.id)
	close(sess.send)
	h.mu.Unlock()

	color := sess.Color()
	h.log.Infof("Session %s disconnected (%s)", sess.id, color)
	if color == domain.NoColor {
		return
	}
	h.game.Remove(color)
	h.afterChange(ctx)
}

func (h *Hub) handle(sess *Session, line []byte) (any, bool) {
	var req Request
	if err := utils.DecodeJSONMessage(line, &req); err != nil {
		h.log.Warnf("Session %s sent malformed message: %v", sess.id, err)
		return errorMessage(errs.ErrMalformedMessage), false
	}

	switch req.Type {
	case MsgRegister:
		return h.register(sess, req)
	case MsgReady:
		color := sess.Color()
		if color == domain.NoColor {
			return errorMessage(errs.ErrNotRegistered), false
		}
		if req.Ready == nil {
			return errorMessage(errs.ErrMalformedMessage), false
		}
		started := h.game.SetReady(color, *req.Ready)
		return ReadyResponse{Type: MsgReady, Started: started}, true
	case MsgTurn:
		return h.turn(sess, req)
	case MsgSnapshot:
		return SnapshotMessage{Type: MsgSnapshot, Data: h.game.Snapshot()}, false
	default:
		return errorMessage(errs.ErrUnknownMessage), false
	}
}

func (h *Hub) register(sess *Session, req Request) (any, bool) {
	if sess.Color() != domain.NoColor {
		return errorMessage(errs.ErrAlreadyRegistered), false
	}
	requested := domain.NoColor
	if req.Color != "" {
		parsed, err := domain.ParseColor(req.Color)
		if err != nil {
			return errorMessage(errs.ErrMalformedMessage), false
		}
		requested = parsed
	}

	color, err := h.game.Register(requested, req.Name, req.ClientName, req.ClientVersion)
	if err != nil {
		if !errors.Is(err, errs.ErrGameFull) && !errors.Is(err, errs.ErrRegistrationClosed) {
			h.log.Error("Register: ", err)
		}
		return RegisterResponse{Type: MsgRegister, Color: domain.NoColor}, false
	}
	sess.setColor(color)
	return RegisterResponse{Type: MsgRegister, Color: color}, true
}

// turn only forwards requests from the session whose color is on turn.
// The acting player can only change through this session's own requests,
// so the check cannot go stale before the game call.
func (h *Hub) turn(sess *Session, req Request) (any, bool) {
	color := sess.Color()
	if color == domain.NoColor {
		return errorMessage(errs.ErrNotRegistered), false
	}
	if color != h.game.CurrentPlayer() {
		return TurnMessage{Type: MsgTurn, Data: domain.TurnResponse{}}, false
	}
	resp := h.game.Turn(req.Selected)
	changed := resp.OK != "" || resp.Finished != ""
	return TurnMessage{Type: MsgTurn, Data: resp}, changed
}

// afterChange pushes the new snapshot to every session and the publisher,
// and archives the match once it is finished.
func (h *Hub) afterChange(ctx context.Context) {
	h.updateMu.Lock()
	snap := h.game.Snapshot()
	h.broadcast(utils.MustMarshal(SnapshotMessage{Type: MsgUpdate, Data: snap}))
	if err := h.publisher.Publish(ctx, h.game.MatchID(), snap); err != nil {
		h.log.Warnf("Publish snapshot: %v", err)
	}
	h.updateMu.Unlock()

	if snap.State != domain.StateFinished || !h.archived.CompareAndSwap(false, true) {
		return
	}
	result, ok := h.game.Result()
	if !ok {
		return
	}
	if err := h.archive.SaveResult(ctx, result); err != nil {
		h.log.Errorf("Archive match %s: %v", result.MatchID, err)
	}
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sess := range h.sessions {
		sess.enqueue(h.log, msg)
	}
}

func (s *Session) Color() domain.PlayerColor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.color
}

func (s *Session) setColor(c domain.PlayerColor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.color = c
}

// enqueue never blocks. A full buffer closes the connection, so the session
// ends through the normal disconnect path.
func (s *Session) enqueue(log *zap.SugaredLogger, msg []byte) {
	select {
	case s.send <- msg:
	default:
		log.Warnf("Session %s send buffer full, closing connection", s.id)
		_ = s.conn.Close()
	}
}
