// Package lobby keeps the two-player lobbies and runs their games
package lobby

import (
	"errors"
	"sync"

	"connect4-lobby/internal/game"
	"connect4-lobby/pkg/logger"
)

// DefaultPlayerName is the display name a player has until SET_NAME
const DefaultPlayerName = "Player"

// noTurn marks a lobby without a game in progress
const noTurn = -1

var (
	ErrLobbyNotFound       = errors.New("lobby not found")
	ErrLobbyFull           = errors.New("lobby is full")
	ErrAlreadyInLobby      = errors.New("already in lobby")
	ErrNotInLobby          = errors.New("not in lobby")
	ErrInsufficientPlayers = errors.New("two players are required")
	ErrGameNotStarted      = errors.New("game not started")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCodeSpaceExhausted  = errors.New("no free lobby code")
)

// Conn is the outbound side of a connected player. ID must be stable for the
// life of the connection and unique across connections.
type Conn interface {
	ID() string
	RemoteAddr() string
	Send(payload string) error
}

// Player is one seat in a lobby
type Player struct {
	conn Conn
	Name string
}

// ID returns the player's connection id
func (p *Player) ID() string { return p.conn.ID() }

// Lobby holds up to two players, their board, the turn pointer and the win tally.
// Every field below mu is guarded by it.
type Lobby struct {
	Code string
	log  *logger.Logger

	mu      sync.Mutex
	players []*Player
	board   *game.Board
	turn    int
	wins    [game.MaxPlayers]int
	round   uint64
	closed  bool
}

func newLobby(code string, log *logger.Logger) *Lobby {
	return &Lobby{
		Code:    code,
		log:     log,
		players: make([]*Player, 0, game.MaxPlayers),
		board:   game.NewBoard(),
		turn:    noTurn,
	}
}

// slotOf returns the seat held by id, or -1
func (l *Lobby) slotOf(id string) int {
	for i, p := range l.players {
		if p.ID() == id {
			return i
		}
	}
	return -1
}

// broadcast sends each payload, in order, to every member. Must be called with mu held.
func (l *Lobby) broadcast(payloads ...string) {
	for _, p := range l.players {
		l.sendTo(p, payloads...)
	}
}

// sendTo delivers payloads to one member. A failed send is logged only; the
// Conn closes itself on a write error, which ends that member's session and
// takes it out of the lobby.
func (l *Lobby) sendTo(p *Player, payloads ...string) {
	for _, payload := range payloads {
		if err := p.conn.Send(payload); err != nil {
			l.log.Warn("lobby %s: send to %s failed: %v", l.Code, p.ID(), err)
			return
		}
	}
}

// PlayerInfo describes one seat in a Snapshot
type PlayerInfo struct {
	ID   string
	Addr string
	Name string
	Wins int
}

// Snapshot is a consistent copy of a lobby's state
type Snapshot struct {
	Code    string
	Players []PlayerInfo
	// Turn is the seat to move, or -1 when no game is in progress
	Turn  int
	Board game.Board
}

// InGame reports whether a turn sequence is active
func (s Snapshot) InGame() bool { return s.Turn != noTurn }

// Snapshot copies the lobby state under its lock
func (l *Lobby) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := Snapshot{
		Code:    l.Code,
		Players: make([]PlayerInfo, 0, len(l.players)),
		Turn:    l.turn,
		Board:   *l.board,
	}
	for i, p := range l.players {
		snap.Players = append(snap.Players, PlayerInfo{
			ID:   p.ID(),
			Addr: p.conn.RemoteAddr(),
			Name: p.Name,
			Wins: l.wins[i],
		})
	}
	return snap
}
