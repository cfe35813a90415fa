package lobby

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"connect4-lobby/internal/game"
	"connect4-lobby/internal/network"
	"connect4-lobby/pkg/logger"
)

const (
	// DefaultCodeLength is the length of generated lobby codes
	DefaultCodeLength = 4
	// DefaultAnnounceDelay is the pause between START_GAME and the first board
	DefaultAnnounceDelay = 2 * time.Second

	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeAttempts = 64
)

// Outcome is the result of an accepted move
type Outcome int

const (
	Continue Outcome = iota
	Win
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "continue"
	}
}

// MoveOutcome describes an accepted move
type MoveOutcome struct {
	Row     int
	Outcome Outcome
}

// Options configures a Registry
type Options struct {
	CodeLength    int
	AnnounceDelay time.Duration
	Logger        *logger.Logger
	// NewCode overrides random code generation
	NewCode func() string
}

// Registry maps lobby codes to lobbies. The registry lock guards only the map;
// each lobby serializes its own players, board and turn pointer. Lock order is
// registry then lobby, and the registry lock is never taken while a lobby lock is held.
type Registry struct {
	mu      sync.RWMutex
	lobbies map[string]*Lobby

	announceDelay time.Duration
	newCode       func() string
	log           *logger.Logger
}

// NewRegistry creates an empty registry. A negative AnnounceDelay disables the pause.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		lobbies:       make(map[string]*Lobby),
		announceDelay: opts.AnnounceDelay,
		newCode:       opts.NewCode,
		log:           opts.Logger,
	}
	if r.log == nil {
		r.log = logger.Server
	}
	if r.announceDelay < 0 {
		r.announceDelay = 0
	}
	if r.newCode == nil {
		length := opts.CodeLength
		if length <= 0 {
			length = DefaultCodeLength
		}
		r.newCode = func() string { return randomCode(length) }
	}
	return r
}

func randomCode(length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		sb.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return sb.String()
}

// CreateLobby registers an empty lobby under a fresh code. Codes already in use are redrawn.
func (r *Registry) CreateLobby() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := 0; i < codeAttempts; i++ {
		code := strings.ToUpper(r.newCode())
		if _, taken := r.lobbies[code]; taken {
			continue
		}
		r.lobbies[code] = newLobby(code, r.log)
		r.log.Info("Lobby %s created", code)
		return code, nil
	}
	return "", ErrCodeSpaceExhausted
}

// get returns the lobby for code
func (r *Registry) get(code string) (*Lobby, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lobbies[strings.ToUpper(code)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLobbyNotFound, code)
	}
	return l, nil
}

// Lookup returns a snapshot of the lobby registered under code
func (r *Registry) Lookup(code string) (Snapshot, bool) {
	l, err := r.get(code)
	if err != nil {
		return Snapshot{}, false
	}
	return l.Snapshot(), true
}

// Len returns the number of registered lobbies
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.lobbies)
}

// Codes returns the registered lobby codes in sorted order
func (r *Registry) Codes() []string {
	r.mu.RLock()
	codes := make([]string, 0, len(r.lobbies))
	for code := range r.lobbies {
		codes = append(codes, code)
	}
	r.mu.RUnlock()
	sort.Strings(codes)
	return codes
}

// remove drops l from the map if it is still the lobby registered under its code
func (r *Registry) remove(l *Lobby) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lobbies[l.Code] == l {
		delete(r.lobbies, l.Code)
		r.log.Info("Lobby %s removed", l.Code)
	}
}

// JoinLobby seats conn in the next free slot. The joiner is told the lobby code and
// its seat; players already present are told about the newcomer.
func (r *Registry) JoinLobby(code string, conn Conn) (int, error) {
	l, err := r.get(code)
	if err != nil {
		return -1, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return -1, fmt.Errorf("%w: %s", ErrLobbyNotFound, code)
	}
	if l.slotOf(conn.ID()) >= 0 {
		return -1, ErrAlreadyInLobby
	}
	if len(l.players) >= game.MaxPlayers {
		return -1, fmt.Errorf("%w: %s", ErrLobbyFull, code)
	}

	p := &Player{conn: conn, Name: DefaultPlayerName}
	others := append([]*Player(nil), l.players...)
	l.players = append(l.players, p)
	slot := len(l.players) - 1

	l.sendTo(p, network.JoinedLobby(l.Code), network.YouArePlayer(slot))
	for _, o := range others {
		l.sendTo(o, network.PlayerJoined(p.Name, slot))
	}

	l.log.Info("Player %s (%s) joined lobby %s as slot %d", conn.ID(), conn.RemoteAddr(), l.Code, slot)
	return slot, nil
}

// SetName renames the member identified by id
func (r *Registry) SetName(code, id, name string) error {
	l, err := r.get(code)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	slot := l.slotOf(id)
	if slot < 0 {
		return ErrNotInLobby
	}
	l.players[slot].Name = name
	return nil
}

// ViewPlayers returns each member's name and win count
func (r *Registry) ViewPlayers(code, id string) (string, error) {
	l, err := r.get(code)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotInLobby, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.slotOf(id) < 0 {
		return "", ErrNotInLobby
	}
	entries := make([]network.PlayerEntry, 0, len(l.players))
	for i, p := range l.players {
		entries = append(entries, network.PlayerEntry{Name: p.Name, Wins: l.wins[i]})
	}
	return network.PlayersInLobby(entries), nil
}

// StartGame resets the board and gives the first move to the player who asked.
// It is rejected while a game is running, including during the announcement delay.
// After the announcement delay every member receives the empty board and the
// turn indicator. The delay runs without the lobby lock; if the lobby changes
// in the meantime (a leave or another START_GAME) the stale announcement is dropped.
func (r *Registry) StartGame(ctx context.Context, code, id string) error {
	l, err := r.get(code)
	if err != nil {
		return err
	}

	l.mu.Lock()
	slot := l.slotOf(id)
	if slot < 0 {
		l.mu.Unlock()
		return ErrNotInLobby
	}
	if len(l.players) != game.MaxPlayers {
		l.mu.Unlock()
		return ErrInsufficientPlayers
	}
	if l.turn != noTurn {
		l.mu.Unlock()
		return ErrGameInProgress
	}
	l.board.Reset()
	l.turn = slot
	l.round++
	round := l.round
	l.broadcast(network.MsgGameStarting)
	l.log.Info("Lobby %s: game starting, %s moves first", l.Code, l.players[slot].Name)
	l.mu.Unlock()

	if r.announceDelay > 0 {
		timer := time.NewTimer(r.announceDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.round != round || l.turn == noTurn {
		return nil
	}
	l.broadcast(l.board.Render(), network.Turn(l.players[l.turn].Name))
	return nil
}

// ApplyMove drops the acting player's piece into column. Rule violations leave the
// lobby untouched. Accepted moves are broadcast to every member before returning.
func (r *Registry) ApplyMove(code, id string, column int) (MoveOutcome, error) {
	l, err := r.get(code)
	if err != nil {
		return MoveOutcome{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	slot := l.slotOf(id)
	if slot < 0 {
		return MoveOutcome{}, ErrNotInLobby
	}
	if l.turn == noTurn {
		return MoveOutcome{}, ErrGameNotStarted
	}
	if slot != l.turn {
		return MoveOutcome{}, ErrNotYourTurn
	}

	mark := game.MarkForSlot(slot)
	row, err := l.board.Drop(column, mark)
	if err != nil {
		return MoveOutcome{}, err
	}

	mover := l.players[slot]
	switch {
	case l.board.HasWinner(mark):
		l.wins[slot]++
		l.turn = noTurn
		l.broadcast(l.board.Render(), network.Wins(mover.Name), network.MsgGameOver)
		l.log.Info("Lobby %s: %s wins (tally %v)", l.Code, mover.Name, l.wins)
		return MoveOutcome{Row: row, Outcome: Win}, nil
	case l.board.Full():
		l.turn = noTurn
		l.broadcast(l.board.Render(), network.MsgDraw, network.MsgGameOver)
		l.log.Info("Lobby %s: draw", l.Code)
		return MoveOutcome{Row: row, Outcome: Draw}, nil
	}

	l.turn = 1 - slot
	l.broadcast(l.board.Render(), network.Turn(l.players[l.turn].Name))
	return MoveOutcome{Row: row, Outcome: Continue}, nil
}

// Leave removes the member identified by id. An emptied lobby is deleted; otherwise
// the remaining player is notified and any game in progress is abandoned.
func (r *Registry) Leave(code, id string) error {
	l, err := r.get(code)
	if err != nil {
		return err
	}

	l.mu.Lock()
	slot := l.slotOf(id)
	if slot < 0 {
		l.mu.Unlock()
		return ErrNotInLobby
	}
	gone := l.players[slot]
	l.players = append(l.players[:slot], l.players[slot+1:]...)

	// tally entries follow their players down the list
	copy(l.wins[slot:], l.wins[slot+1:])
	l.wins[len(l.wins)-1] = 0

	l.turn = noTurn
	l.board.Reset()
	l.round++

	empty := len(l.players) == 0
	if empty {
		l.closed = true
	} else {
		l.broadcast(network.PlayerDisconnected(gone.Name), network.WaitingForOpponent(l.Code))
	}
	l.log.Info("Player %s left lobby %s", id, l.Code)
	l.mu.Unlock()

	if empty {
		r.remove(l)
	}
	return nil
}
