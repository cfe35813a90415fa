package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"connect4-lobby/internal/game"
	"connect4-lobby/internal/lobby"
	"connect4-lobby/internal/network"
	"connect4-lobby/pkg/logger"
)

// MaxNameLength bounds SET_NAME, in runes
const MaxNameLength = 32

// State is where a session stands in the lobby lifecycle
type State int

const (
	Idle State = iota
	InLobby
	InGame
)

func (s State) String() string {
	switch s {
	case InLobby:
		return "InLobby"
	case InGame:
		return "InGame"
	default:
		return "Idle"
	}
}

// Session serves one connection: it owns the receive loop, turns frames into
// commands and drives the registry. It is the lobby.Conn other sessions send through.
type Session struct {
	id       string
	conn     net.Conn
	registry *lobby.Registry
	logger   *logger.Logger

	maxPayload   int
	writeTimeout time.Duration

	writeMu sync.Mutex

	mu   sync.Mutex
	code string

	closeOnce sync.Once
}

// NewSession wraps conn. Each session gets a random id used as its player identity.
func NewSession(conn net.Conn, registry *lobby.Registry, opts Options) *Session {
	id := uuid.NewString()
	log := opts.Logger
	if log == nil {
		log = logger.Server
	}
	return &Session{
		id:           id,
		conn:         conn,
		registry:     registry,
		logger:       log.With(id[:8]),
		maxPayload:   opts.MaxPayload,
		writeTimeout: opts.WriteTimeout,
	}
}

// ID returns the session's player id
func (s *Session) ID() string { return s.id }

// RemoteAddr returns the peer address
func (s *Session) RemoteAddr() string { return s.conn.RemoteAddr().String() }

// Send writes one framed payload. Safe for concurrent use. A failed write
// closes the connection.
func (s *Session) Send(payload string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.writeTimeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil {
			s.Close()
			return fmt.Errorf("send to %s: %w", s.RemoteAddr(), err)
		}
	}
	if err := network.WriteFrame(s.conn, []byte(payload)); err != nil {
		// a partial frame cannot be resynchronized; drop the connection so Run leaves the lobby
		s.Close()
		return fmt.Errorf("send to %s: %w", s.RemoteAddr(), err)
	}
	return nil
}

// Close closes the connection, unblocking Run
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}

// LobbyCode returns the code of the joined lobby, or ""
func (s *Session) LobbyCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code
}

func (s *Session) setLobbyCode(code string) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
}

// State reports the session's lifecycle state
func (s *Session) State() State {
	code := s.LobbyCode()
	if code == "" {
		return Idle
	}
	snap, ok := s.registry.Lookup(code)
	if ok && snap.InGame() {
		return InGame
	}
	return InLobby
}

// Run serves the connection until the peer closes it, sends quit, or the frame
// stream is corrupt. The player always leaves its lobby before Run returns.
func (s *Session) Run(ctx context.Context) error {
	defer s.cleanup()

	s.logger.Info("Session started for %s", s.RemoteAddr())
	if err := s.Send(network.MsgWelcome); err != nil {
		return err
	}

	decoder := network.NewDecoder(s.conn, s.maxPayload)
	for {
		payload, err := decoder.ReadFrame()
		if err != nil {
			switch {
			case errors.Is(err, network.ErrConnectionClosed), errors.Is(err, net.ErrClosed), errors.Is(err, io.ErrClosedPipe):
				s.logger.Info("Connection closed by peer")
				return nil
			case ctx.Err() != nil:
				return nil
			case errors.Is(err, network.ErrFraming):
				s.logger.Warn("Dropping connection: %v", err)
				return err
			default:
				return fmt.Errorf("read error: %w", err)
			}
		}

		if !utf8.Valid(payload) {
			s.reply(network.MsgUnknownCommand)
			continue
		}

		cmd, err := network.ParseCommand(string(payload))
		if err != nil {
			s.logger.Debug("Rejected command %q: %v", payload, err)
			if errors.Is(err, network.ErrMalformedCommand) {
				s.reply(network.Malformed(cmd.Kind))
			} else {
				s.reply(network.MsgUnknownCommand)
			}
			continue
		}

		s.logger.Debug("Received %s", cmd.Kind)
		if done := s.dispatch(ctx, cmd); done {
			return nil
		}
	}
}

// cleanup leaves the lobby and closes the connection
func (s *Session) cleanup() {
	if code := s.LobbyCode(); code != "" {
		if err := s.registry.Leave(code, s.id); err != nil {
			s.logger.Warn("Leave %s: %v", code, err)
		}
		s.setLobbyCode("")
	}
	s.Close()
	s.logger.Info("Session ended")
}

// reply sends a payload to this session only
func (s *Session) reply(payload string) {
	if err := s.Send(payload); err != nil {
		s.logger.Warn("Reply failed: %v", err)
	}
}

// dispatch executes one command and reports whether the session should end
func (s *Session) dispatch(ctx context.Context, cmd network.Command) bool {
	switch cmd.Kind {
	case network.CmdCreateLobby:
		s.handleCreateLobby()
	case network.CmdJoinLobby:
		s.handleJoinLobby(cmd.Code)
	case network.CmdSetName:
		s.handleSetName(cmd.Name)
	case network.CmdViewPlayers:
		s.handleViewPlayers()
	case network.CmdStartGame:
		return s.handleStartGame(ctx)
	case network.CmdMove:
		s.handleMove(cmd.Column)
	case network.CmdLeave:
		s.handleLeave()
	case network.CmdQuit:
		s.reply(network.MsgGoodbye)
		return true
	default:
		s.reply(network.MsgUnknownCommand)
	}
	return false
}

func (s *Session) handleCreateLobby() {
	if s.LobbyCode() != "" {
		s.reply(network.MsgAlreadyInLobby)
		return
	}

	code, err := s.registry.CreateLobby()
	if err != nil {
		s.logger.Error("Create lobby failed: %v", err)
		s.reply(network.MsgServerError)
		return
	}
	s.reply(network.LobbyCreated(code))

	if _, err := s.registry.JoinLobby(code, s); err != nil {
		s.reply(replyFor(err))
		return
	}
	s.setLobbyCode(code)
	s.reply(network.WaitingForOpponent(code))
}

func (s *Session) handleJoinLobby(code string) {
	if s.LobbyCode() != "" {
		s.reply(network.MsgAlreadyInLobby)
		return
	}

	if _, err := s.registry.JoinLobby(code, s); err != nil {
		s.logger.Info("Join %s rejected: %v", code, err)
		s.reply(network.MsgLobbyFullOrNotExist)
		return
	}
	s.setLobbyCode(code)
}

func (s *Session) handleSetName(name string) {
	code := s.LobbyCode()
	if code == "" {
		s.reply(network.MsgNotInLobby)
		return
	}

	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		s.reply(network.Malformed(network.CmdSetName))
		return
	}
	if err := s.registry.SetName(code, s.id, name); err != nil {
		s.reply(replyFor(err))
		return
	}
	s.reply(network.NameSet(name))
}

func (s *Session) handleViewPlayers() {
	code := s.LobbyCode()
	if code == "" {
		s.reply(network.MsgNotInLobby)
		return
	}

	text, err := s.registry.ViewPlayers(code, s.id)
	if err != nil {
		s.reply(replyFor(err))
		return
	}
	s.reply(text)
}

func (s *Session) handleStartGame(ctx context.Context) bool {
	code := s.LobbyCode()
	if code == "" {
		s.reply(network.MsgNotInLobby)
		return false
	}

	err := s.registry.StartGame(ctx, code, s.id)
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s.reply(replyFor(err))
	return false
}

func (s *Session) handleMove(column int) {
	code := s.LobbyCode()
	if code == "" {
		s.reply(network.MsgNotInLobby)
		return
	}

	outcome, err := s.registry.ApplyMove(code, s.id, column)
	if err != nil {
		s.reply(replyFor(err))
		return
	}
	s.logger.Debug("Move in column %d landed in row %d (%s)", column, outcome.Row, outcome.Outcome)
}

func (s *Session) handleLeave() {
	code := s.LobbyCode()
	if code == "" {
		s.reply(network.MsgNotInLobby)
		return
	}

	if err := s.registry.Leave(code, s.id); err != nil {
		s.logger.Warn("Leave %s: %v", code, err)
	}
	s.setLobbyCode("")
	s.reply(network.MsgLeftLobby)
}

// replyFor maps registry and engine errors onto the reply sent to the acting player
func replyFor(err error) string {
	switch {
	case errors.Is(err, lobby.ErrNotYourTurn):
		return network.MsgNotYourTurn
	case errors.Is(err, game.ErrColumnFull), errors.Is(err, game.ErrColumnOutOfRange):
		return network.MsgInvalidMove
	case errors.Is(err, lobby.ErrGameNotStarted):
		return network.MsgGameNotStarted
	case errors.Is(err, lobby.ErrGameInProgress):
		return network.MsgGameInProgress
	case errors.Is(err, lobby.ErrInsufficientPlayers):
		return network.MsgNeedTwoPlayers
	case errors.Is(err, lobby.ErrLobbyFull):
		return network.MsgLobbyFullOrNotExist
	case errors.Is(err, lobby.ErrAlreadyInLobby):
		return network.MsgAlreadyInLobby
	case errors.Is(err, lobby.ErrNotInLobby), errors.Is(err, lobby.ErrLobbyNotFound):
		return network.MsgNotInLobby
	default:
		return network.MsgServerError
	}
}
