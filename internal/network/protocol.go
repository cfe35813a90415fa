// Package network handles the lobby wire protocol: frames, commands and reply texts
package network

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind identifies a client command
type CommandKind int

const (
	CmdCreateLobby CommandKind = iota + 1
	CmdJoinLobby
	CmdSetName
	CmdViewPlayers
	CmdStartGame
	CmdMove
	CmdLeave
	CmdQuit
)

var commandNames = map[CommandKind]string{
	CmdCreateLobby: "CREATE_LOBBY",
	CmdJoinLobby:   "JOIN_LOBBY",
	CmdSetName:     "SET_NAME",
	CmdViewPlayers: "VIEW_PLAYERS",
	CmdStartGame:   "START_GAME",
	CmdMove:        "MOVE",
	CmdLeave:       "LEAVE",
	CmdQuit:        "quit",
}

// keywords maps the upper-cased first word of a command line to its kind
var keywords = map[string]CommandKind{
	"CREATE_LOBBY": CmdCreateLobby,
	"JOIN_LOBBY":   CmdJoinLobby,
	"SET_NAME":     CmdSetName,
	"VIEW_PLAYERS": CmdViewPlayers,
	"START_GAME":   CmdStartGame,
	"START":        CmdStartGame,
	"MOVE":         CmdMove,
	"LEAVE":        CmdLeave,
	"QUIT":         CmdQuit,
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("CommandKind(%d)", int(k))
}

// Command is a parsed client request. Only the field matching Kind is set.
type Command struct {
	Kind   CommandKind
	Code   string // JOIN_LOBBY
	Name   string // SET_NAME
	Column int    // MOVE
}

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrMalformedCommand = errors.New("malformed command")
)

// ParseCommand turns one payload into a Command. Keywords are case-insensitive.
// A malformed command still reports its Kind alongside ErrMalformedCommand.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, fmt.Errorf("%w: empty", ErrUnknownCommand)
	}

	keyword, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	kind, ok := keywords[strings.ToUpper(keyword)]
	if !ok {
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, keyword)
	}

	cmd := Command{Kind: kind}
	switch kind {
	case CmdJoinLobby:
		fields := strings.Fields(rest)
		if len(fields) != 1 {
			return Command{Kind: kind}, fmt.Errorf("%w: %s takes one lobby code", ErrMalformedCommand, kind)
		}
		cmd.Code = strings.ToUpper(fields[0])
	case CmdSetName:
		if rest == "" {
			return Command{Kind: kind}, fmt.Errorf("%w: %s needs a name", ErrMalformedCommand, kind)
		}
		cmd.Name = rest
	case CmdMove:
		fields := strings.Fields(rest)
		if len(fields) != 1 {
			return Command{Kind: kind}, fmt.Errorf("%w: %s takes one column", ErrMalformedCommand, kind)
		}
		col, err := strconv.Atoi(fields[0])
		if err != nil {
			return Command{Kind: kind}, fmt.Errorf("%w: column %q is not a number", ErrMalformedCommand, fields[0])
		}
		cmd.Column = col
	default:
		if rest != "" {
			return Command{Kind: kind}, fmt.Errorf("%w: %s takes no arguments", ErrMalformedCommand, kind)
		}
	}
	return cmd, nil
}

// Server -> client payloads
const (
	MsgWelcome = `_______________________________________________________
|                                                     |
|          Welcome to Colossal Connect Four!          |
|    A game of wits, strategy, and colossal fun!      |
|_____________________________________________________|`

	MsgLobbyFullOrNotExist = "LOBBY_FULL_OR_NOT_EXIST"
	MsgGameOver            = "Game over! Type 'start' to play again."
	MsgNotYourTurn         = "It's not your turn."
	MsgInvalidMove         = "Invalid move. Try again."
	MsgGameNotStarted      = "Error: Game not started."
	MsgNeedTwoPlayers      = "Error: Two players are required to start."
	MsgGameInProgress      = "Error: Game already in progress."
	MsgNotInLobby          = "Error: You are not in a lobby."
	MsgAlreadyInLobby      = "Error: You are already in a lobby."
	MsgUnknownCommand      = "Error: Unknown command."
	MsgDraw                = "It's a draw!"
	MsgGameStarting        = "Game starting!"
	MsgLeftLobby           = "You left the lobby."
	MsgGoodbye             = "Goodbye!"
	MsgServerError         = "Error: Server error."
)

// LobbyCreated acknowledges CREATE_LOBBY
func LobbyCreated(code string) string { return "LOBBY_CREATED " + code }

// JoinedLobby acknowledges JOIN_LOBBY
func JoinedLobby(code string) string { return "JOINED_LOBBY " + code }

// YouArePlayer tells a player their seat, numbered from 1
func YouArePlayer(slot int) string { return fmt.Sprintf("You are Player %d", slot+1) }

// WaitingForOpponent tells a lone player which code to share
func WaitingForOpponent(code string) string {
	return "Waiting for an opponent. Lobby code: " + code
}

// PlayerJoined announces a newcomer to the players already seated
func PlayerJoined(name string, slot int) string {
	return fmt.Sprintf("%s joined the lobby as Player %d.", name, slot+1)
}

// NameSet acknowledges SET_NAME
func NameSet(name string) string { return "Name set to " + name + "." }

// Turn names the player to move
func Turn(name string) string { return name + "'s turn." }

// Wins announces the winner of a game
func Wins(name string) string { return name + " wins!" }

// PlayerDisconnected tells the remaining player their opponent left
func PlayerDisconnected(name string) string { return name + " disconnected." }

// Malformed reports bad arguments for a known command
func Malformed(kind CommandKind) string {
	return fmt.Sprintf("Error: Invalid arguments for %s.", kind)
}

// PlayerEntry is one line item of a VIEW_PLAYERS reply
type PlayerEntry struct {
	Name string
	Wins int
}

// PlayersInLobby formats the VIEW_PLAYERS reply
func PlayersInLobby(entries []PlayerEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s (Wins: %d)", e.Name, e.Wins))
	}
	return "Players in lobby: " + strings.Join(parts, ", ")
}
