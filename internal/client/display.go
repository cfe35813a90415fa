// Package client implements the interactive console client
package client

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"connect4-lobby/internal/game"
	"connect4-lobby/internal/network"
)

// Kind classifies a server payload for rendering
type Kind int

const (
	KindInfo Kind = iota
	KindBoard
	KindTurn
	KindWin
	KindDraw
	KindError
	KindNotice
)

type Display struct {
	out io.Writer

	serverColor  *color.Color
	connectColor *color.Color
	gameColor    *color.Color
	winColor     *color.Color
	warningColor *color.Color
	errorColor   *color.Color
	infoColor    *color.Color
	playerColor  *color.Color
	enemyColor   *color.Color
	gridColor    *color.Color
}

// NewDisplay creates a display writing to out
func NewDisplay(out io.Writer) *Display {
	return &Display{
		out:          out,
		serverColor:  color.New(color.FgCyan, color.Bold),
		connectColor: color.New(color.FgGreen, color.Bold),
		gameColor:    color.New(color.FgYellow, color.Bold),
		winColor:     color.New(color.FgGreen, color.Bold, color.BgBlack),
		warningColor: color.New(color.FgYellow),
		errorColor:   color.New(color.FgRed, color.Bold),
		infoColor:    color.New(color.FgWhite),
		playerColor:  color.New(color.FgRed, color.Bold),
		enemyColor:   color.New(color.FgYellow, color.Bold),
		gridColor:    color.New(color.FgBlue),
	}
}

// PrintBanner displays the client banner
func (d *Display) PrintBanner() {
	banner := `
╔═══════════════════════════════════════╗
║         CONNECT FOUR  CLIENT          ║
║      four in a row wins the game      ║
╚═══════════════════════════════════════╝
`
	d.gameColor.Fprintln(d.out, banner)
}

// PrintServerStatus displays connection status
func (d *Display) PrintServerStatus(message string) {
	timestamp := time.Now().Format("15:04:05")
	d.connectColor.Fprintf(d.out, "[%s] [SERVER] %s\n", timestamp, message)
}

func (d *Display) PrintInfo(message string) {
	d.infoColor.Fprintf(d.out, "[INFO] %s\n", message)
}

func (d *Display) PrintWarning(message string) {
	d.warningColor.Fprintf(d.out, "[WARNING] %s\n", message)
}

func (d *Display) PrintError(message string) {
	d.errorColor.Fprintf(d.out, "[ERROR] %s\n", message)
}

// PrintHelp lists the commands the server understands
func (d *Display) PrintHelp() {
	d.infoColor.Fprintln(d.out, `Commands:
  CREATE_LOBBY          create a lobby and join it
  JOIN_LOBBY <code>     join a lobby by code
  SET_NAME <name>       set your display name
  VIEW_PLAYERS          list players and wins
  START_GAME            start a game (you move first)
  MOVE <column>         drop a piece in column 0-6
  LEAVE                 leave the lobby
  quit                  disconnect`)
}

// Classify decides how a server payload is shown
func Classify(payload string) Kind {
	switch {
	case strings.Contains(payload, "\n") && strings.HasPrefix(payload, " 0 1"):
		return KindBoard
	case strings.HasSuffix(payload, "'s turn."):
		return KindTurn
	case strings.HasSuffix(payload, " wins!"):
		return KindWin
	case payload == network.MsgDraw:
		return KindDraw
	case strings.HasPrefix(payload, "Error"),
		payload == network.MsgNotYourTurn,
		payload == network.MsgInvalidMove,
		payload == network.MsgLobbyFullOrNotExist,
		payload == network.MsgUnknownCommand:
		return KindError
	case strings.HasSuffix(payload, " disconnected."),
		payload == network.MsgGameOver:
		return KindNotice
	default:
		return KindInfo
	}
}

// PrintMessage renders one server payload
func (d *Display) PrintMessage(payload string) {
	switch Classify(payload) {
	case KindBoard:
		d.PrintBoard(payload)
	case KindTurn:
		d.gameColor.Fprintln(d.out, payload)
	case KindWin:
		d.winColor.Fprintf(d.out, "🎉 %s 🎉\n", payload)
	case KindDraw:
		d.warningColor.Fprintf(d.out, "🤝 %s 🤝\n", payload)
	case KindError:
		d.errorColor.Fprintln(d.out, payload)
	case KindNotice:
		d.warningColor.Fprintln(d.out, payload)
	default:
		d.serverColor.Fprintln(d.out, payload)
	}
}

// PrintBoard colors the pieces of a rendered board
func (d *Display) PrintBoard(board string) {
	fmt.Fprintln(d.out)
	for _, line := range strings.Split(board, "\n") {
		var sb strings.Builder
		for _, r := range line {
			s := string(r)
			switch s {
			case game.PlayerA.Symbol():
				sb.WriteString(d.playerColor.Sprint(s))
			case game.PlayerB.Symbol():
				sb.WriteString(d.enemyColor.Sprint(s))
			case "|", "+", "-":
				sb.WriteString(d.gridColor.Sprint(s))
			default:
				sb.WriteString(s)
			}
		}
		fmt.Fprintln(d.out, sb.String())
	}
}

// PrintPrompt shows the input prompt
func (d *Display) PrintPrompt() {
	fmt.Fprint(d.out, "> ")
}
