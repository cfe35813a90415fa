package network

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"CREATE_LOBBY", Command{Kind: CmdCreateLobby}},
		{"  create_lobby  ", Command{Kind: CmdCreateLobby}},
		{"JOIN_LOBBY K4Z9", Command{Kind: CmdJoinLobby, Code: "K4Z9"}},
		{"join_lobby k4z9", Command{Kind: CmdJoinLobby, Code: "K4Z9"}},
		{"SET_NAME Ada Lovelace", Command{Kind: CmdSetName, Name: "Ada Lovelace"}},
		{"VIEW_PLAYERS", Command{Kind: CmdViewPlayers}},
		{"START_GAME", Command{Kind: CmdStartGame}},
		{"start", Command{Kind: CmdStartGame}},
		{"MOVE 3", Command{Kind: CmdMove, Column: 3}},
		{"MOVE -1", Command{Kind: CmdMove, Column: -1}},
		{"LEAVE", Command{Kind: CmdLeave}},
		{"quit", Command{Kind: CmdQuit}},
	}
	for _, tt := range tests {
		got, err := ParseCommand(tt.line)
		if err != nil {
			t.Errorf("ParseCommand(%q): %v", tt.line, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseCommand(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestParseCommandErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"", ErrUnknownCommand},
		{"   ", ErrUnknownCommand},
		{"DANCE", ErrUnknownCommand},
		{"MOVEX 3", ErrUnknownCommand},
		{"JOIN_LOBBY", ErrMalformedCommand},
		{"JOIN_LOBBY A B", ErrMalformedCommand},
		{"SET_NAME", ErrMalformedCommand},
		{"MOVE", ErrMalformedCommand},
		{"MOVE three", ErrMalformedCommand},
		{"MOVE 1 2", ErrMalformedCommand},
		{"START_GAME now", ErrMalformedCommand},
		{"quit please", ErrMalformedCommand},
	}
	for _, tt := range tests {
		if _, err := ParseCommand(tt.line); !errors.Is(err, tt.want) {
			t.Errorf("ParseCommand(%q) error = %v, want %v", tt.line, err, tt.want)
		}
	}
}

func TestReplyTexts(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{YouArePlayer(1), "You are Player 2"},
		{Turn("Ada"), "Ada's turn."},
		{Wins("Ada"), "Ada wins!"},
		{PlayersInLobby([]PlayerEntry{{"Ada", 2}, {"Bob", 0}}), "Players in lobby: Ada (Wins: 2), Bob (Wins: 0)"},
		{Malformed(CmdMove), "Error: Invalid arguments for MOVE."},
		{LobbyCreated("K4Z9"), "LOBBY_CREATED K4Z9"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestParseCommandMalformedKeepsKind(t *testing.T) {
	cmd, err := ParseCommand("MOVE left")
	if !errors.Is(err, ErrMalformedCommand) {
		t.Fatalf("error = %v", err)
	}
	if cmd.Kind != CmdMove {
		t.Errorf("Kind = %v, want MOVE", cmd.Kind)
	}
}
