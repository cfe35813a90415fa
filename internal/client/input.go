package client

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"connect4-lobby/internal/network"
)

// InputHandler reads and checks command lines typed by the user
type InputHandler struct {
	scanner *bufio.Scanner
	display *Display
}

// NewInputHandler creates a new input handler
func NewInputHandler(in io.Reader, display *Display) *InputHandler {
	return &InputHandler{
		scanner: bufio.NewScanner(in),
		display: display,
	}
}

// NextCommand returns the next line worth sending to the server. Blank lines
// and help are handled locally, and lines that would not parse are rejected
// with a hint. It returns io.EOF when input runs out.
func (ih *InputHandler) NextCommand() (string, error) {
	for {
		if !ih.scanner.Scan() {
			if err := ih.scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}

		line := strings.TrimSpace(ih.scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "help"):
			ih.display.PrintHelp()
			continue
		}

		if _, err := network.ParseCommand(line); err != nil {
			if errors.Is(err, network.ErrUnknownCommand) {
				ih.display.PrintWarning("Unknown command. Type 'help' for the list.")
			} else {
				ih.display.PrintWarning(err.Error())
			}
			continue
		}
		return line, nil
	}
}
