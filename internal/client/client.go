package client

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"connect4-lobby/internal/network"
	"connect4-lobby/pkg/logger"
)

// Client connects to a lobby server and relays console input to it
type Client struct {
	conn       net.Conn
	display    *Display
	input      *InputHandler
	logger     *logger.Logger
	serverAddr string

	writeMu   sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client reading commands from in and printing to out
func NewClient(serverAddr string, in io.Reader, out io.Writer) *Client {
	display := NewDisplay(out)
	return &Client{
		display:    display,
		input:      NewInputHandler(in, display),
		logger:     logger.Client,
		serverAddr: serverAddr,
		done:       make(chan struct{}),
	}
}

// SetLogger replaces the client logger
func (c *Client) SetLogger(l *logger.Logger) {
	c.logger = l
}

// Start connects and runs until the user quits, input ends or the server hangs up
func (c *Client) Start() error {
	c.display.PrintBanner()

	if err := c.connectToServer(); err != nil {
		c.display.PrintError(fmt.Sprintf("Failed to connect to server: %v", err))
		return err
	}
	defer c.Close()

	go c.messageHandler()
	return c.runMainLoop()
}

// connectToServer establishes the TCP connection
func (c *Client) connectToServer() error {
	c.display.PrintInfo("Connecting to server...")

	conn, err := net.Dial("tcp", c.serverAddr)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	c.conn = conn

	c.display.PrintServerStatus("Connected to " + c.serverAddr)
	c.logger.Info("Connected to server at %s", c.serverAddr)
	return nil
}

// runMainLoop forwards commands until quit. After quit it waits for the server to close.
func (c *Client) runMainLoop() error {
	lines := make(chan string)
	inputErr := make(chan error, 1)
	go func() {
		for {
			c.display.PrintPrompt()
			line, err := c.input.NextCommand()
			if err != nil {
				inputErr <- err
				return
			}
			select {
			case lines <- line:
			case <-c.done:
				return
			}
			if strings.EqualFold(line, "quit") {
				return
			}
		}
	}()

	for {
		select {
		case <-c.done:
			c.display.PrintServerStatus("Disconnected")
			return nil
		case err := <-inputErr:
			if errors.Is(err, io.EOF) {
				c.sendCommand("quit")
				<-c.done
				return nil
			}
			return err
		case line := <-lines:
			if err := c.sendCommand(line); err != nil {
				c.display.PrintError(fmt.Sprintf("Failed to send: %v", err))
				return err
			}
		}
	}
}

// messageHandler prints server frames until the connection ends
func (c *Client) messageHandler() {
	defer c.markDone()

	decoder := network.NewDecoder(c.conn, 0)
	for {
		payload, err := decoder.ReadFrame()
		if err != nil {
			if !errors.Is(err, network.ErrConnectionClosed) && !errors.Is(err, net.ErrClosed) {
				c.logger.Error("Read failed: %v", err)
			}
			return
		}
		c.display.PrintMessage(string(payload))
	}
}

// sendCommand frames one command line
func (c *Client) sendCommand(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.logger.Debug("Sending %q", line)
	return network.WriteFrame(c.conn, []byte(line))
}

func (c *Client) markDone() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Close disconnects from the server
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}
