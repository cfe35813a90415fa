// Connect Four console client - main entry point
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"connect4-lobby/internal/client"
	"connect4-lobby/pkg/logger"
)

var (
	version    = "1.0.0"
	serverAddr = flag.String("server", "localhost:12345", "Server address (host:port)")
	logLevel   = flag.String("log-level", "WARN", "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile    = flag.String("log-file", "", "Log file path (optional)")
)

func main() {
	flag.Parse()

	if err := initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Client.Close()

	logger.Client.Info("Starting Connect Four client v%s", version)

	gameClient := client.NewClient(*serverAddr, os.Stdin, os.Stdout)
	setupGracefulShutdown(gameClient)

	if err := gameClient.Start(); err != nil {
		logger.Client.Error("Client failed: %v", err)
		os.Exit(1)
	}
}

// initLogging sets up the logging system
func initLogging() error {
	logger.SetGlobalLogLevel(logger.ParseLevel(*logLevel))

	if *logFile != "" {
		if err := logger.Client.SetFile(*logFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
	}
	return nil
}

// setupGracefulShutdown closes the connection on interrupt, which ends Start
func setupGracefulShutdown(gameClient *client.Client) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Client.Info("Received shutdown signal, closing client...")
		gameClient.Close()
	}()
}
