// Connect Four lobby server - main entry point
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connect4-lobby/internal/api"
	"connect4-lobby/internal/config"
	"connect4-lobby/internal/lobby"
	"connect4-lobby/internal/server"
	"connect4-lobby/pkg/logger"
)

var (
	version   = "1.0.0"
	buildTime = "dev"

	configFile    = flag.String("config", "", "YAML config file (optional)")
	host          = flag.String("host", config.DefaultHost, "Server host")
	port          = flag.Int("port", config.DefaultPort, "Server port")
	healthPort    = flag.String("health-port", "", "Health/stats HTTP port (empty disables)")
	announceDelay = flag.Duration("announce-delay", lobby.DefaultAnnounceDelay, "Pause between START_GAME and the first board")
	writeTimeout  = flag.Duration("write-timeout", config.DefaultWriteTimeout, "Deadline for each outbound frame")
	maxPayload    = flag.Int("max-payload", 0, "Largest accepted frame payload in bytes (0 keeps the default)")
	codeLength    = flag.Int("code-length", lobby.DefaultCodeLength, "Length of generated lobby codes")
	logLevel      = flag.String("log-level", config.DefaultLogLevel, "Log level (DEBUG, INFO, WARN, ERROR)")
	logFile       = flag.String("log-file", "", "Log file path (optional)")
	help          = flag.Bool("help", false, "Show help information")
	ver           = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *help {
		showHelp()
		return
	}
	if *ver {
		showVersion()
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(2)
	}

	if err := initLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Server.Close()

	logger.Server.Info("Starting Connect Four lobby server v%s", version)

	registry := lobby.NewRegistry(lobby.Options{
		CodeLength:    cfg.CodeLength,
		AnnounceDelay: cfg.AnnounceDelay,
		Logger:        logger.Server.With("lobby"),
	})
	gameServer := server.NewServer(cfg.Address(), registry, server.Options{
		WriteTimeout: cfg.WriteTimeout,
		MaxPayload:   cfg.MaxPayload,
		Logger:       logger.Server,
	})
	if err := gameServer.Listen(); err != nil {
		logger.Server.Fatal("Server failed to start: %v", err)
	}

	var health *api.HealthServer
	if addr := cfg.HealthAddress(); addr != "" {
		health = api.NewHealthServer(addr, gameServer, logger.Server)
		health.Start()
		health.SetReady(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() { serveErr <- gameServer.Serve() }()

	select {
	case <-ctx.Done():
		logger.Server.Info("Received shutdown signal, stopping server...")
	case err := <-serveErr:
		if err != nil {
			logger.Server.Error("Server stopped unexpectedly: %v", err)
		}
	}

	shutdown(gameServer, health)
}

// loadConfig layers command-line flags over the file and environment settings.
// Only flags given explicitly override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = *host
		case "port":
			cfg.Port = *port
		case "health-port":
			cfg.HealthPort = *healthPort
		case "announce-delay":
			cfg.AnnounceDelay = *announceDelay
		case "write-timeout":
			cfg.WriteTimeout = *writeTimeout
		case "max-payload":
			if *maxPayload > 0 {
				cfg.MaxPayload = *maxPayload
			}
		case "code-length":
			cfg.CodeLength = *codeLength
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		}
	})
	return cfg, cfg.Validate()
}

// initLogging sets up the logging system
func initLogging(cfg *config.Config) error {
	logger.SetGlobalLogLevel(logger.ParseLevel(cfg.LogLevel))

	if cfg.LogFile != "" {
		if err := logger.Server.SetFile(cfg.LogFile); err != nil {
			return fmt.Errorf("failed to set log file: %w", err)
		}
		logger.Server.Info("Logging to file: %s", cfg.LogFile)
	}
	return nil
}

func shutdown(gameServer *server.Server, health *api.HealthServer) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if health != nil {
		if err := health.Stop(ctx); err != nil {
			logger.Server.Warn("Health server shutdown: %v", err)
		}
	}
	if err := gameServer.Stop(); err != nil {
		logger.Server.Warn("Listener close: %v", err)
	}
}

// showHelp displays help information
func showHelp() {
	fmt.Printf(`Connect Four lobby server v%s

USAGE:
    %s [OPTIONS]

OPTIONS:
    -config string           YAML config file (optional)
    -host string             Server host (default "0.0.0.0")
    -port int                Server port (default 12345)
    -health-port string      Health/stats HTTP port (disabled when empty)
    -announce-delay duration Pause before the first board (default 2s)
    -write-timeout duration  Deadline for each outbound frame (default 5s)
    -max-payload int         Largest accepted frame payload in bytes (default 1048576)
    -code-length int         Length of lobby codes (default 4)
    -log-level string        Log level (DEBUG, INFO, WARN, ERROR) (default "INFO")
    -log-file string         Log file path (optional)
    -help                    Show this help message
    -version                 Show version information

ENVIRONMENT:
    C4_HOST, C4_PORT, C4_HEALTH_PORT, C4_ANNOUNCE_DELAY, C4_WRITE_TIMEOUT,
    C4_MAX_PAYLOAD, C4_CODE_LENGTH, C4_LOG_LEVEL, C4_LOG_FILE
    Flags override the environment, which overrides the config file.

EXAMPLES:
    # Start server with default settings
    %s

    # Start on a specific port with stats on 8080
    %s -port 9000 -health-port 8080

    # Start with debug logging and no announcement pause
    %s -log-level DEBUG -announce-delay 0s

PROTOCOL:
    Every message is a 64-byte ASCII decimal length header followed by
    that many bytes of UTF-8 text. Commands: CREATE_LOBBY, JOIN_LOBBY <code>,
    SET_NAME <name>, VIEW_PLAYERS, START_GAME, MOVE <column>, LEAVE, quit.
`, version, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}

// showVersion displays version information
func showVersion() {
	fmt.Printf(`Connect Four lobby server
Version: %s
Build Time: %s
`, version, buildTime)
}
