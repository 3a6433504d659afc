package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/chzyer/readline"
	"github.com/joho/godotenv"

	"taskdeck/commands"
	"taskdeck/config"
	"taskdeck/storage"
)

func main() {
	// A local .env can supply TASKDECK_* variables
	_ = godotenv.Load()

	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "taskdeck: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "backend", cfg.Backend, "path", cfg.DataFile, "err", err)
		os.Exit(1)
	}
	defer store.Close()
	commands.SetStore(store)

	seedUsers(store, cfg.Users, logger)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "taskdeck> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".taskdeck_history"),
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		logger.Error("failed to start prompt", "err", err)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Println("Welcome to Taskdeck! Type /help for available commands.")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil {
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if !strings.HasPrefix(input, "/") {
			fmt.Println("Commands start with /. Type /help for a list.")
			continue
		}

		quit, err := commands.Execute(input)
		if err != nil {
			fmt.Printf("%v. Type /help for available commands.\n", err)
		}
		if quit {
			break
		}
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:     parseLogLevel(cfg.LogLevel),
		Formatter: parseLogFormatter(cfg.LogFormat),
		Prefix:    "taskdeck",
	})
}

// parseLogLevel parses a string log level to a charmbracelet/log Level.
func parseLogLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// parseLogFormatter parses a string formatter name to a charmbracelet/log Formatter.
func parseLogFormatter(format string) log.Formatter {
	switch format {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

func openStore(cfg *config.Config, logger *log.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(cfg.DataFile)
	default:
		return storage.NewJSONStore(cfg.DataFile, logger), nil
	}
}

// seedUsers registers the configured users when missing from the store
func seedUsers(store storage.Store, users []string, logger *log.Logger) {
	for _, name := range users {
		if _, err := store.GetUser(name); err == nil {
			continue
		}
		if _, err := store.AddUser(name, ""); err != nil {
			logger.Warn("could not seed user", "user", name, "err", err)
			continue
		}
		logger.Debug("seeded user", "user", name)
	}
}

func completer() *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface
	for _, name := range commands.Names() {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}
