package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"taskdeck/storage"
)

// Param documents a command parameter for /help output
type Param struct {
	Name        string
	Description string
	Required    bool
}

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Handler     func(args []string) bool // returns true to quit
	Params      []Param
	Hidden      bool // if true, exclude from the /help listing
}

var (
	registry    = make(map[string]*Command)
	store       storage.Store
	sessionUser string
)

// Register adds a command to the registry
func Register(cmd *Command) {
	registry[strings.ToLower(cmd.Name)] = cmd
}

// SetStore sets the global store for commands to use
func SetStore(s storage.Store) {
	store = s
}

// GetStore returns the global store
func GetStore() storage.Store {
	return store
}

// SetSessionUser records which user the session acts as. The store
// itself never holds session state; commands pass the owner explicitly.
func SetSessionUser(name string) {
	sessionUser = name
}

// SessionUser returns the current session user, or "" when logged out
func SessionUser() string {
	return sessionUser
}

// requireUser returns the session user, printing a hint when nobody is
// logged in.
func requireUser() (string, bool) {
	if sessionUser == "" {
		fmt.Println("Error: no user selected. Log in with /login <name>")
		return "", false
	}
	return sessionUser, true
}

// Execute runs a command by name with arguments
func Execute(input string) (bool, error) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false, fmt.Errorf("empty command")
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, exists := registry[cmdName]
	if !exists {
		return false, fmt.Errorf("unknown command: %s", cmdName)
	}

	return cmd.Handler(args), nil
}

// ExecuteWithOutput runs a command and returns its captured stdout output
func ExecuteWithOutput(input string) (quit bool, output string, err error) {
	oldStdout := os.Stdout

	r, w, pipeErr := os.Pipe()
	if pipeErr != nil {
		return false, "", fmt.Errorf("failed to create pipe: %w", pipeErr)
	}

	os.Stdout = w
	defer func() { os.Stdout = oldStdout }()

	// Read in a goroutine to prevent pipe buffer deadlock
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		io.Copy(&buf, r)
		close(done)
	}()

	quit, err = Execute(input)

	w.Close()
	<-done
	r.Close()

	output = strings.TrimSpace(buf.String())
	return quit, output, err
}

// List returns all registered commands
func List() []*Command {
	cmds := make([]*Command, 0, len(registry))
	for _, cmd := range registry {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// Names returns all command names sorted, for prompt completion
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetByName returns a command by name (with or without leading /)
func GetByName(name string) *Command {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return registry[strings.ToLower(name)]
}
