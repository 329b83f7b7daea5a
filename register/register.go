// Package register adds this server to an MCP client configuration file.
package register

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
)

// Scope selects the configuration file that receives the entry.
type Scope string

const (
	ScopeProject Scope = "project" // <directory>/.mcp.json
	ScopeUser    Scope = "user"    // ~/.claude.json
)

// ErrUsage marks malformed register arguments.
var ErrUsage = errors.New("invalid register arguments")

// Request is a parsed register command line.
type Request struct {
	Scope      Scope
	Directory  string   // project scope only, "." when omitted
	ServerArgs []string // everything after "--"
}

// Entry is one mcpServers item.
type Entry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Run parses args (everything after "register"), writes the entry for
// the running binary and reports the file it touched on out.
func Run(serverName string, args []string, out io.Writer) error {
	req, err := ParseArgs(args)
	if err != nil {
		return err
	}

	binaryPath, err := executablePath()
	if err != nil {
		return err
	}
	home, err := os.UserHomeDir()
	if err != nil && req.Scope == ScopeUser {
		return fmt.Errorf("getting home directory: %w", err)
	}
	configPath, err := req.ConfigPath(home)
	if err != nil {
		return err
	}
	serverArgs, err := req.ForwardedArgs()
	if err != nil {
		return err
	}

	if err := WriteEntry(configPath, serverName, NewEntry(runtime.GOOS, binaryPath, serverArgs)); err != nil {
		return err
	}
	fmt.Fprintf(out, "Registered %q in %s\n", serverName, configPath)
	return nil
}

// Usage prints the register synopsis.
func Usage(w io.Writer, binaryName string) {
	fmt.Fprintf(w, "Usage:\n")
	fmt.Fprintf(w, "  %s register project [directory] [-- server flags]\n", binaryName)
	fmt.Fprintf(w, "  %s register user [-- server flags]\n", binaryName)
}

// ServerName derives the client-visible name from a binary path:
// "modresolve-mcp.exe" becomes "modresolve".
func ServerName(binaryPath string) string {
	name := filepath.Base(binaryPath)
	name = strings.TrimSuffix(name, ".exe")
	return strings.TrimSuffix(name, "-mcp")
}

// ParseArgs splits "<scope> [directory] [-- flags...]".
func ParseArgs(args []string) (Request, error) {
	if len(args) == 0 {
		return Request{}, fmt.Errorf("%w: missing scope", ErrUsage)
	}
	req := Request{Scope: Scope(args[0])}
	if req.Scope != ScopeProject && req.Scope != ScopeUser {
		return Request{}, fmt.Errorf("%w: unknown scope %q (must be \"project\" or \"user\")", ErrUsage, args[0])
	}

	rest := args[1:]
	if i := slices.Index(rest, "--"); i >= 0 {
		req.ServerArgs = rest[i+1:]
		rest = rest[:i]
	}

	switch {
	case req.Scope == ScopeUser && len(rest) > 0:
		return Request{}, fmt.Errorf("%w: user scope takes no directory", ErrUsage)
	case len(rest) > 1:
		return Request{}, fmt.Errorf("%w: expected one directory, got %v", ErrUsage, rest)
	case len(rest) == 1:
		req.Directory = rest[0]
	case req.Scope == ScopeProject:
		req.Directory = "."
	}
	return req, nil
}

// ConfigPath returns the configuration file for the request's scope.
func (r Request) ConfigPath(home string) (string, error) {
	if r.Scope == ScopeUser {
		return filepath.Join(home, ".claude.json"), nil
	}
	dir, err := filepath.Abs(r.Directory)
	if err != nil {
		return "", fmt.Errorf("resolving directory %s: %w", r.Directory, err)
	}
	return filepath.Join(dir, ".mcp.json"), nil
}

// ForwardedArgs returns the server flags. A project registration pins the
// server to the project directory unless the flags already name one.
func (r Request) ForwardedArgs() ([]string, error) {
	if r.Scope != ScopeProject || hasProjectFlag(r.ServerArgs) {
		return r.ServerArgs, nil
	}
	dir, err := filepath.Abs(r.Directory)
	if err != nil {
		return nil, fmt.Errorf("resolving directory %s: %w", r.Directory, err)
	}
	return append([]string{"-project", dir}, r.ServerArgs...), nil
}

func hasProjectFlag(args []string) bool {
	for _, arg := range args {
		name, _, _ := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if strings.HasPrefix(arg, "-") && name == "project" {
			return true
		}
	}
	return false
}

// NewEntry builds the launch entry. Windows clients start the binary
// through cmd so that PATH lookups behave as in a shell.
func NewEntry(goos, binaryPath string, serverArgs []string) Entry {
	if goos == "windows" {
		return Entry{Command: "cmd", Args: append([]string{"/C", binaryPath}, serverArgs...)}
	}
	return Entry{Command: binaryPath, Args: serverArgs}
}

func executablePath() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("getting executable path: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("resolving symlinks for %s: %w", exe, err)
	}
	return resolved, nil
}

// WriteEntry sets mcpServers[serverName] in configPath. Other keys and
// other servers are kept byte for byte. The file is replaced atomically.
func WriteEntry(configPath, serverName string, entry Entry) error {
	config := map[string]json.RawMessage{}
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &config); err != nil {
			return fmt.Errorf("parsing existing config %s: %w", configPath, err)
		}
		if config == nil {
			config = map[string]json.RawMessage{}
		}
	case !errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("reading config %s: %w", configPath, err)
	}

	servers := map[string]json.RawMessage{}
	if raw, ok := config["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil || servers == nil {
			return fmt.Errorf("mcpServers in %s is not an object", configPath)
		}
	}

	encodedEntry, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling entry: %w", err)
	}
	servers[serverName] = encodedEntry
	if config["mcpServers"], err = json.Marshal(servers); err != nil {
		return fmt.Errorf("marshaling servers: %w", err)
	}

	output, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return replaceFile(configPath, append(output, '\n'))
}

// replaceFile writes data to a sibling temp file and renames it over path.
func replaceFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".mcp-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming %s to %s: %w", tmpPath, path, err)
	}
	return nil
}
