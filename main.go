package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/lexandro/modresolve-mcp/component"
	"github.com/lexandro/modresolve-mcp/ignore"
	"github.com/lexandro/modresolve-mcp/index"
	"github.com/lexandro/modresolve-mcp/register"
	"github.com/lexandro/modresolve-mcp/resolvecache"
	"github.com/lexandro/modresolve-mcp/resolver"
	"github.com/lexandro/modresolve-mcp/server"
	"github.com/lexandro/modresolve-mcp/tools"
	"github.com/lexandro/modresolve-mcp/watcher"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const version = "0.1.0"

// excludePatterns is a repeatable CLI flag for custom ignore patterns.
type excludePatterns []string

func (e *excludePatterns) String() string { return strings.Join(*e, ", ") }
func (e *excludePatterns) Set(value string) error {
	*e = append(*e, value)
	return nil
}

// options holds the parsed command line.
type options struct {
	projectDir       string
	scriptRoot       string
	dependencyRoot   string
	scriptSubroot    string
	manifestPath     string
	excludes         excludePatterns
	maxFileSizeBytes int64
	maxResults       int
	cacheSize        int
	syncInterval     int
	logLevel         string
	logFile          string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("modresolve-mcp", flag.ContinueOnError)
	fs.StringVar(&opts.projectDir, "project", "", "Project directory (default: current working directory)")
	fs.StringVar(&opts.scriptRoot, "scripts", "", "Project script root (default: <project>/Content/JavaScript)")
	fs.StringVar(&opts.dependencyRoot, "dependencies", "", "Dependency vendor root (default: <project>/Content/PuertsDependencies)")
	fs.StringVar(&opts.scriptSubroot, "script-subroot", resolver.DefaultScriptSubroot, "Script folder inside each component content directory")
	fs.StringVar(&opts.manifestPath, "components", "", "Component manifest (default: <project>/components.yaml)")
	fs.Var(&opts.excludes, "exclude", "Extra ignore pattern (repeatable)")
	fs.Int64Var(&opts.maxFileSizeBytes, "max-file-size", 1024*1024, "Maximum catalogued file size in bytes")
	fs.IntVar(&opts.maxResults, "max-results", 50, "Default max search results")
	fs.IntVar(&opts.cacheSize, "cache-size", 4096, "Resolution cache entries (0 disables the cache)")
	fs.IntVar(&opts.syncInterval, "sync-interval", 300, "Seconds between catalog verifications (0 disables)")
	fs.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.StringVar(&opts.logFile, "log-file", "", "Log file path (default: <project>/modresolve-mcp.log)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return opts, fmt.Errorf("getting working directory: %w", err)
		}
		opts.projectDir = wd
	}
	projectDir, err := filepath.Abs(opts.projectDir)
	if err != nil {
		return opts, fmt.Errorf("resolving project directory: %w", err)
	}
	opts.projectDir = projectDir

	opts.scriptRoot = absUnder(projectDir, opts.scriptRoot, filepath.Join("Content", "JavaScript"))
	opts.dependencyRoot = absUnder(projectDir, opts.dependencyRoot, filepath.Join("Content", "PuertsDependencies"))
	opts.manifestPath = absUnder(projectDir, opts.manifestPath, "components.yaml")
	opts.logFile = absUnder(projectDir, opts.logFile, "modresolve-mcp.log")
	return opts, nil
}

// absUnder returns value made absolute against base, or base/fallback
// when value is empty.
func absUnder(base, value, fallback string) string {
	if value == "" {
		value = fallback
	}
	if !filepath.IsAbs(value) {
		value = filepath.Join(base, value)
	}
	return filepath.Clean(value)
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "register" {
		if err := register.Run(register.ServerName(os.Args[0]), os.Args[2:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			if errors.Is(err, register.ErrUsage) {
				register.Usage(os.Stderr, filepath.Base(os.Args[0]))
			}
			os.Exit(1)
		}
		return
	}

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Never log to stdout: stdout carries the MCP stdio transport.
	logger := setupLogger(opts.logLevel, opts.logFile)
	logger.Info("starting modresolve-mcp",
		"project", opts.projectDir,
		"scripts", opts.scriptRoot,
		"dependencies", opts.dependencyRoot,
		"components", opts.manifestPath,
		"cacheSize", opts.cacheSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, logger); err != nil {
		logger.Error("modresolve-mcp stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	startTime := time.Now()

	registry, err := component.NewRegistry(opts.manifestPath, logger)
	if err != nil {
		return fmt.Errorf("loading components: %w", err)
	}

	cfg := resolver.Config{
		ScriptRoot:     filepath.ToSlash(opts.scriptRoot),
		DependencyRoot: filepath.ToSlash(opts.dependencyRoot),
		ScriptSubroot:  opts.scriptSubroot,
	}
	moduleResolver := resolver.New(cfg, resolver.OSFileSystem{}, logger)
	cache, err := resolvecache.New(moduleResolver, registry, opts.cacheSize)
	if err != nil {
		return err
	}

	ignoreMatcher := ignore.NewMatcher(ignore.MatcherOptions{
		ProjectDir:    opts.projectDir,
		ComponentDirs: componentBaseDirs(registry),
		ControlFiles: []string{
			opts.manifestPath,
			filepath.Join(opts.projectDir, ".gitignore"),
			filepath.Join(opts.projectDir, ignore.IgnoreFileName),
		},
		CustomPatterns:   opts.excludes,
		MaxFileSizeBytes: opts.maxFileSizeBytes,
	})

	modules := index.NewModuleIndex()
	sources, err := index.NewSourceIndex()
	if err != nil {
		return err
	}
	defer sources.Close()

	h := &host{
		cfg:      moduleResolver.Config(),
		registry: registry,
		cache:    cache,
		catalog:  newCatalog(modules, sources, ignoreMatcher, logger),
		matcher:  ignoreMatcher,
		logger:   logger,
	}

	roots := h.catalog.setRoots(catalogRoots(h.cfg, registry))
	count, size := h.catalog.performIndexing(ctx, roots)
	logger.Info("initial indexing complete",
		"roots", len(roots),
		"files", count,
		"totalSize", size,
		"duration", time.Since(startTime),
	)

	rootDirs := make([]string, 0, len(roots))
	for _, root := range roots {
		rootDirs = append(rootDirs, root.Dir)
	}
	fileWatcher, err := watcher.NewWatcher(rootDirs, ignoreMatcher, logger)
	if err != nil {
		logger.Warn("failed to start file watcher, continuing without live updates", "error", err)
	} else {
		for _, control := range []string{opts.manifestPath, filepath.Join(opts.projectDir, ".gitignore"), filepath.Join(opts.projectDir, ignore.IgnoreFileName)} {
			if err := fileWatcher.WatchFile(control); err != nil {
				logger.Warn("control file not watched", "path", control, "error", err)
			}
		}
		h.watcher = fileWatcher
		h.syncWatchedDirs()
		go fileWatcher.Start()
		go h.handleWatcherEvents(ctx, fileWatcher)
		defer fileWatcher.Close()
	}

	if opts.syncInterval > 0 {
		invalidate := func(added, removed []string) { cache.Invalidate(added, removed) }
		go runPeriodicSync(ctx, time.Duration(opts.syncInterval)*time.Second, h.catalog, invalidate, logger)
	}

	mcpServer := server.Setup(server.Handlers{
		Resolve: &tools.ResolveHandler{Cache: cache, Components: registry, Logger: logger},
		Load:    &tools.LoadHandler{Cache: cache, Modules: modules, Logger: logger},
		Files:   &tools.FilesHandler{Modules: modules, DefaultMaxResults: opts.maxResults, Logger: logger},
		Search:  &tools.SearchHandler{Sources: sources, DefaultMaxResults: opts.maxResults, Logger: logger},
		Components: &tools.ComponentsHandler{
			Registry: registry,
			OnChange: func() { h.componentsChanged(ctx) },
			Logger:   logger,
		},
		Status: &tools.StatusHandler{
			Modules:    modules,
			Sources:    sources,
			Cache:      cache,
			Registry:   registry,
			ProjectDir: opts.projectDir,
			StartTime:  startTime,
			Logger:     logger,
		},
		Reindex: &tools.ReindexHandler{DoReindex: h.reindex, Logger: logger},
	}, version)

	logger.Info("MCP server starting on stdio")
	if err := mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server: %w", err)
	}
	return nil
}

// setupLogger creates an slog.Logger writing to stderr or a file.
func setupLogger(level string, logFile string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	writer := os.Stderr
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v, falling back to stderr\n", logFile, err)
		} else {
			writer = f
		}
	}

	handler := slog.NewTextHandler(writer, &slog.HandlerOptions{Level: logLevel})
	return slog.New(handler)
}
