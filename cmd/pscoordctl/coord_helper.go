package main

import (
	"fmt"
	"os"
	"sync"

	"pscoord/internal/compilerfe"
	"pscoord/internal/config"
	"pscoord/internal/coordlog"
	"pscoord/internal/coordinator"
	"pscoord/internal/host"
	"pscoord/internal/typings"
)

var (
	coordOnce   sync.Once
	sharedCoord *coordinator.Coordinator
	sharedHost  *host.OSHost
	coordErr    error
)

// getCoordinator returns a shared Coordinator rooted at repoRoot, lazily
// initialized on first use. Within one pscoordctl process every caller
// shares the same instance; two separate process invocations do not, since
// nothing here persists across runs.
func getCoordinator(repoRoot string, log *coordlog.Logger) (*coordinator.Coordinator, error) {
	coordOnce.Do(func() {
		caseSensitive := host.ProbeCaseSensitivity(repoRoot)
		h, err := host.NewOSHost(caseSensitive)
		if err != nil {
			coordErr = fmt.Errorf("failed to start filesystem watcher: %w", err)
			return
		}
		sharedHost = h

		cfg, err := config.Load(repoRoot)
		if err != nil {
			coordErr = fmt.Errorf("failed to load config: %w", err)
			return
		}

		sharedCoord = coordinator.New(h, compilerfe.OSFileReader{}, cfg, log, typings.NoopInstaller{}, nil)
	})
	return sharedCoord, coordErr
}

// mustGetCoordinator returns the shared Coordinator or exits the process on
// failure.
func mustGetCoordinator(log *coordlog.Logger) *coordinator.Coordinator {
	c, err := getCoordinator(mustGetRepoRoot(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing coordinator: %v\n", err)
		os.Exit(1)
	}
	return c
}

// getRepoRoot returns the repository root: --root if given, else cwd.
func getRepoRoot() (string, error) {
	if repoRootFlag != "" {
		return repoRootFlag, nil
	}
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	root, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return root
}

// newLogger builds a coordlog.Logger from the --log-level/--log-format
// flags.
func newLogger() *coordlog.Logger {
	format := coordlog.HumanFormat
	if logFormatFlag == "json" {
		format = coordlog.JSONFormat
	}
	return coordlog.NewLogger(coordlog.Config{
		Format: format,
		Level:  coordlog.LogLevel(logLevelFlag),
	})
}
