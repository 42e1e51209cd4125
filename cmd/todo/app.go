package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MihkelHunter/mkToDo/internal/config"
	"github.com/MihkelHunter/mkToDo/internal/coordinator"
	"github.com/MihkelHunter/mkToDo/internal/logger"
	"github.com/MihkelHunter/mkToDo/internal/store"
	"github.com/MihkelHunter/mkToDo/internal/todo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// app is one CLI session: a single coordinator built per invocation and
// passed to every command.
type app struct {
	cfg   *config.Config
	log   *zap.Logger
	coord *coordinator.Coordinator
	close func() error

	correlationID uuid.UUID
	startedAt     time.Time
}

type globalFlags struct {
	configPath string
	dataPath   string
	backend    string
	verbose    bool
}

func (a *app) open(flags globalFlags) error {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if flags.dataPath != "" {
		cfg.Storage.Path = flags.dataPath
	}
	if flags.backend != "" {
		cfg.Storage.Backend = flags.backend
	}
	if flags.verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}

	repo, closeRepo, err := openRepository(cfg.Storage, log)
	if err != nil {
		return err
	}
	st := todo.NewStore(repo, todo.WithLogger(log))
	if err := st.Load(); err != nil {
		_ = closeRepo()
		return err
	}

	coord := coordinator.New(st, coordinator.WithLogger(log))
	coord.AddListener(func(ev coordinator.Event) {
		log.Debug("tasks changed", zap.String("event", string(ev)))
	})

	a.cfg = cfg
	a.log = log
	a.coord = coord
	a.close = closeRepo
	return nil
}

func openRepository(cfg config.StorageConfig, log *zap.Logger) (todo.Repository, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemory(), noop, nil
	case config.BackendSQLite:
		repo, err := store.NewSQLite(cfg.Path, store.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		opts := []store.Option{store.WithLogger(log)}
		if cfg.Format != "" {
			f, err := store.ParseFormat(cfg.Format)
			if err != nil {
				return nil, nil, err
			}
			opts = append(opts, store.WithFormat(f))
		}
		repo, err := store.NewFile(cfg.Path, opts...)
		if err != nil {
			return nil, nil, err
		}
		log.Debug("using task file",
			zap.String("path", repo.Path()),
			zap.String("format", string(repo.Format())),
		)
		return repo, noop, nil
	}
}

// parseDue understands YYYY-MM-DD, "today", "tomorrow" and "+N" (days from today).
func parseDue(s string, today todo.Date) (*todo.Date, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch {
	case s == "":
		return nil, nil
	case s == "today":
		return today.Ptr(), nil
	case s == "tomorrow":
		return today.AddDays(1).Ptr(), nil
	case strings.HasPrefix(s, "+"):
		n, err := strconv.Atoi(s[1:])
		if err != nil {
			return nil, fmt.Errorf("invalid relative date %q, use +N", s)
		}
		return today.AddDays(n).Ptr(), nil
	}
	d, err := todo.ParseDate(s)
	if err != nil {
		return nil, fmt.Errorf("invalid date, use YYYY-MM-DD: %w", err)
	}
	return &d, nil
}
