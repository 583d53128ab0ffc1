package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc/status"

	"github.com/Kinsa/parking-attendant/internal/config"
	dbpkg "github.com/Kinsa/parking-attendant/internal/db"
	"github.com/Kinsa/parking-attendant/internal/grpcapi"
	"github.com/Kinsa/parking-attendant/internal/logging"
	"github.com/Kinsa/parking-attendant/internal/parking/service"
	"github.com/Kinsa/parking-attendant/internal/parking/store/sqlite"
)

type commandContext struct {
	configFlag *string
	dbFlag     *string

	configOnce sync.Once
	config     config.Config
	configErr  error
}

func newCommandContext(configFlag, dbFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		dbFlag:     dbFlag,
	}
}

func (c *commandContext) ensureConfig() (config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.dbFlag != nil && strings.TrimSpace(*c.dbFlag) != "" {
			cfg.DBPath = strings.TrimSpace(*c.dbFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) location() *time.Location {
	cfg, err := c.ensureConfig()
	if err != nil {
		return time.Local
	}
	loc, err := cfg.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// app is the local dependency graph: database, stores and services.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	loc     *time.Location
	db      *sql.DB
	writer  *dbpkg.Worker
	store   *sqlite.EntryStore
	lookup  *service.LookupService
	entries *service.EntryService
}

// openApp opens the database named by the configuration and wires the
// services. Logs go to logOut.
func (c *commandContext) openApp(ctx context.Context, logOut io.Writer) (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	conn, err := dbpkg.Open(ctx, dbpkg.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	writer := dbpkg.NewWorker(conn)
	st := sqlite.NewEntryStore(conn, writer)

	opts := service.Options{
		Logger:               logger,
		Location:             loc,
		DefaultWindowMinutes: cfg.DefaultWindowMinutes,
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		loc:     loc,
		db:      conn,
		writer:  writer,
		store:   st,
		lookup:  service.NewLookupService(st, opts),
		entries: service.NewEntryService(st, opts),
	}, nil
}

func (a *app) Close() error {
	a.writer.Close()
	return a.db.Close()
}

func (c *commandContext) withApp(ctx context.Context, logOut io.Writer, fn func(*app) error) error {
	a, err := c.openApp(ctx, logOut)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// withRemote runs fn against the gRPC server at addr. Status errors are
// reduced to their message.
func withRemote(addr string, fn func(*grpcapi.Client) error) error {
	conn, err := grpcapi.Dial(addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = fn(grpcapi.NewClient(conn))
	if err == nil {
		return nil
	}
	if s, ok := status.FromError(err); ok {
		return errors.New(s.Message())
	}
	return err
}
