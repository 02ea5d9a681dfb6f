package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/navmenu/core/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	migrationsDir  = "migrations"
	migrateWaitFor = 30 * time.Second
)

// migrationSet is the sorted list of up migration file names in a directory.
type migrationSet []string

func loadMigrationSet(fsys fs.FS, dir string) migrationSet {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var set migrationSet
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			set = append(set, e.Name())
		}
	}
	sort.Strings(set)
	return set
}

// version is the numeric prefix of a migration file name, 0 when absent.
func version(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// between returns the files with from < version <= to.
func (s migrationSet) between(from, to uint64) []string {
	var out []string
	for _, f := range s {
		if v := version(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}

// RunMigrations waits for the database and applies every embedded up migration.
func RunMigrations(ctx context.Context, cfg Config) error {
	cfg.Normalize()
	dsn := cfg.ConnString()
	if err := WaitForPostgres(ctx, dsn, migrateWaitFor); err != nil {
		logger.Error(ctx, "db.migrate", "wait", slog.String("db", cfg.Target()), slog.String("err", err.Error()))
		return fmt.Errorf("database not ready: %w", err)
	}

	set := loadMigrationSet(migrationsFS, migrationsDir)
	preview, truncated := logger.SummarizeStrings(set, 6)
	logger.Debug(ctx, "db.migrate", "resolve",
		slog.String("path", "embed:"+migrationsDir),
		slog.Int("count", len(set)),
		slog.String("files", preview),
		slog.Bool("truncated", truncated),
	)

	src, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		logger.Error(ctx, "db.migrate", "init", slog.String("err", err.Error()))
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	from, _, _ := m.Version()
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error(ctx, "db.migrate", "apply",
			slog.String("status", "fail"),
			slog.Duration("duration", time.Since(start)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("apply migrations: %w", err)
	}
	to, _, _ := m.Version()

	logger.Info(ctx, "db.migrate", "summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Int("count", len(set.between(uint64(from), uint64(to)))),
		slog.Duration("duration", time.Since(start)),
	)
	return nil
}
