package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/navmenu/core/config"
	coredatabase "github.com/m3rciful/navmenu/core/database"
	"github.com/m3rciful/navmenu/core/definition"
	"github.com/m3rciful/navmenu/core/logger"
	"github.com/m3rciful/navmenu/core/navigator"
	"github.com/m3rciful/navmenu/core/state"
	"github.com/m3rciful/navmenu/core/state/pgstore"
	"github.com/m3rciful/navmenu/core/state/redisstore"
	"github.com/m3rciful/navmenu/core/transport"
)

// Options control the generic bootstrap pipeline shared between bots.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config
	Redis    redisstore.Config

	// Functions are the callbacks the menu definition may reference.
	Functions definition.Functions
	Modules   Modules

	LoggerInit   func(*coreconfig.Config) error
	Connect      func(context.Context, coredatabase.Config) (*sqlx.DB, error)
	Migrate      func(context.Context, coredatabase.Config) error
	ConnectRedis func(context.Context, redisstore.Config) (*redisstore.Client, error)
	LoadMenus    func(path string, fns definition.Functions) (*definition.Definition, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result struct {
	DB    *sqlx.DB
	Redis *redisstore.Client

	Definition *definition.Definition
	Store      state.Store
	Navigator  *navigator.Manager
	Processor  *transport.Processor
}

// Close releases backend connections opened by Run.
func (r *Result) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.DB != nil {
		errs = append(errs, r.DB.Close())
	}
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	return errors.Join(errs...)
}

// Run initializes the logger, opens the configured state backend, loads the menu
// definition and builds the navigator and update processor on top of them.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	cfg := opts.Config

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	res := &Result{}
	fail := func(err error) (*Result, error) {
		_ = res.Close()
		return nil, err
	}

	var err error
	switch cfg.Store.Backend {
	case coreconfig.BackendPostgres:
		if res.DB, err = openDatabase(ctx, opts); err != nil {
			return nil, err
		}
	case coreconfig.BackendRedis:
		connect := opts.ConnectRedis
		if connect == nil {
			connect = redisstore.NewClient
		}
		if res.Redis, err = connect(ctx, opts.Redis); err != nil {
			return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
		}
	}

	fns, err := opts.Modules.Functions(ctx, Infra{DB: res.DB, Redis: res.Redis}, opts.Functions)
	if err != nil {
		return fail(err)
	}

	load := opts.LoadMenus
	if load == nil {
		load = definition.LoadFile
	}
	def, err := load(cfg.Menu.Path, fns)
	if err != nil {
		return fail(fmt.Errorf("bootstrap: menu definition failed: %w", err))
	}
	if cfg.Menu.DefaultState != "" {
		def.DefaultState = cfg.Menu.DefaultState
	}
	res.Definition = def

	res.Store = state.WithLockTimeout(buildStore(opts, res), cfg.Store.LockTimeout())

	var navOpts []navigator.Option
	if cfg.Menu.DisableAliases {
		navOpts = append(navOpts, navigator.WithoutAliases())
	}
	if res.Navigator, err = navigator.New(def.Menus, res.Store, navOpts...); err != nil {
		return fail(fmt.Errorf("bootstrap: navigator: %w", err))
	}
	res.Processor = transport.New(res.Navigator, transport.Options{
		InvalidText: cfg.Menu.InvalidText,
		ErrorText:   cfg.Menu.ErrorText,
		WelcomeText: cfg.Menu.WelcomeText,
		SuggestText: cfg.Menu.SuggestText,
		Suggestions: cfg.Menu.Suggestions,
	})

	logger.Info(ctx, "app", "bootstrap.complete",
		slog.String("backend", cfg.Store.Backend),
		slog.String("default_state", def.DefaultState),
		slog.Int("count", def.Menus.Len()),
	)
	return res, nil
}

func openDatabase(ctx context.Context, opts Options) (*sqlx.DB, error) {
	dbCfg := opts.Database
	dbCfg.Normalize()

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	db, err := connect(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if dbCfg.SkipMigrations {
		return db, nil
	}

	migrate := opts.Migrate
	if migrate == nil {
		migrate = coredatabase.RunMigrations
	}
	if err := migrate(ctx, dbCfg); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}
	return db, nil
}

func buildStore(opts Options, res *Result) state.Store {
	defaultState := res.Definition.DefaultState
	switch {
	case res.DB != nil:
		return pgstore.New(res.DB, defaultState)
	case res.Redis != nil:
		redisCfg := opts.Redis
		redisCfg.Normalize()
		return redisstore.New(res.Redis, defaultState, redisCfg)
	default:
		return state.NewMemoryStore(defaultState)
	}
}
