// Command navbot serves the menus from configs/menu.example.yml over Telegram or the terminal.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/m3rciful/navmenu/core/bootstrap"
	"github.com/m3rciful/navmenu/core/cmd"
	coreconfig "github.com/m3rciful/navmenu/core/config"
	coredatabase "github.com/m3rciful/navmenu/core/database"
	"github.com/m3rciful/navmenu/core/state/redisstore"
	coretelegram "github.com/m3rciful/navmenu/core/telegram"
	"github.com/m3rciful/navmenu/core/telegram/navigation"
	"github.com/m3rciful/navmenu/core/telegram/router"
	"github.com/m3rciful/navmenu/core/telegram/ui"
	"github.com/m3rciful/navmenu/core/transport"
)

// AppConfig is the full configuration file: core settings inline plus backend sections.
type AppConfig struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Redis    redisstore.Config   `yaml:"redis"`
}

// CoreConfig implements cmd.ConfigCarrier.
func (c *AppConfig) CoreConfig() *coreconfig.Config { return &c.Config }

func loadConfig(path string) (cmd.ConfigCarrier, error) {
	var cfg AppConfig
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type app struct {
	cfg *AppConfig
	res *bootstrap.Result
}

func newApp(ctx context.Context, carrier cmd.ConfigCarrier) (cmd.App, error) {
	cfg, ok := carrier.(*AppConfig)
	if !ok {
		return nil, fmt.Errorf("navbot: unexpected config type %T", carrier)
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:    &cfg.Config,
		Database:  cfg.Database,
		Redis:     cfg.Redis,
		Functions: baseFunctions(cfg.Telegram.AdminID),
		Modules:   bootstrap.Modules{clicksModule(cfg.Redis.KeyPrefix)},
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, res: res}, nil
}

func (a *app) Processor() *transport.Processor { return a.res.Processor }

func (a *app) Close() error { return a.res.Close() }

func (a *app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := &a.cfg.Config
	fallbacks := ui.Fallbacks{}

	reg := coretelegram.NewRegistry()
	reg.SetCallbackNotFound(fallbacks.UnknownCallback())
	if err := navigation.New(a.res.Processor, navigation.Options{}).Register(reg); err != nil {
		return coretelegram.RunOptions{}, err
	}

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{AdminID: core.Telegram.AdminID})
	routes = append(routes, router.TextRoutes(reg, router.TextOptions{
		UnknownText:     fallbacks.UnknownText(),
		UnknownDocument: fallbacks.UnknownDocument(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{
		NotFound: fallbacks.UnknownCallback(),
	}))

	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
	}, nil
}

func main() {
	err := cmd.Run(cmd.Options{
		DefaultConfigPath: "configs/config.example.yml",
		LoadConfig:        loadConfig,
		Bootstrap:         newApp,
	})
	if err != nil {
		log.Fatal(err)
	}
}
