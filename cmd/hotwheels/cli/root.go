package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Lukazavrr/hotwheels-bot/internal/bot"
	"github.com/Lukazavrr/hotwheels-bot/internal/config"
	"github.com/Lukazavrr/hotwheels-bot/internal/flow"
	"github.com/Lukazavrr/hotwheels-bot/internal/images"
	"github.com/Lukazavrr/hotwheels-bot/internal/observe"
	"github.com/Lukazavrr/hotwheels-bot/internal/render"
	"github.com/Lukazavrr/hotwheels-bot/internal/session"
	"github.com/Lukazavrr/hotwheels-bot/internal/store"
	"github.com/Lukazavrr/hotwheels-bot/internal/telegram"
)

var (
	configPath string
	verbose    bool
	jsonLogs   bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "hotwheels",
	Short: "Hot Wheels shop bot",
	Long: `A Telegram storefront for die-cast models: category collages, carts
and a checkout handshake, maintained by a single shop operator.`,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the bot",
	Run: func(cmd *cobra.Command, args []string) {
		runBot()
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the config file")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	runCmd.Flags().BoolVar(&jsonLogs, "json", false, "JSON log output")
}

func runBot() {
	var obs *observe.Observer
	if jsonLogs {
		obs = observe.NewJSON(os.Stdout, verbose)
	} else {
		obs = observe.New(os.Stdout, verbose)
	}
	defer obs.Close()

	cfg, err := config.Load(configPath)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		obs.Log().Fatal().Err(err).Msg("Invalid config")
	}

	storeLayer, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to init store")
	}
	defer storeLayer.Close()

	pool := images.NewPool(cfg.DecodeWorkers, cfg.ThumbnailSide)
	defer pool.Close()

	fetcher, err := images.NewFetcher(pool, cfg.ImageCacheSize, cfg.FetchTimeout, obs)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to init image fetcher")
	}

	gateway, err := telegram.New(cfg.Token, obs)
	if err != nil {
		obs.Log().Fatal().Err(err).Msg("Failed to connect to telegram")
	}

	events := render.NewEventBus()
	events.SubscribeAll(func(e render.Event) {
		obs.Log().Debug().
			Str("event", string(e.Type)).
			Str("category", e.Category).
			Msg("render event")
	})

	pipeline := render.NewPipeline(fetcher, pool, gateway, events, obs, cfg.RenderTimeout)
	sessions := session.NewManager(cfg.SessionCacheSize, cfg.SessionTTL)

	handlers := bot.New(bot.Deps{
		Store:      storeLayer,
		Sessions:   sessions,
		Pipeline:   pipeline,
		Flows:      flow.NewEngine(storeLayer, obs),
		Transport:  gateway,
		Observer:   obs,
		OperatorID: cfg.OperatorID,
		ContactTag: cfg.ContactTag,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gateway.Start(ctx, handlers)
	obs.Log().Info().Msg("Shutting down")
}
