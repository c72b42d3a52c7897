package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"giveaway-grid/config"
	"giveaway-grid/console"
	"giveaway-grid/fetcher"
	"giveaway-grid/logging"
	"giveaway-grid/results"
	"giveaway-grid/telegram"
	"giveaway-grid/web"
)

func main() {
	// Parse command line arguments
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	pages := flag.Int("pages", 0, "Fetch this many pages once, print a table and exit")
	showImages := flag.Bool("images", false, "Include the image URL column in CLI mode")
	runBot := flag.Bool("telegram", false, "Run as a Telegram bot instead of the web server")
	flag.Parse()

	cfg, err := config.Load(*configPath, logging.New(logging.Options{}))
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	slog.SetDefault(logger)

	apiFetcher, err := fetcher.NewAPIFetcher(cfg.API.Endpoint, cfg.API.BaseURL, cfg.API.RequestTimeout)
	if err != nil {
		log.Fatalf("Invalid scraper endpoint: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *pages != 0:
		if err := runCLIMode(ctx, cfg, apiFetcher, *pages, *showImages, logger); err != nil {
			stop()
			os.Exit(1)
		}
	case *runBot:
		runTelegramBot(ctx, cfg, apiFetcher, logger)
	default:
		runWebServer(ctx, cfg, apiFetcher, logger)
	}
}

// runCLIMode fetches once and prints the results as a table
func runCLIMode(ctx context.Context, cfg *config.Config, f fetcher.Fetcher, pages int, showImages bool, logger *slog.Logger) error {
	table := console.NewTable(os.Stdout, showImages)
	controller := results.NewController(f, table,
		results.WithMaxPages(cfg.Pages.Max),
		results.WithTimeout(cfg.API.RequestTimeout),
		results.WithLogger(logger),
	)

	if err := controller.Submit(ctx, strconv.Itoa(pages)); err != nil {
		return err
	}
	controller.Wait()

	return controller.Err()
}

// runTelegramBot serves results to Telegram chats until interrupted
func runTelegramBot(ctx context.Context, cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) {
	bot, err := telegram.NewBot(cfg, f, logger.With("component", "telegram"))
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v\n", err)
	}

	if err := bot.Run(ctx); err != nil {
		log.Fatalf("Telegram bot stopped: %v\n", err)
	}
}

// runWebServer serves the results page until interrupted
func runWebServer(ctx context.Context, cfg *config.Config, f fetcher.Fetcher, logger *slog.Logger) {
	server := web.NewServer(web.Options{
		Fetcher:        f,
		MaxPages:       cfg.Pages.Max,
		RequestTimeout: cfg.API.RequestTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger.With("component", "web"),
	})

	if err := server.Run(ctx, cfg.Server.Addr); err != nil {
		log.Fatalf("Server failed: %v\n", err)
	}
}
