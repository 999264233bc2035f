// Command cycle runs exactly one decision cycle and exits. Useful for cron
// environments and for inspecting decisions without the resident bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/pfl-dev/paperfolio/internal/config"
	"github.com/pfl-dev/paperfolio/internal/decision"
	"github.com/pfl-dev/paperfolio/internal/engine"
	"github.com/pfl-dev/paperfolio/internal/logger"
	"github.com/pfl-dev/paperfolio/internal/market"
	"github.com/pfl-dev/paperfolio/internal/news"
	"github.com/pfl-dev/paperfolio/internal/storage"
	"github.com/pfl-dev/paperfolio/internal/telegram"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/paperfolio.db", "path to SQLite database")
	dryRun := flag.Bool("dry-run", false, "decide without trading")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("LLM_API_KEY")
	}

	log := logger.New(cfg.Logging.Level)

	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "database error: %v\n", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	quotes := market.NewClient(cfg.QuoteTimeout(), log)
	newsClient := news.NewClient(cfg.NewsTimeout(), log)
	notifier := telegram.NewNotifier(cfg, log)

	var model decision.Model
	if m := decision.NewOpenAIModel(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLMTimeout(), log); m != nil {
		model = m
	}
	policy := decision.NewPolicy(model, log)

	eng := engine.New(cfg, repo, quotes, newsClient, policy, notifier, log)

	autoTrade := cfg.Trading.AutoTrade && !*dryRun
	result, err := eng.RunCycle(context.Background(), cfg.EnabledSymbols(), autoTrade)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cycle error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Cycle finished: %d decision(s), %d trade(s)\n\n", len(result.Decisions), len(result.Trades))
	for _, d := range result.Decisions {
		fmt.Printf("  %-6s %-4s conf=%d src=%s\n", d.Symbol, d.Action, d.Confidence, d.Source)
	}
	for _, t := range result.Trades {
		fmt.Printf("  TRADE %-6s %-4s %d @ %.2f %s\n", t.Symbol, t.Action, t.Shares, t.Price, t.Currency)
	}
}
