package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/drillbot/internal/achievements"
	"github.com/example/drillbot/internal/config"
	"github.com/example/drillbot/internal/drills"
	"github.com/example/drillbot/internal/excel"
	"github.com/example/drillbot/internal/ledger"
	"github.com/example/drillbot/internal/notify"
	"github.com/example/drillbot/internal/practice"
	"github.com/example/drillbot/internal/scheduler"
	"github.com/example/drillbot/internal/spaced_repetition"
	"github.com/example/drillbot/internal/stats"
	"github.com/example/drillbot/pkg/models"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to TOML config file (default: look for config.toml in current dir)")
	printConfig := flag.Bool("print-config", false, "Print an example config file and exit")
	drillFile := flag.String("file", "", "Drill file (.xlsx or .csv), overrides the config")
	showStats := flag.Bool("stats", false, "Print progress statistics and exit")
	resetLedger := flag.Bool("reset", false, "Reset the whole retention ledger and exit")
	flag.Parse()

	if *printConfig {
		fmt.Print(config.ExampleConfig())
		os.Exit(0)
	}

	// Resolve config path: flag > env > default locations
	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		for _, candidate := range []string{"config.toml", "/etc/drillbot/config.toml"} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Failed to open ledger store: %v", err)
	}

	sm2 := buildSM2(cfg.SM2)

	if *drillFile != "" {
		cfg.Import.File = *drillFile
	}
	drillStore := drills.NewStore()
	if cfg.Import.File != "" {
		importer := excel.New(excel.ImportConfig{
			FilePath:       cfg.Import.File,
			CategoryColumn: cfg.Import.CategoryColumn,
			QuestionColumn: cfg.Import.QuestionColumn,
			AnswerColumn:   cfg.Import.AnswerColumn,
			SheetName:      cfg.Import.Sheet,
			StartRow:       cfg.Import.StartRow,
		})
		if err := drillStore.Reload(importer); err != nil {
			log.Fatalf("Failed to import drills: %v", err)
		}
		log.Printf("Imported %d drills from %s (%d rows skipped)",
			importer.LastResult.Loaded, cfg.Import.File, importer.LastResult.Skipped)
		for _, e := range importer.LastResult.Errors {
			log.Printf("Import warning: %s", e)
		}
	}

	led, err := ledger.New(store, sm2, drillStore)
	if err != nil {
		log.Fatalf("Failed to open ledger: %v", err)
	}
	defer led.Close()

	if *resetLedger {
		if err := led.Reset(); err != nil {
			log.Fatalf("Failed to reset ledger: %v", err)
		}
		log.Println("Ledger reset")
		return
	}

	if *showStats {
		printStats(stats.New(drillStore, led), led)
		return
	}

	if drillStore.Len() == 0 {
		log.Fatal("No drills loaded; set import.file in the config or pass -file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		cancel()
	}()

	if cfg.Reminders.Enabled {
		reminders := scheduler.New(buildNotifier(), drillStore, led)
		reminders.StartHour = cfg.Reminders.StartHour
		reminders.EndHour = cfg.Reminders.EndHour
		reminders.Start()
		defer reminders.Stop()
	}

	selector := spaced_repetition.NewSelector(sm2)
	source := filepath.Base(cfg.Import.File)
	session := practice.New(drillStore, led, selector, os.Stdin, os.Stdout, source)
	if err := session.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Session error: %v", err)
	}
}

// openStore builds the configured ledger backend.
func openStore(cfg *config.Config) (ledger.Store, error) {
	switch cfg.Store.Backend {
	case "", "json":
		return ledger.NewJSONStore(cfg.Store.Path)
	case "sqlite":
		return ledger.NewSQLStore("sqlite3", cfg.Store.Path)
	case "postgres":
		dsn := cfg.Store.DSN
		if dsn == "" {
			dsn = os.Getenv("DATABASE_URL")
		}
		return ledger.NewSQLStore("postgres", dsn)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildSM2 maps the config section onto the algorithm settings.
func buildSM2(c config.SM2Config) *spaced_repetition.SM2 {
	sm2 := spaced_repetition.NewSM2()
	if c.EaseFloor > 0 {
		sm2.EaseFloor = c.EaseFloor
	}
	if c.EaseCap > 0 {
		sm2.EaseCap = c.EaseCap
	}
	if c.InitialEase > 0 {
		sm2.InitialEase = c.InitialEase
	}
	if c.MaxIntervalDays > 0 {
		sm2.MaxIntervalDays = c.MaxIntervalDays
	}
	if c.NewDrillWeight > 0 {
		sm2.NewDrillWeight = c.NewDrillWeight
	}
	return sm2
}

// buildNotifier returns a Telegram notifier when credentials are set,
// otherwise a log notifier.
func buildNotifier() scheduler.Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatStr := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatStr == "" {
		return notify.LogNotifier{}
	}
	chatID, err := strconv.ParseInt(chatStr, 10, 64)
	if err != nil {
		log.Printf("Invalid TELEGRAM_CHAT_ID %q, falling back to log reminders", chatStr)
		return notify.LogNotifier{}
	}
	notifier, err := notify.NewTelegramNotifier(token, chatID)
	if err != nil {
		log.Printf("Failed to create Telegram notifier (%v), falling back to log reminders", err)
		return notify.LogNotifier{}
	}
	return notifier
}

// printStats writes a progress report to stdout.
func printStats(agg *stats.Aggregator, led *ledger.Ledger) {
	gs := agg.GlobalStats()
	fmt.Printf("Drills: %d total, %d seen, accuracy %.1f%%\n",
		gs.TotalDrills, gs.SeenCount, gs.Accuracy*100)

	for _, cs := range agg.AllCategoryStats() {
		fmt.Printf("  %-20s %d drills, %d seen, accuracy %.1f%% (easy %d / medium %d / hard %d / new %d)\n",
			cs.Category, cs.TotalDrills, cs.SeenCount, cs.Accuracy*100,
			cs.Breakdown[models.Easy], cs.Breakdown[models.Medium],
			cs.Breakdown[models.Hard], cs.Breakdown[models.New])
	}

	if sources := agg.AllSourceStats(); len(sources) > 0 {
		fmt.Println("\nSources:")
		for _, ss := range sources {
			fmt.Printf("  %-20s %d sessions, %d/%d (%.1f%%), last practiced %s\n",
				ss.Source, ss.Sessions, ss.Correct, ss.Total, ss.Accuracy*100,
				ss.LastPracticed.Format("2006-01-02"))
		}
	}

	if weak := agg.WeakCategories(5); len(weak) > 0 {
		fmt.Println("\nWeakest categories:")
		for _, w := range weak {
			fmt.Printf("  %-20s %.1f%% over %d attempts\n", w.Category, w.Accuracy*100, w.Attempts)
		}
	}

	fmt.Println("\nLast 30 days:")
	for p := range agg.ProgressData(time.Now(), 30) {
		fmt.Printf("  %s  %d/%d (%.1f%%)\n", p.Date, p.Correct, p.Total, p.Accuracy*100)
	}

	st := led.Stats()
	fmt.Printf("\nStreaks: current %d, best %d, days %d\n",
		st.CurrentStreak, st.BestStreak, st.DaysStreak)

	unlocks := led.Unlocks()
	if len(unlocks) > 0 {
		fmt.Println("\nAchievements:")
		for _, a := range achievements.Catalog {
			if u, ok := unlocks[a.ID]; ok {
				fmt.Printf("  %s %s: %s (%s)\n", a.Icon, a.Name, a.Desc, u.UnlockedAt.Format("2006-01-02"))
			}
		}
	}
}
