package main

import (
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"seriesearch/internal/api"
	"seriesearch/internal/config"
	"seriesearch/internal/ratings"
	"seriesearch/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, server, debugLog string
	var userID int
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/seriesearch/config.yaml if not provided)")
	flag.StringVar(&server, "server", "", "Catalog server base URL (overrides config)")
	flag.IntVar(&userID, "user", 0, "User id for ratings and recommendations (overrides config; 0 = anonymous)")
	flag.StringVar(&debugLog, "debug-log", "", "Write debug logs to this file (the TUI owns the terminal)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath != "" {
		cfg, err = config.Load(cfgPath)
	} else {
		cfg, _, err = config.LoadDefault()
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if v := os.Getenv("SERIESEARCH_SERVER"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("SERIESEARCH_USER_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			cfg.User.ID = id
		}
	}
	if server != "" {
		cfg.Server.BaseURL = server
	}
	if userID != 0 {
		cfg.User.ID = userID
	}

	var logger *zerolog.Logger
	if debugLog != "" {
		f, err := os.OpenFile(debugLog, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("failed to open debug log: %v", err)
		}
		defer f.Close()
		l := zerolog.New(f).With().Timestamp().Logger()
		logger = &l
	}

	client := api.NewClient(api.Config{
		BaseURL: cfg.Server.BaseURL,
		Timeout: time.Duration(cfg.Server.TimeoutSecs) * time.Second,
		Logger:  logger,
	})
	store := ratings.NewStore(cfg.User.ID != 0)

	m := tui.New(client, store, tui.Options{
		UserID:        cfg.User.ID,
		UserName:      cfg.User.Name,
		TopN:          cfg.Search.TopN,
		Debounce:      time.Duration(cfg.Search.DebounceMs) * time.Millisecond,
		MinQueryLen:   cfg.Search.MinQueryLen,
		SynopsisLimit: cfg.Meta.SynopsisLimit,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
