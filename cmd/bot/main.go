// cmd/bot/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"trading-journal-bot/internal/core/wizard"
	bot "trading-journal-bot/internal/delivery/telegram/app/bot"
	"trading-journal-bot/internal/delivery/web"
	"trading-journal-bot/internal/infrastructure/api/notion"
	"trading-journal-bot/internal/infrastructure/config"
	"trading-journal-bot/internal/infrastructure/persistence/factory"
	"trading-journal-bot/internal/infrastructure/persistence/postgres/database"
	"trading-journal-bot/internal/infrastructure/persistence/postgres/repository/submissions"
	"trading-journal-bot/internal/scheduler"
	"trading-journal-bot/pkg/logger"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Не удалось загрузить конфигурацию: %v", err)
	}

	if err := logger.InitGlobal(cfg.LogPath, cfg.LogLevel, cfg.Debug); err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.GetLogger().Close()

	printHeader("ЖУРНАЛ ТРЕЙДОВ — TELEGRAM БОТ")
	logger.GetLogger().Status([][2]string{
		{"Окружение", fmt.Sprintf("%s (v%s)", cfg.Environment, cfg.Version)},
		{"Хранилище сессий", cfg.Journal.StoreBackend},
		{"Лимит истории", fmt.Sprintf("%d", cfg.Journal.HistoryLimit)},
		{"Пауза перед оценкой", cfg.Journal.FetchDelay.String()},
	})

	// PostgreSQL нужен для архива сабмитов и/или хранилища сессий
	var db *sqlx.DB
	if cfg.Database.Enabled {
		db, err = database.Connect(cfg)
		if err != nil {
			log.Fatalf("PostgreSQL: %v", err)
		}
		defer db.Close()
	}

	store, err := factory.NewSessionStore(cfg, db)
	if err != nil {
		log.Fatalf("Хранилище сессий: %v", err)
	}

	notionClient := notion.NewClient(cfg)
	sched := scheduler.New()

	engine := wizard.NewEngine(store, notionClient, sched, wizard.Options{
		HistoryLimit: cfg.Journal.HistoryLimit,
		FetchDelay:   cfg.Journal.FetchDelay,
		AuthURL: func(identity string) string {
			return notion.AuthorizeURL(cfg.Notion.AuthorizeURL, cfg.Notion.ClientID, cfg.Notion.RedirectURI, identity)
		},
	})
	if db != nil {
		engine.SetArchive(submissions.NewRepository(db))
	}

	journalBot := bot.NewTradingJournalBot(cfg, engine)
	engine.SetNotifier(journalBot)

	if err := journalBot.StartPolling(); err != nil {
		log.Fatalf("Telegram polling: %v", err)
	}

	var webServer *web.Server
	if cfg.Web.Enabled {
		webServer = web.NewServer(cfg, store, notionClient)
		webServer.Start()
	}

	// Ждём сигнала остановки
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("Получен сигнал %s, останавливаемся", sig)

	journalBot.StopPolling()
	sched.Stop()
	if webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := webServer.Stop(ctx); err != nil {
			logger.Warn("Остановка веб-сервера: %v", err)
		}
	}

	logger.Info("Бот остановлен")
}

func printHeader(title string) {
	line := strings.Repeat("═", len([]rune(title))+4)
	fmt.Println(line)
	fmt.Printf("  %s\n", title)
	fmt.Println(line)
}
