// internal/delivery/web/server.go
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"trading-journal-bot/internal/core/domain/sessions"
	"trading-journal-bot/internal/infrastructure/api/notion"
	"trading-journal-bot/internal/infrastructure/config"
	"trading-journal-bot/pkg/logger"
)

// Server - веб-сервер OAuth callback. Единственная задача - принять
// код авторизации Notion и привязать токен к сессии пользователя,
// переданного в state.
type Server struct {
	config *config.Config
	store  sessions.Store
	notion *notion.Client
	server *http.Server
}

// NewServer создает веб-сервер
func NewServer(cfg *config.Config, store sessions.Store, client *notion.Client) *Server {
	s := &Server{
		config: cfg,
		store:  store,
		notion: client,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Web.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start запускает сервер в фоновой горутине
func (s *Server) Start() {
	go func() {
		logger.Info("✅ Веб-сервер запущен на %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Веб-сервер: %v", err)
		}
	}()
}

// Stop останавливает сервер
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Бот працює! Версія %s", s.config.Version)
}

// handleCallback принимает OAuth redirect от Notion
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	identity := r.URL.Query().Get("state")
	if code == "" || identity == "" {
		http.Error(w, "Помилка авторизації.", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	token, err := s.notion.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Обмен OAuth кода для %s: %v", identity, err)
		http.Error(w, "Помилка авторизації.", http.StatusBadGateway)
		return
	}

	session, err := s.store.Get(ctx, identity)
	if err != nil {
		logger.Error("Чтение сессии %s: %v", identity, err)
		http.Error(w, "Помилка авторизації.", http.StatusInternalServerError)
		return
	}
	if session == nil {
		session = sessions.NewSession(identity)
	}
	session.NotionToken = token

	// Сразу ищем базу журнала; неудача не фатальна - мастер повторит
	// поиск по кнопке
	if rootID, dbID, derr := s.notion.Discover(ctx, token); derr == nil {
		session.RootPageID = rootID
		session.DatabaseID = dbID
	} else {
		logger.Warn("Поиск базы журнала для %s: %v", identity, derr)
	}

	session.UpdatedAt = time.Now().UTC()
	if err := s.store.Put(ctx, session); err != nil {
		logger.Error("Сохранение сессии %s: %v", identity, err)
		http.Error(w, "Помилка авторизації.", http.StatusInternalServerError)
		return
	}

	logger.Info("Notion привязан для %s", identity)
	fmt.Fprint(w, "Авторизація успішна! Повернись у Telegram і напиши /start.")
}
