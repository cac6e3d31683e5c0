package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brainduel/quiz-backend/internal/hub"
	"github.com/brainduel/quiz-backend/internal/questions"
	"github.com/brainduel/quiz-backend/internal/uploads"
	"github.com/brainduel/quiz-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, src questions.Source, store *uploads.Store, serverURL string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, src, log))
	r.Post("/upload", uploads.Upload(store, serverURL))
	r.Delete("/upload/all", uploads.DeleteAll(store))
	r.Handle("/uploads/*", uploads.Serve(store))
	return r
}
