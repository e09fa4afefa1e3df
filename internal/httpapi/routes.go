package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JmLalande/JMockDraft/internal/registry"
	"github.com/JmLalande/JMockDraft/internal/ws"
)

func SetupRoutes(reg *registry.Registry, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(reg, log))
	r.Get("/rooms/{code}", GetRoomState(reg))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(reg, log.Named("ws")))
	return r
}

func roomCode(r *http.Request) string {
	return chi.URLParam(r, "code")
}
