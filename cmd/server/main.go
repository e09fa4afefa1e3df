package main

import (
	"context"
	"net/http"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/JmLalande/JMockDraft/internal/config"
	"github.com/JmLalande/JMockDraft/internal/httpapi"
	"github.com/JmLalande/JMockDraft/internal/registry"
)

func main() {
	cfg := config.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()
	reg := registry.New(ctx, registry.Options{
		CodeLen:    cfg.CodeLen,
		LeaveGrace: cfg.LeaveGrace,
		DropGrace:  cfg.DropGrace,
	}, clockwork.NewRealClock(), log)

	handler := httpapi.SetupRoutes(reg, log)

	log.Info("listening", zap.String("addr", cfg.Addr))
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
