package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ditto-assistant/ai/internal/config"
	"github.com/ditto-assistant/ai/internal/eventbus"
	"github.com/ditto-assistant/ai/internal/provider"
	"github.com/ditto-assistant/ai/internal/server"
	"github.com/ditto-assistant/ai/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	llm := provider.NewOpenAIClient(cfg.Provider.APIKey)
	if cfg.Provider.APIBase != "" {
		llm.SetAPIBase(cfg.Provider.APIBase)
	}

	opts := server.Options{
		Model:       cfg.Provider.Model,
		Temperature: cfg.Provider.Temperature,
	}

	if cfg.RedisURL != "" {
		chatStore, err := store.NewChatStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to initialize chat store: %v", err)
		}
		defer chatStore.Close()
		opts.Store = chatStore
	}

	if cfg.NATSURL != "" {
		bus, err := eventbus.NewDistributedEventBus(cfg.NATSURL)
		if err != nil {
			log.Fatalf("Failed to initialize event bus: %v", err)
		}
		defer bus.Close()
		opts.Bus = bus
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(llm, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Chat server listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("Shutting down chat server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Chat server failed: %v", err)
	}
	log.Println("Chat server stopped")
}
