package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fieldprint/fieldprint/export"
	"github.com/fieldprint/fieldprint/infer"
	"github.com/fieldprint/fieldprint/integrations/catalog"
	"github.com/fieldprint/fieldprint/sink"
)

func main() {
	_ = godotenv.Load()
	addr := getEnv("FIELDPRINT_ADDR", ":8098")
	level := getEnv("FIELDPRINT_LOG", "info")
	catalogURL := getEnv("FIELDPRINT_CATALOG", "")
	apikey := getEnv("FIELDPRINT_APIKEY", "")

	err := setupLogging(level)
	if err != nil {
		slog.Error("could not init logging", "err", err)
		return
	}

	cfg, err := configFromEnv()
	if err != nil {
		slog.Error("bad config", "err", err)
		return
	}

	s, err := sink.NewServer(cfg)
	if err != nil {
		slog.Error("could not init sink", "err", err)
		return
	}

	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	term := make(chan os.Signal, 1)
	signal.Notify(term, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "err", err)
			term <- syscall.SIGTERM
		}
	}()

	<-term

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown", "err", err)
	}

	if catalogURL != "" {
		publishFinal(ctx, s, apikey, catalogURL)
	}
}

// publishFinal pushes the last schema snapshot to the catalog on the way
// out, so a stopped sink leaves its result somewhere durable.
func publishFinal(ctx context.Context, s *sink.Server, apikey, server string) {
	client, err := catalog.NewClient(apikey, server)
	if err != nil {
		slog.Error("could not init catalog client", "err", err)
		return
	}

	schema, stats, err := s.Final()
	if err != nil {
		slog.Error("could not finalize", "err", err)
		return
	}

	update := catalog.SchemaUpdate{
		SchemaID: time.Now().UTC().Format(time.RFC3339),
		Schema:   schema,
		Document: export.Schema(schema),
		Stats:    stats,
	}
	if err := client.Publish(ctx, update); err != nil {
		slog.Error("could not publish schema", "err", err)
		return
	}
	slog.Info("published schema", "recordCount", schema.RecordCount, "fields", len(schema.Fields))
}

func configFromEnv() (infer.Config, error) {
	cfg := infer.DefaultConfig()
	var err error

	if v := getEnv("FIELDPRINT_SAMPLE", ""); v != "" {
		cfg.SampleSize, err = strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
	}
	if v := getEnv("FIELDPRINT_MIN_FREQ", ""); v != "" {
		cfg.MinFieldFrequency, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, err
		}
	}
	if v := getEnv("FIELDPRINT_MAX_DEPTH", ""); v != "" {
		cfg.MaxDepth, err = strconv.Atoi(v)
		if err != nil {
			return cfg, err
		}
	}
	if v := getEnv("FIELDPRINT_FORMAT_THRESHOLD", ""); v != "" {
		cfg.FormatMatchThreshold, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func setupLogging(level string) error {
	var logLevel slog.Level
	err := logLevel.UnmarshalText([]byte(level))
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(h))
	return err
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
