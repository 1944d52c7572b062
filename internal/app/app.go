package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"civiclens/internal/analysis"
	"civiclens/internal/api"
	"civiclens/internal/cache"
	"civiclens/internal/config"
	"civiclens/internal/llm"
	"civiclens/internal/taxonomy"
)

type App struct {
	Config   config.Config
	Taxonomy *taxonomy.Taxonomy
	Gateway  *llm.Gateway
	Cache    *cache.Cache
	Analyzer *analysis.Analyzer
	API      *api.Handler
}

func New(cfg config.Config) (*App, error) {
	tax, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	provider := selectProvider(cfg)
	gateway, err := llm.NewGateway(provider, llm.GatewayConfig{
		Timeout:        cfg.LLM.Timeout,
		MaxAttempts:    cfg.LLM.MaxAttempts,
		InitialBackoff: cfg.LLM.InitialBackoff,
		MaxBackoff:     cfg.LLM.MaxBackoff,
		Multiplier:     cfg.LLM.Multiplier,
		Jitter:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("build gateway: %w", err)
	}

	var resultCache *cache.Cache
	if cfg.Redis.URL != "" {
		resultCache, err = cache.New(cfg.Redis.URL, cfg.Cache.TTL)
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
	}

	analyzer := analysis.New(tax, gateway, resultCache, cfg.Complaint.MaxChars)
	handler := api.NewHandler(cfg, analyzer, tax)

	log.Printf("civiclens provider=%s model=%s taxonomy=%s cache=%v",
		provider.Name(), provider.Model(), tax.Version, resultCache != nil)

	return &App{
		Config:   cfg,
		Taxonomy: tax,
		Gateway:  gateway,
		Cache:    resultCache,
		Analyzer: analyzer,
		API:      handler,
	}, nil
}

func selectProvider(cfg config.Config) llm.Provider {
	switch cfg.LLM.Provider {
	case "gemini":
		return llm.NewGemini(cfg.LLM.GeminiKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	case "openai":
		return llm.NewOpenAI(cfg.LLM.OpenAIKey, cfg.LLM.Model, cfg.LLM.BaseURL)
	default:
		return llm.NewNoop()
	}
}

func (a *App) Close() error {
	return a.Cache.Close()
}

func (a *App) Serve(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := a.Cache.Ping(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	a.API.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
