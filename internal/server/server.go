// Package server assembles the HTTP surface: the chat proxy, the tool
// dispatch API, pipeline triggers and the operator event socket.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/adamj-ops/liferx-sub001/internal/brain"
	"github.com/adamj-ops/liferx-sub001/internal/campaigns"
	"github.com/adamj-ops/liferx-sub001/internal/config"
	"github.com/adamj-ops/liferx-sub001/internal/content"
	"github.com/adamj-ops/liferx-sub001/internal/contract"
	"github.com/adamj-ops/liferx-sub001/internal/db"
	"github.com/adamj-ops/liferx-sub001/internal/enrich"
	"github.com/adamj-ops/liferx-sub001/internal/events"
	"github.com/adamj-ops/liferx-sub001/internal/guests"
	"github.com/adamj-ops/liferx-sub001/internal/hub"
	"github.com/adamj-ops/liferx-sub001/internal/interviews"
	"github.com/adamj-ops/liferx-sub001/internal/llm"
	"github.com/adamj-ops/liferx-sub001/internal/outreach"
	"github.com/adamj-ops/liferx-sub001/internal/pipeline"
	"github.com/adamj-ops/liferx-sub001/internal/repurpose"
	"github.com/adamj-ops/liferx-sub001/internal/sessions"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// Server owns the router and the wired feature stack.
type Server struct {
	cfg        config.Config
	db         *db.DB
	router     chi.Router
	httpServer *http.Server

	gateway     *tools.Gateway
	index       *brain.Index
	engine      *outreach.Engine
	broadcaster *events.Broadcaster
}

// New wires every store, pipeline and route off the given database. The
// brain search index is rebuilt from persisted items before serving.
func New(cfg config.Config, database *db.DB) (*Server, error) {
	sessStore := sessions.NewStore(database)
	guestStore := guests.NewStore(database)
	ivStore := interviews.NewStore(database)
	contentStore := content.NewStore(database)
	outreachStore := outreach.NewStore(database)
	brainStore := brain.NewStore(database)
	renderer := content.NewRenderer()

	index, err := brain.NewIndex()
	if err != nil {
		return nil, fmt.Errorf("creating brain index: %w", err)
	}
	items, err := brainStore.ListAll(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loading brain items: %w", err)
	}
	if err := index.Load(context.Background(), items); err != nil {
		return nil, fmt.Errorf("indexing brain items: %w", err)
	}
	log.Info().Int("items", len(items)).Msg("brain index loaded")

	provider := llm.New(cfg.LLM.APIKey, cfg.LLM.Model)

	registry := tools.NewRegistry()
	tools.RegisterAll(registry, tools.Deps{
		Guests:     guestStore,
		Interviews: ivStore,
		Content:    contentStore,
		Renderer:   renderer,
		Outreach:   outreachStore,
		Brain:      brainStore,
		BrainIndex: index,
		LLM:        provider,
	})
	gateway := tools.NewGateway(registry, cfg.DefaultOrgID)

	broadcaster := events.NewBroadcaster()
	gateway.SetObserver(broadcaster)

	runner := pipeline.NewRunner(gateway)
	runner.SetObserver(broadcaster)
	engine := outreach.NewEngine(guestStore, ivStore,
		cfg.Pipelines.ScoreThreshold, cfg.Pipelines.PresenceThreshold)

	s := &Server{
		cfg:         cfg,
		db:          database,
		gateway:     gateway,
		index:       index,
		engine:      engine,
		broadcaster: broadcaster,
	}

	auth := tools.AuthConfig{
		InternalSecret: cfg.InternalSecret,
		DevMode:        cfg.DevMode(),
	}
	proxy := hub.NewProxy(cfg.HubURL, cfg.InternalSecret, cfg.DefaultOrgID, sessStore)
	proxy.SetViolationNotifier(broadcaster.ContractViolation)

	s.router = s.buildRouter()
	hub.RegisterRoutes(s.router, proxy)
	tools.RegisterRoutes(s.router, gateway, auth)
	enrich.RegisterRoutes(s.router, enrich.New(runner), auth)
	repurpose.RegisterRoutes(s.router, repurpose.New(runner, ivStore, cfg.Pipelines.MaxQuoteCards), auth)
	campaigns.RegisterRoutes(s.router, campaigns.NewPipeline(runner, engine), engine,
		cfg.DefaultOrgID, cfg.Pipelines.DiscoveryLimit, auth)
	s.router.With(tools.RequireSecret(auth)).Get("/api/events", broadcaster.Handler)

	return s, nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Internal-Secret", "X-Operator-Mode"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllCORS {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"version": contract.Version,
			"agents":  contract.AgentNames,
		})
	})

	return r
}

// Router returns the chi router, primarily for tests.
func (s *Server) Router() chi.Router { return s.router }

// Gateway returns the tool gateway for out-of-band callers such as the
// MCP server.
func (s *Server) Gateway() *tools.Gateway { return s.gateway }

// Index returns the brain search index.
func (s *Server) Index() *brain.Index { return s.index }

// Engine returns the outreach eligibility engine.
func (s *Server) Engine() *outreach.Engine { return s.engine }

// Broadcaster returns the operator event broadcaster.
func (s *Server) Broadcaster() *events.Broadcaster { return s.broadcaster }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// No WriteTimeout: /api/chat streams for as long as the Hub talks.
		IdleTimeout: 120 * time.Second,
	}

	log.Info().Str("addr", addr).Msg("server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
