package server

import (
	"log/slog"
	"net/http"

	"ecom-dashboard/internal/handlers"
	"ecom-dashboard/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, defaultYear int, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger, defaultYear),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	s.mux.HandleFunc("GET /", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API: the stable contracts the dashboard consumes.
	s.mux.HandleFunc("GET /api/revenue-summary", s.apiHandlers.HandleRevenueSummary)
	s.mux.HandleFunc("GET /api/monthly-revenue", s.apiHandlers.HandleMonthlyRevenue)
	s.mux.HandleFunc("GET /api/category-sales", s.apiHandlers.HandleCategorySales)
	s.mux.HandleFunc("GET /api/state-sales", s.apiHandlers.HandleStateSales)
	s.mux.HandleFunc("GET /api/review-scores", s.apiHandlers.HandleReviewScores)
	s.mux.HandleFunc("GET /api/review-delivery", s.apiHandlers.HandleReviewDelivery)
	s.mux.HandleFunc("GET /api/status-distribution", s.apiHandlers.HandleStatusDistribution)
	s.mux.HandleFunc("GET /api/years", s.apiHandlers.HandleYears)

	// Datastar SSE endpoints feeding the dashboard page.
	s.mux.HandleFunc("GET /sse/summary", s.sseHandlers.HandleSummary)
	s.mux.HandleFunc("GET /sse/charts", s.sseHandlers.HandleCharts)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
