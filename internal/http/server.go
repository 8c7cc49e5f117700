// Package http is the receipts and recipes BFF: JSON endpoints over the
// validated receipt list, the spending aggregator and saved recipes.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"payperless/internal/amqp"
	"payperless/internal/config"
	"payperless/internal/log"
	"payperless/internal/metrics"
	"payperless/internal/middleware/ratelimit"
	"payperless/internal/middleware/security"
	"payperless/internal/receipts"
	"payperless/internal/recipes"
)

// UploadPublisher announces accepted uploads to the ingestion worker.
type UploadPublisher interface {
	PublishReceiptUploaded(ctx context.Context, msg *amqp.ReceiptUploadedMessage) error
}

// Deps are the collaborators of the server. Publisher, Metrics and Ready
// may be nil.
type Deps struct {
	Receipts        *receipts.Service
	Dashboard       *receipts.Service
	DashboardSource string
	Uploader        receipts.Uploader
	Images          receipts.ImageFetcher
	Publisher       UploadPublisher
	Recipes         *recipes.Service
	Catalog         *recipes.Catalog
	MealPlan        *recipes.MealPlan
	Metrics         *metrics.Metrics
	Ready           func(ctx context.Context) error
	CurrencySymbol  string
	Logger          *log.Logger
}

type Server struct {
	http.Server

	receipts        *receipts.Service
	dashboard       *receipts.Service
	dashboardSource string
	uploader        receipts.Uploader
	images          receipts.ImageFetcher
	publisher       UploadPublisher
	recipes         *recipes.Service
	catalog         *recipes.Catalog
	mealPlan        *recipes.MealPlan
	metrics         *metrics.Metrics
	ready           func(ctx context.Context) error
	currency        string
	logger          *log.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = log.Discard()
	}
	currency := d.CurrencySymbol
	if currency == "" {
		currency = "$"
	}
	dashboard := d.Dashboard
	if dashboard == nil {
		dashboard = d.Receipts
	}
	source := d.DashboardSource
	if source == "" {
		source = config.SourceLive
	}

	s := &Server{
		receipts:        d.Receipts,
		dashboard:       dashboard,
		dashboardSource: source,
		uploader:        d.Uploader,
		images:          d.Images,
		publisher:       d.Publisher,
		recipes:         d.Recipes,
		catalog:         d.Catalog,
		mealPlan:        d.MealPlan,
		metrics:         d.Metrics,
		ready:           d.Ready,
		currency:        currency,
		logger:          logger.WithComponent(log.ComponentHTTP),
		limiter:         ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:        security.NewDetector(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/receipts", s.handleListReceipts)
	mux.HandleFunc("POST /api/receipts", s.handleUploadReceipt)
	mux.HandleFunc("GET /api/receipts/{id}", s.handleGetReceipt)
	mux.HandleFunc("GET /api/receipts/{id}/image", s.handleReceiptImage)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /api/dashboard/stores", s.handleDashboardStores)
	mux.HandleFunc("GET /api/dashboard/days", s.handleDashboardDays)
	mux.HandleFunc("GET /api/dashboard/all", s.handleDashboardAll)
	mux.HandleFunc("GET /api/dashboard/source", s.handleDashboardSource)

	mux.HandleFunc("GET /api/recipes", s.handleListRecipes)
	mux.HandleFunc("POST /api/recipes", s.handleAddRecipe)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.handleRemoveRecipe)
	mux.HandleFunc("GET /api/explore", s.handleExplore)
	mux.HandleFunc("POST /api/explore/{id}/save", s.handleSaveExplored)
	mux.HandleFunc("GET /api/meal-plan", s.handleMealPlan)
	mux.HandleFunc("GET /api/meal-plan/{id}", s.handleMealRecipe)

	mux.HandleFunc("GET /api/sustainability", s.handleSustainability)

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.onRateLimit, http.MethodPost, http.MethodDelete)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.accessLog(h)
	h = log.Middleware(s.logger, func(r *http.Request) string { return r.Header.Get("X-Request-ID") })(h)
	h = withRequestID(h)
	h = s.metrics.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64KB
	}
	return s
}

// Shutdown stops the limiter and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := requestID(r)
		r.Header.Set("X-Request-ID", id)
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		log.LogHTTPEnd(r.Context(), log.FromContext(r.Context()), r, rw.statusCode,
			time.Since(start).Milliseconds(), s.detector.ExtractClientIP(r))
	})
}

func (s *Server) onRateLimit(w http.ResponseWriter, r *http.Request) {
	log.FromContext(r.Context()).WarnContext(r.Context(), "rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
	writeError(w, r, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

// responseWriter captures the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			s.logger.WarnContext(r.Context(), "readiness check failed", log.FieldError, err.Error())
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
