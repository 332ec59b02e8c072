package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"digital-library/library"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"formatDate": library.FormatDate,
}).ParseFS(templateFS, "templates/*.html"))

// Server serves the library over HTTP. It shares the manager's single
// session, so it is meant for one operator at a time.
type Server struct {
	mgr     *library.LibraryManager
	logger  *log.Logger
	metrics *metrics
	router  chi.Router
}

// NewServer wires the routes for mgr.
func NewServer(mgr *library.LibraryManager, logger *log.Logger) *Server {
	s := &Server{
		mgr:     mgr,
		logger:  logger,
		metrics: newMetrics(mgr),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handleDashboard)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Post("/register", s.handleRegister)

	r.Get("/catalog", s.handleCatalog)
	r.Get("/books/{id}", s.handleBook)

	r.Route("/loans", func(r chi.Router) {
		r.Get("/", s.handleLoans)
		r.Post("/", s.handleOpenLoan)
		r.Get("/active", s.handleActiveLoans)
		r.Get("/{id}", s.handleLoan)
		r.Post("/{id}/return", s.handleReturn)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", s.metrics.handler())

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Println("listening on", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Printf("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond))
	})
}

// statusFor maps domain error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, library.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrAlreadyReturned):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data page) {
	if acct, ok := s.mgr.CurrentAccount(); ok {
		data.User = &acct
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Printf("render %s: %v", name, err)
	}
}

func (s *Server) renderError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Printf("internal error: %v", err)
		msg = "Something went wrong. Please try again."
	}
	s.render(w, status, "error", page{Title: http.StatusText(status), Error: msg})
}
