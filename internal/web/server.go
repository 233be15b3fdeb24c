package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mandalart/internal/grid"
	"mandalart/internal/mutate"
	"mandalart/internal/store"
)

//go:embed templates/*.html static/*.css
var assetsFS embed.FS

const defaultPageSize = 20

type ServerConfig struct {
	Addr string
	// BaseURL is the public origin used in share links and OGP tags.
	BaseURL       string
	AdminPassword string
	SessionTTL    time.Duration
	PageSize      int

	Store   *store.Store
	Service *mutate.Service
	Logger  *zap.Logger
}

type Server struct {
	cfg    ServerConfig
	tmpl   *template.Template
	secret []byte
	log    *zap.Logger
	now    func() time.Time
}

func NewServer(ctx context.Context, cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Store == nil {
		return nil, errors.New("web: store is nil")
	}
	if cfg.Service == nil {
		return nil, errors.New("web: service is nil")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * 24 * time.Hour
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://" + cfg.Addr
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim":      strings.TrimSpace,
		"date":      formatDate,
		"cellClass": cellClass,
		"seq":       seq,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	secret, err := loadOrInitSecretKey(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		tmpl:   tmpl,
		secret: secret,
		log:    cfg.Logger,
		now:    time.Now,
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET /{$}", s.handleHome)

	mux.HandleFunc("GET /create", s.handleCreateGet)
	mux.HandleFunc("POST /create", s.handleCreatePost)
	mux.HandleFunc("GET /list", s.handleList)
	mux.HandleFunc("GET /list/more", s.handleListMore)
	mux.HandleFunc("GET /view/{id}", s.handleView)
	mux.HandleFunc("GET /api/view", s.handleView)
	mux.HandleFunc("GET /m/{id}/image.png", s.handleImage)
	mux.HandleFunc("GET /m/{id}/thumb.png", s.handleThumb)
	mux.HandleFunc("POST /m/{id}/delete-request", s.handleDeleteRequest)
	mux.HandleFunc("GET /og-images/{name}", s.handleOGImage)

	mux.HandleFunc("GET /api/mandalarts", s.handleAPIList)
	mux.HandleFunc("POST /api/mandalarts", s.handleAPICreate)
	mux.HandleFunc("GET /api/mandalarts/mine", s.handleAPIMine)
	mux.HandleFunc("GET /api/mandalarts/{id}", s.handleAPIGet)
	mux.HandleFunc("PUT /api/mandalarts/{id}", s.handleAPIUpdate)
	mux.HandleFunc("DELETE /api/mandalarts/{id}", s.handleAPIDelete)
	mux.HandleFunc("GET /api/cells/{index}", s.handleAPICell)
	mux.HandleFunc("/api/admin-auth", s.handleAdminAuth)

	mux.HandleFunc("GET /admin", s.handleAdmin)
	mux.HandleFunc("POST /admin/login", s.handleAdminLogin)
	mux.HandleFunc("POST /admin/logout", s.handleAdminLogout)
	mux.HandleFunc("POST /admin/requests/{id}/approve", s.handleAdminApprove)
	mux.HandleFunc("POST /admin/requests/{id}/reject", s.handleAdminReject)
	return s.logRequests(mux)
}

// Serve runs the server on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- hs.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE responses streaming through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (s *Server) writeHTMLTemplate(w http.ResponseWriter, status int, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.log.Error("template failed", zap.String("template", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, html)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeServiceError maps service errors onto HTTP statuses for JSON routes.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var nf mutate.NotFoundError
	var oo mutate.OwnerOnlyError
	var np mutate.NotPendingError
	var ve grid.ValidationErrors
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "validation failed", "errors": ve})
	case errors.As(err, &nf):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &oo):
		writeJSONError(w, http.StatusForbidden, "only the owner can change this mandalart")
	case errors.As(err, &np):
		writeJSONError(w, http.StatusConflict, err.Error())
	case errors.Is(err, mutate.ErrReasonRequired):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func redirectBack(w http.ResponseWriter, r *http.Request, fallback string) {
	ref := strings.TrimSpace(r.Header.Get("Referer"))
	if ref != "" {
		http.Redirect(w, r, ref, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, fallback, http.StatusSeeOther)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02")
}

// cellClass names the role of a grid cell for styling.
func cellClass(c grid.Cell) string {
	switch c.Address.Kind {
	case grid.KindCenter:
		return "cell cell-center"
	case grid.KindTheme:
		return "cell cell-theme"
	default:
		return "cell cell-detail"
	}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func absoluteURL(base, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return fmt.Sprintf("%s/%s", base, strings.TrimLeft(path, "/"))
}
