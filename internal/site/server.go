package site

import (
	"bytes"
	"crypto/subtle"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/internal/render"
	"github.com/mithrel/arttown/pkg/api"
)

//go:embed templates/*.html
var templateFS embed.FS

// maxRenderBody caps POST /api/v1/render payloads.
const maxRenderBody = 1 << 20

// Server serves the site pages and JSON API from a content Catalog.
type Server struct {
	cfg     *viper.Viper
	catalog *content.Catalog
	log     *zap.Logger
	pages   map[string]*template.Template
	now     func() time.Time
}

func New(cfg *viper.Viper, catalog *content.Catalog, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{cfg: cfg, catalog: catalog, log: log, now: time.Now}
	pages, err := parsePages(template.FuncMap{
		"ago":    func(t time.Time) string { return humanize.RelTime(t, s.now(), "ago", "from now") },
		"status": statusLine,
	})
	if err != nil {
		return nil, err
	}
	s.pages = pages
	return s, nil
}

func parsePages(funcs template.FuncMap) (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "courses", "articles", "article", "notfound"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /courses", s.handleCourses)
	mux.HandleFunc("GET /articles", s.handleArticles)
	mux.HandleFunc("GET /articles/{id}", s.handleArticle)

	mux.HandleFunc("GET /api/v1/content", s.handleContent)
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/articles/{id}/blocks", s.handleArticleBlocks)
	mux.HandleFunc("POST /api/v1/render", s.handleRender)
	mux.HandleFunc("POST /api/v1/refresh", s.auth(s.handleRefresh))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.notFound(w, r)
	})
	return s.withRequestID(s.withAccessLog(mux))
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimSpace(s.cfg.GetString("auth.token"))
		got := r.Header.Get("Authorization")
		if tok == "" || !strings.HasPrefix(got, "Bearer ") ||
			subtle.ConstantTimeCompare([]byte(strings.TrimSpace(strings.TrimPrefix(got, "Bearer "))), []byte(tok)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	}
}

// page is the data shared by every HTML template.
type page struct {
	SiteName        string
	SiteDescription string
	Status          api.Status
	Error           string
	Path            string
	Body            any
}

func (s *Server) newPage(r *http.Request, snap api.Snapshot, body any) page {
	return page{
		SiteName:        snap.Settings.SiteName(),
		SiteDescription: snap.Settings.SiteDescription(),
		Status:          content.StatusOf(snap),
		Error:           snap.Error,
		Path:            r.URL.Path,
		Body:            body,
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, status int, data page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[name].ExecuteTemplate(w, "layout", data); err != nil {
		s.log.Error("render page", zap.String("page", name), zap.String("request_id", RequestID(r)), zap.Error(err))
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot(r.Context())
	courses, articles := content.FeaturedOf(snap)
	s.renderPage(w, r, "home", http.StatusOK, s.newPage(r, snap, struct {
		Courses  []api.Course
		Articles []api.Article
	}{courses, articles}))
}

type filterOption struct {
	content.Option
	Selected bool
}

func selectOptions(opts []content.Option, current string) []filterOption {
	if current == "" {
		current = content.FilterAll
	}
	out := make([]filterOption, len(opts))
	for i, o := range opts {
		out[i] = filterOption{Option: o, Selected: o.Value == current}
	}
	return out
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	age := r.URL.Query().Get("age")
	snap := s.catalog.Snapshot(r.Context())
	s.renderPage(w, r, "courses", http.StatusOK, s.newPage(r, snap, struct {
		Options []filterOption
		Courses []api.Course
	}{selectOptions(content.AgeGroups, age), content.FilterCourses(snap.Courses, age)}))
}

func (s *Server) handleArticles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category, search := q.Get("category"), q.Get("q")
	snap := s.catalog.Snapshot(r.Context())
	articles := content.SearchArticles(content.FilterArticles(snap.Articles, category), search)
	if category == "" {
		category = content.FilterAll
	}
	s.renderPage(w, r, "articles", http.StatusOK, s.newPage(r, snap, struct {
		Options  []filterOption
		Category string
		Query    string
		Articles []api.Article
	}{selectOptions(content.Categories, category), category, search, articles}))
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.notFound(w, r)
		return
	}
	snap := s.catalog.Snapshot(r.Context())
	view, err := content.ViewArticle(snap, id)
	if errors.Is(err, content.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	s.renderPage(w, r, "article", http.StatusOK, s.newPage(r, snap, view))
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.renderPage(w, r, "notfound", http.StatusNotFound, s.newPage(r, s.catalog.Snapshot(r.Context()), nil))
}

// contentResponse is the JSON shape of GET /api/v1/content.
type contentResponse struct {
	Courses     []api.Course             `json:"courses"`
	Articles    []api.Article            `json:"articles"`
	Settings    api.Settings             `json:"settings"`
	Origins     map[api.Table]api.Origin `json:"origins"`
	Error       string                   `json:"error,omitempty"`
	LastUpdated time.Time                `json:"last_updated"`
	Digest      string                   `json:"digest"`
}

// handleContent serves the snapshot with an ETag over the exact body, so
// origin, error and freshness changes invalidate client copies too.
func (s *Server) handleContent(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Snapshot(r.Context())
	body, err := encodeJSON(contentResponse{
		Courses:     snap.Courses,
		Articles:    snap.Articles,
		Settings:    snap.Settings,
		Origins:     snap.Origins,
		Error:       snap.Error,
		LastUpdated: snap.LastUpdated,
		Digest:      snap.Digest,
	})
	if err != nil {
		s.log.Error("encode content", zap.String("request_id", RequestID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	sum := blake3.Sum256(body)
	etag := strconv.Quote(hex.EncodeToString(sum[:]))
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && etagMatches(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func etagMatches(header, etag string) bool {
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(part), "W/"))
		if part == "*" || part == etag {
			return true
		}
	}
	return false
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Status(r.Context()))
}

func (s *Server) handleArticleBlocks(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad article id")
		return
	}
	view, err := s.catalog.ArticleView(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	writeJSON(w, http.StatusOK, renderResponse{Digest: render.Digest(view.Article.Content), Blocks: view.Blocks})
}

type renderResponse struct {
	Digest string         `json:"digest"`
	Blocks []render.Block `json:"blocks"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(io.LimitReader(r.Body, maxRenderBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(b) > maxRenderBody {
		writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}
	doc := string(b)
	blocks := render.Render(doc)
	if blocks == nil {
		blocks = []render.Block{}
	}
	writeJSON(w, http.StatusOK, renderResponse{Digest: render.Digest(doc), Blocks: blocks})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap := s.catalog.Refresh(r.Context())
	s.log.Info("content refreshed via api", zap.String("request_id", RequestID(r)), zap.Bool("fallback", snap.UsingFallback()))
	writeJSON(w, http.StatusOK, content.StatusOf(snap))
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusLine summarizes content counts the way the site footer shows them.
func statusLine(st api.Status) string {
	return fmt.Sprintf("%d courses • %d articles • %d settings", st.Courses, st.Articles, st.Settings)
}

// newRequestID is swapped in tests.
var newRequestID = func() string { return uuid.NewString() }
