// Package catalogserver is an in-memory implementation of the inventory
// module's catalog endpoints for tests and local development.
//
// It follows the Django views closely enough for client code to be exercised
// end to end: csrftoken cookie, X-CSRFToken checks on POST, the
// {success, message} envelope and Django's paginator clamping.
package catalogserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ERPlora/module-inventory/internal/domain/catalog"
)

const (
	// DefaultBasePath is where the endpoints are mounted
	DefaultBasePath = "/m/inventory/api"
	// DefaultToken is the csrftoken handed out by default
	DefaultToken = "test-csrf-token"
)

// Call records one request seen by the server
type Call struct {
	Method    string
	Path      string
	Query     string
	RequestID string
	Token     string
}

// Server holds the catalog state
type Server struct {
	mu       sync.Mutex
	products   []catalog.Product
	categories []catalog.Category
	calls      []Call

	token    string
	basePath string
	importFn ImportFunc
	failNext map[string]int
	engine   *gin.Engine
}

// ImportFunc decides the reply to an import. Returning ok=false rejects the
// whole file with message.
type ImportFunc func(kind catalog.FileKind, data []byte) (rows []catalog.ProductFields, message string, ok bool)

// Option configures a Server
type Option func(*Server)

// WithToken sets the expected anti-forgery token
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithBasePath mounts the endpoints below path
func WithBasePath(path string) Option {
	return func(s *Server) {
		s.basePath = "/" + strings.Trim(path, "/")
	}
}

// WithProducts seeds the catalog
func WithProducts(products ...catalog.Product) Option {
	return func(s *Server) {
		s.products = append(s.products, products...)
	}
}

// WithCategories seeds the category list
func WithCategories(categories ...catalog.Category) Option {
	return func(s *Server) {
		s.categories = append(s.categories, categories...)
	}
}

// WithImport replaces the default CSV import parser
func WithImport(fn ImportFunc) Option {
	return func(s *Server) {
		s.importFn = fn
	}
}

// New creates a server
func New(opts ...Option) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		token:    DefaultToken,
		basePath: DefaultBasePath,
		failNext: make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.importFn == nil {
		s.importFn = parseCSVImport
	}
	for i := range s.products {
		if s.products[i].ID == uuid.Nil {
			s.products[i].ID = uuid.New()
		}
	}
	for i := range s.categories {
		if s.categories[i].ID == uuid.Nil {
			s.categories[i].ID = uuid.New()
		}
	}
	s.engine = s.routes()
	return s
}

// Start runs the server on a loopback port until the test ends
func Start(t testing.TB, opts ...Option) (*Server, *httptest.Server) {
	t.Helper()
	s := New(opts...)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.engine
}

// BasePath returns the mount point of the endpoints
func (s *Server) BasePath() string {
	return s.basePath
}

// Token returns the expected anti-forgery token
func (s *Server) Token() string {
	return s.token
}

// Products returns a copy of the catalog
func (s *Server) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.products...)
}

// Calls returns every request seen so far
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallCount returns how many requests hit the route, e.g. "POST /create"
func (s *Server) CallCount(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		if c.Method+" "+c.Path == route {
			n++
		}
	}
	return n
}

// FailNext makes the next n calls to endpoint (e.g. "list") answer 500
func (s *Server) FailNext(endpoint string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[endpoint] = n
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("catalogserver"))
	r.Use(s.record)

	api := r.Group(s.basePath)
	api.Use(s.csrf)
	{
		api.GET("/list", s.failing("list"), s.list)
		api.GET("/stats", s.failing("stats"), s.stats)
		api.GET("/categories", s.failing("categories"), s.listCategories)
		api.POST("/create", s.failing("create"), s.create)
		api.POST("/edit/:id", s.failing("edit"), s.edit)
		api.POST("/delete/:id", s.failing("delete"), s.delete)
		api.POST("/toggle/:id", s.failing("toggle"), s.toggle)
		api.POST("/bulk", s.failing("bulk"), s.bulk)
		api.GET("/export/:kind", s.failing("export"), s.export)
		api.POST("/import/:kind", s.failing("import"), s.importFile)
	}
	return r
}

func (s *Server) record(c *gin.Context) {
	path := strings.TrimPrefix(c.Request.URL.Path, s.basePath)
	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Method:    c.Request.Method,
		Path:      path,
		Query:     c.Request.URL.RawQuery,
		RequestID: c.GetHeader("X-Request-ID"),
		Token:     c.GetHeader("X-CSRFToken"),
	})
	s.mu.Unlock()
	c.Next()
}

// csrf hands out the csrftoken cookie and enforces it on POST like Django's
// CsrfViewMiddleware
func (s *Server) csrf(c *gin.Context) {
	if _, err := c.Cookie("csrftoken"); err != nil {
		c.SetCookie("csrftoken", s.token, 0, "/", "", false, false)
	}
	if c.Request.Method == http.MethodPost && c.GetHeader("X-CSRFToken") != s.token {
		c.Data(http.StatusForbidden, "text/html; charset=utf-8",
			[]byte("<h1>Forbidden (403)</h1><p>CSRF verification failed. Request aborted.</p>"))
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) failing(endpoint string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		fail := s.failNext[endpoint] > 0
		if fail {
			s.failNext[endpoint]--
		}
		s.mu.Unlock()
		if fail {
			c.String(http.StatusInternalServerError, "Internal Server Error")
			c.Abort()
			return
		}
		c.Next()
	}
}
