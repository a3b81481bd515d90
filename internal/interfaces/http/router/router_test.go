package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stockledger/backend/internal/interfaces/http/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func ok(c *gin.Context) {
	c.String(http.StatusOK, c.GetString("trail"))
}

func mark(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("trail", c.GetString("trail")+name+";")
		c.Next()
	}
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.groups)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestDomainGroup(t *testing.T) {
	g := NewDomainGroup("catalog", "/catalog")
	assert.Equal(t, "catalog", g.Name())
	assert.Equal(t, "/catalog", g.Prefix())

	g.GET("/a", ok)
	g.BackOffice().POST("/b", ok)

	require.Len(t, *g.routes, 2)
	assert.Equal(t, Open, (*g.routes)[0].access)
	assert.Equal(t, BackOffice, (*g.routes)[1].access)
}

func TestSetupMiddlewareChain(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, WithAuth(mark("auth")), WithSubmissionGuard(mark("guard")))

	g := NewDomainGroup("test", "/test")
	g.GET("/open", ok).POST("/open", ok)
	g.BackOffice().GET("/admin", ok).POST("/admin", ok).PUT("/admin", ok).PATCH("/admin", ok).DELETE("/admin", ok)
	r.Register(g).Setup()

	tests := []struct {
		method string
		path   string
		trail  string
	}{
		{http.MethodGet, "/api/v1/test/open", ""},
		{http.MethodPost, "/api/v1/test/open", "guard;"},
		{http.MethodGet, "/api/v1/test/admin", "auth;"},
		{http.MethodPost, "/api/v1/test/admin", "auth;guard;"},
		{http.MethodPut, "/api/v1/test/admin", "auth;"},
		{http.MethodPatch, "/api/v1/test/admin", "auth;"},
		{http.MethodDelete, "/api/v1/test/admin", "auth;"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := serve(engine, tt.method, tt.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.trail, w.Body.String())
		})
	}
}

func TestSetupWithoutAuth(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	g := NewDomainGroup("test", "/test")
	g.BackOffice().POST("/admin", ok)
	r.Register(g).Setup()

	w := serve(engine, http.MethodPost, "/api/v1/test/admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRegisterAPI(t *testing.T) {
	r := NewRouter(gin.New())
	RegisterAPI(r, Handlers{
		Catalog: &handler.CatalogHandler{},
		Stock:   &handler.StockHandler{},
		Intake:  &handler.IntakeHandler{},
	})
	r.Setup()

	access := make(map[string]Access)
	for _, route := range r.Routes() {
		access[route.Method+" "+route.Path] = route.Access
	}

	open := []string{
		"GET /api/v1/kiosk/catalog",
		"POST /api/v1/stock/in",
		"POST /api/v1/stock/out",
		"GET /api/v1/stock/movements",
		"GET /api/v1/catalog/variants",
	}
	for _, key := range open {
		a, found := access[key]
		require.True(t, found, key)
		assert.Equal(t, Open, a, key)
	}

	protected := []string{
		"POST /api/v1/catalog/categories",
		"PATCH /api/v1/catalog/variants/:id",
		"GET /api/v1/stock/movements/export",
		"POST /api/v1/stock/movements/:id/cancel",
		"GET /api/v1/stock/usage/export",
		"POST /api/v1/intake/rows",
		"POST /api/v1/intake/upload",
		"GET /api/v1/intake/batches",
		"PUT /api/v1/intake/batches/:id/quantities",
		"POST /api/v1/intake/batches/:id/process",
		"POST /api/v1/intake/batches/:id/cancel",
	}
	for _, key := range protected {
		a, found := access[key]
		require.True(t, found, key)
		assert.Equal(t, BackOffice, a, key)
	}
}
