package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access classifies who may call a route
type Access int

const (
	// Open routes serve the kiosk and need no token
	Open Access = iota
	// BackOffice routes require a bearer token when authentication is on
	BackOffice
)

func (a Access) String() string {
	if a == BackOffice {
		return "back-office"
	}
	return "open"
}

// Router mounts domain groups under /api/<version>
type Router struct {
	engine     *gin.Engine
	apiVersion string
	auth       gin.HandlerFunc
	guard      gin.HandlerFunc
	groups     []*DomainGroup
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithAuth protects BackOffice routes with mw. Without it every route is open.
func WithAuth(mw gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.auth = mw
	}
}

// WithSubmissionGuard runs mw in front of every POST route
func WithSubmissionGuard(mw gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.guard = mw
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a group to be mounted by Setup
func (r *Router) Register(group *DomainGroup) *Router {
	r.groups = append(r.groups, group)
	return r
}

// Setup mounts every registered group
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, g := range r.groups {
		g.mount(api, r.auth, r.guard)
	}
}

// Routes lists the registered routes with their full paths
func (r *Router) Routes() []RouteInfo {
	var out []RouteInfo
	base := "/api/" + r.apiVersion
	for _, g := range r.groups {
		for _, rd := range *g.routes {
			out = append(out, RouteInfo{Method: rd.method, Path: base + g.prefix + rd.path, Access: rd.access})
		}
	}
	return out
}

// RouteInfo describes one mounted route
type RouteInfo struct {
	Method string
	Path   string
	Access Access
}

// DomainGroup collects the routes of one area of the API. Routes added
// through the group returned by BackOffice share the same prefix.
type DomainGroup struct {
	name   string
	prefix string
	access Access
	routes *[]routeDefinition
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
	access   Access
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	routes := make([]routeDefinition, 0)
	return &DomainGroup{
		name:   name,
		prefix: prefix,
		access: Open,
		routes: &routes,
	}
}

// BackOffice returns a view of the group whose routes require a token
func (dg *DomainGroup) BackOffice() *DomainGroup {
	return &DomainGroup{
		name:   dg.name,
		prefix: dg.prefix,
		access: BackOffice,
		routes: dg.routes,
	}
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	*dg.routes = append(*dg.routes, routeDefinition{
		method:   method,
		path:     path,
		handlers: handlers,
		access:   dg.access,
	})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// PUT registers a PUT route
func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPut, path, handlers)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPatch, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

// mount registers the routes on rg. Authentication runs before the
// submission guard so rejected tokens never claim a key.
func (dg *DomainGroup) mount(rg *gin.RouterGroup, auth, guard gin.HandlerFunc) {
	group := rg.Group(dg.prefix)
	for _, route := range *dg.routes {
		chain := make([]gin.HandlerFunc, 0, len(route.handlers)+2)
		if route.access == BackOffice && auth != nil {
			chain = append(chain, auth)
		}
		if route.method == http.MethodPost && guard != nil {
			chain = append(chain, guard)
		}
		chain = append(chain, route.handlers...)
		group.Handle(route.method, route.path, chain...)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}
