package drawdown

import "net/http"

// Router handles routing for the drawdown engine's HTTP surface.
type Router struct {
	handler *Handler
}

// NewRouter creates a new Router wrapping the given Handler.
func NewRouter(handler *Handler) *Router {
	return &Router{handler: handler}
}

// RegisterRoutes registers the drawdown engine's routes with the given mux.
func (r *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/drawdown/simulate", r.handler.HandleSimulate)
	mux.HandleFunc("/health", r.handler.HandleHealth)
	mux.HandleFunc("/api/health", r.handler.HandleHealth)
}
