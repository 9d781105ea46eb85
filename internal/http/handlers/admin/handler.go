package admin

import "github.com/tourshop/internal/provider"

// Handler back-office API. Every route except login sits behind the admin JWT
// and RBAC middleware.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
