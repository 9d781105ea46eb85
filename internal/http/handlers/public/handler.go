package public

import (
	handlershared "github.com/tourshop/internal/http/handlers/shared"
	"github.com/tourshop/internal/provider"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler storefront API: tours, checkout, cart, gift cards, content and the
// payment webhook. No customer login is involved.
type Handler struct {
	*provider.Container
}

// New creates the storefront handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}
