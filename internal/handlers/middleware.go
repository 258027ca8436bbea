package handlers

import (
	"net/http"
	"strings"

	"traceper/internal/tabs"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const ctxTab = "tab"

// tabMiddleware resolves the :tab parameter to an open tab. Browsers holding a
// stale tab id start over at "/"; sockets and API callers get a 404.
func (h *Handler) tabMiddleware(c *gin.Context) {
	id := c.Param("tab")
	t, ok := h.tabs.Get(id)
	if !ok {
		if websocket.IsWebSocketUpgrade(c.Request) || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "unknown tab",
			})
			return
		}
		h.log.Infow("tab_unknown", "tab", id)
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
		return
	}

	// store in Gin context
	c.Set(ctxTab, t)
	c.Next()
}

func tabFrom(c *gin.Context) *tabs.Tab {
	return c.MustGet(ctxTab).(*tabs.Tab)
}
