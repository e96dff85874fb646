package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dhg/hub-backend/internal/sse"
	"github.com/dhg/hub-backend/internal/ssedata"
)

// FlushSSEData broadcasts messages buffered during the request after the
// handler chain finishes. Nothing goes out when the handler aborted early,
// since services only append after their writes succeed.
func FlushSSEData(hub *sse.SSEHub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		ssd := ssedata.GetSSEData(c.Request.Context())
		if ssd == nil {
			return
		}
		for _, msg := range ssd.Messages {
			hub.Broadcast(msg)
		}
	}
}
