package api

import (
	"log/slog"
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	internalgrpc "github.com/mr1hm/go-migrant-health/internal/grpc"
	"github.com/mr1hm/go-migrant-health/internal/models"
)

type StreamQuery struct {
	District string `zog:"district"`
	Severity string `zog:"severity"`
}

var streamQuerySchema = z.Struct(z.Shape{
	"District": z.String().Trim().Optional(),
	"Severity": z.String().Trim().OneOf([]string{
		string(models.SeverityGreen),
		string(models.SeverityOrange),
		string(models.SeverityRed),
	}).Optional(),
})

// alertsStream pushes hotspot changes from the mirror sync as server-sent
// events until the client goes away or the broadcaster closes.
// ?district= and ?severity= (minimum) narrow the feed.
func (h *Handler) alertsStream(c *gin.Context) {
	if h.broadcaster == nil {
		sendError(c, http.StatusServiceUnavailable, CodeStreamUnavailable,
			"stream unavailable", "Hotspot streaming requires the mirror sync")
		return
	}

	var q StreamQuery
	if errs := streamQuerySchema.Parse(zhttp.Request(c.Request), &q); errs != nil {
		sendError(c, http.StatusBadRequest, CodeValidationError,
			"Validation failed", "severity must be one of green, orange, red")
		return
	}
	filter := internalgrpc.Filter{District: q.District, MinSeverity: models.Severity(q.Severity)}

	id, ch := h.broadcaster.Subscribe(filter)
	defer h.broadcaster.Unsubscribe(id)

	slog.Info("client subscribed to hotspot stream",
		"subscriber_id", id,
		"district", filter.District,
		"min_severity", filter.MinSeverity)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			slog.Info("client disconnected from hotspot stream", "subscriber_id", id)
			return
		case a, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent("hotspot", a)
			c.Writer.Flush()
		}
	}
}
