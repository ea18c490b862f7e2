package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection. Requests are
// labelled by route template, not raw path, to bound cardinality.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// Timer measures a document write
type Timer struct {
	start    time.Time
	metrics  *Metrics
	document string
}

// NewTimer creates a new timer
func NewTimer(metrics *Metrics, document string) *Timer {
	return &Timer{
		start:    time.Now(),
		metrics:  metrics,
		document: document,
	}
}

// Stop records the elapsed time against the write outcome
func (t *Timer) Stop(err error) {
	if t.metrics == nil {
		return
	}
	t.metrics.RecordPersist(t.document, time.Since(t.start), err)
}
