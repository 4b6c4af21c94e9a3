package logging

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Requests logs one line per HTTP request. Server errors log at error level,
// client errors at warn.
func Requests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := Component("http")
		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", status).
			Dur("elapsed", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("request")
	}
}
