package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/tips/pkg/constants"
)

// bodyCacheWriter buffers the response body so the ETag can be computed before anything is sent.
// bodyCacheWriter 缓冲响应正文，以便在发送前计算 ETag。
type bodyCacheWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCacheWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *bodyCacheWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

// ETagCache returns a Gin middleware for conditional GETs on slowly changing resources
// such as the artifact description. The ETag is the SHA-256 of the response body;
// a matching If-None-Match yields 304 Not Modified with no body.
// ETagCache 为变化缓慢的资源提供基于 ETag 的条件 GET。
func ETagCache(maxAge time.Duration) gin.HandlerFunc {
	cacheControl := fmt.Sprintf("public, max-age=%d, must-revalidate", int(maxAge.Seconds()))
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		bcw := &bodyCacheWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = bcw
		c.Next()
		c.Writer = bcw.ResponseWriter

		responseBody := bcw.body.Bytes()
		if c.Writer.Status() != http.StatusOK || len(responseBody) == 0 {
			_, _ = c.Writer.Write(responseBody)
			return
		}

		etag := fmt.Sprintf(`"%x"`, sha256.Sum256(responseBody))
		c.Header(constants.HeaderETag, etag)
		c.Header("Cache-Control", cacheControl)

		if etagMatches(c.GetHeader(constants.HeaderIfNoneMatch), etag) {
			c.Status(http.StatusNotModified)
			c.Writer.WriteHeaderNow()
			return
		}
		_, _ = c.Writer.Write(responseBody)
	}
}

// etagMatches applies the weak comparison of If-None-Match against etag.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
