package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mahmudalamin/zbooksapp-sub000/internal/logging"
)

const reqBodyLimit = 8 * 1024 // 8KB

// redactJSON scrubs credential-shaped fields from a JSON body before it is
// written to the log.
func redactJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return raw
	}
	var m any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw // not JSON
	}
	var scrub func(any) any
	scrub = func(x any) any {
		switch v := x.(type) {
		case map[string]any:
			for k, val := range v {
				kl := strings.ToLower(k)
				if kl == "password" || kl == "authorization" || kl == "token" || kl == "secret" {
					v[k] = "***redacted***"
					continue
				}
				v[k] = scrub(val)
			}
			return v
		case []any:
			for i := range v {
				v[i] = scrub(v[i])
			}
			return v
		default:
			return v
		}
	}
	out := scrub(m)
	b, err := json.Marshal(out)
	if err != nil {
		return raw
	}
	return b
}

// Logging logs each request and injects a request-scoped slog.Logger into
// both the gin context and the request context for downstream use cases.
func Logging(base *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Header("X-Request-Id", reqID)

		l := base.With(
			"req_id", reqID,
			"method", c.Request.Method,
			"path", c.FullPath(), // empty when no route matched
			"remote", c.ClientIP(),
		)
		logging.With(c, l)
		c.Request = c.Request.WithContext(logging.WithCtx(c.Request.Context(), l))

		// capture JSON request bodies only; the handler always gets the
		// full body, the cap applies to the logged copy alone
		var reqBodyLogged string
		if strings.Contains(c.GetHeader("Content-Type"), "application/json") && c.Request.Body != nil {
			raw, _ := io.ReadAll(c.Request.Body)
			_ = c.Request.Body.Close()
			c.Request.Body = io.NopCloser(bytes.NewReader(raw))

			logged := raw
			truncated := len(raw) > reqBodyLimit
			if truncated {
				// copy, so the append below cannot scribble on raw
				logged = append([]byte(nil), raw[:reqBodyLimit]...)
			}
			logged = redactJSON(logged)
			if truncated {
				logged = append(logged, "...truncated..."...)
			}
			reqBodyLogged = string(logged)
		}

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"dur_ms", time.Since(start).Milliseconds(),
			"resp_bytes", c.Writer.Size(),
		}
		if reqBodyLogged != "" {
			attrs = append(attrs, "req_body", reqBodyLogged)
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "error", c.Errors.String())
		}

		if status >= http.StatusBadRequest {
			l.Error("http_request", attrs...)
			return
		}
		l.Info("http_request", attrs...)
	}
}
