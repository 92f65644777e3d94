package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestLogging_LargeBodyReachesHandlerIntact(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logging(slog.New(slog.NewTextHandler(io.Discard, nil))))

	var got struct {
		Pad string `json:"pad"`
	}
	r.POST("/echo", func(c *gin.Context) {
		if err := c.ShouldBindJSON(&got); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
			return
		}
		c.Status(http.StatusOK)
	})

	pad := strings.Repeat("x", 3*reqBodyLimit)
	body, err := json.Marshal(map[string]string{"pad": pad})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/echo", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, large valid body rejected: %s", w.Code, w.Body.String())
	}
	if len(got.Pad) != len(pad) {
		t.Fatalf("handler saw %d pad bytes, want %d", len(got.Pad), len(pad))
	}
}

func TestLogging_RedactsSecretsInLogOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var logs bytes.Buffer
	r := gin.New()
	r.Use(Logging(slog.New(slog.NewJSONHandler(&logs, nil))))

	var got map[string]string
	r.POST("/login", func(c *gin.Context) {
		if err := c.ShouldBindJSON(&got); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad body"})
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"user":"ada","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if got["password"] != "hunter2" {
		t.Fatalf("handler must see the original body, got %q", got["password"])
	}
	if strings.Contains(logs.String(), "hunter2") {
		t.Fatalf("password leaked into the log: %s", logs.String())
	}
	if !strings.Contains(logs.String(), "***redacted***") {
		t.Fatalf("redaction marker missing from log: %s", logs.String())
	}
}
