package config

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// isolate runs the test in an empty directory with the config variables
// cleared so neither a .env file nor the outer environment leak in.
func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	for _, key := range []string{
		"LOG_ENV", "POSTGRES_DSN", "HTTP_PORT", "REDIS_DB", "HISTORY_LIMIT",
		"GEOFENCE_MIN_RADIUS", "GEOFENCE_MAX_RADIUS", "SHARE_MIN_MINUTES",
		"SHARE_MAX_MINUTES", "MEMBERSHIP_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.HistoryLimit != 100 {
		t.Errorf("expected history limit 100, got %d", cfg.HistoryLimit)
	}
	if cfg.GeofenceMinRadius != 50 || cfg.GeofenceMaxRadius != 1000 {
		t.Errorf("unexpected radius range %g-%g", cfg.GeofenceMinRadius, cfg.GeofenceMaxRadius)
	}
	if cfg.ShareMinDuration != 15*time.Minute || cfg.ShareMaxDuration != 24*time.Hour {
		t.Errorf("unexpected share range %s-%s", cfg.ShareMinDuration, cfg.ShareMaxDuration)
	}
	if cfg.MembershipTTL != 24*time.Hour {
		t.Errorf("expected 24h membership ttl, got %s", cfg.MembershipTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("GEOFENCE_MAX_RADIUS", "2500.5")
	t.Setenv("SHARE_MAX_MINUTES", "60")
	t.Setenv("MEMBERSHIP_TTL", "2h")
	t.Setenv("HISTORY_LIMIT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPPort != "9090" {
		t.Errorf("expected 9090, got %s", cfg.HTTPPort)
	}
	if cfg.Redis.DB != 3 {
		t.Errorf("expected redis db 3, got %d", cfg.Redis.DB)
	}
	if cfg.GeofenceMaxRadius != 2500.5 {
		t.Errorf("expected 2500.5, got %g", cfg.GeofenceMaxRadius)
	}
	if cfg.ShareMaxDuration != time.Hour {
		t.Errorf("expected 1h, got %s", cfg.ShareMaxDuration)
	}
	if cfg.MembershipTTL != 2*time.Hour {
		t.Errorf("expected 2h, got %s", cfg.MembershipTTL)
	}
	if cfg.HistoryLimit != 100 {
		t.Errorf("unparsable value should fall back to default, got %d", cfg.HistoryLimit)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			HTTPPort:          "8080",
			PostgresDSN:       "postgres://x",
			GeofenceMinRadius: 50,
			GeofenceMaxRadius: 1000,
			ShareMinDuration:  15 * time.Minute,
			ShareMaxDuration:  24 * time.Hour,
			RateLimitRPS:      10,
			RateLimitBurst:    20,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"non numeric port", func(c *Config) { c.HTTPPort = ":8080" }, true},
		{"empty dsn", func(c *Config) { c.PostgresDSN = "" }, true},
		{"inverted radius", func(c *Config) { c.GeofenceMaxRadius = 10 }, true},
		{"zero min radius", func(c *Config) { c.GeofenceMinRadius = 0 }, true},
		{"inverted share", func(c *Config) { c.ShareMaxDuration = time.Minute }, true},
		{"zero burst", func(c *Config) { c.RateLimitBurst = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			if err := c.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	newLogger("prod", &buf).Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug suppressed, got %s", buf.String())
	}

	newLogger("dev", &buf).Debug("shown")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("expected JSON debug line, got %s", buf.String())
	}

	buf.Reset()
	newLogger("local", &buf).Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected text line, got %s", buf.String())
	}
}

func TestHealthChecker(t *testing.T) {
	gin.SetMode(gin.TestMode)

	up := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		deps   map[string]Pinger
		want   int
		status string
	}{
		{"all up", map[string]Pinger{"postgres": up, "redis": up}, http.StatusOK, "healthy"},
		{"one down", map[string]Pinger{"postgres": up, "redis": down}, http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			NewHealthChecker(tt.deps).Register(r)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/healthz", nil)
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
			var body struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Status != tt.status {
				t.Errorf("expected %s, got %s", tt.status, body.Status)
			}
		})
	}
}
