package config

import (
	"reflect"
	"testing"
	"time"
)

// --- MustLoad ---

func TestMustLoad_PanicsOnInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "verbose") // invalid -> Load() error
	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("MustLoad should panic on invalid config")
		}
	}()
	_ = MustLoad()
}

// --- Load success + normalization + parsing ---

func TestLoad_Success_DefaultsAndOverrides(t *testing.T) {
	// Server timeouts / sizes (valid)
	t.Setenv("PORT", "8088")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("READ_HEADER_TIMEOUT", "1s")
	t.Setenv("WRITE_TIMEOUT", "3s")
	t.Setenv("IDLE_TIMEOUT", "4s")
	t.Setenv("MAX_HEADER_BYTES", "8192")
	t.Setenv("GIN_MODE", "weird") // will normalize to "release"

	// Logging
	t.Setenv("LOG_LEVEL", "warning") // will normalize to "warn"
	t.Setenv("LOG_PRETTY", "yes")
	t.Setenv("API_BASE_PATH", "api/v1/") // no leading slash + trailing slash -> "/api/v1"

	// Storage
	t.Setenv("UPLOAD_DIR", "in")
	t.Setenv("OUTPUT_DIR", "out")
	t.Setenv("MAX_UPLOAD_BYTES", "1048576")

	// Retention (bare numbers, fractional allowed)
	t.Setenv("FILE_CLEANUP_MINUTES", "2")
	t.Setenv("DOWNLOAD_CLEANUP_MINUTES", "0.5")
	t.Setenv("CLEANUP_INTERVAL_SECONDS", "15")

	// Rate limiting (fractional hours; invalids fall back to defaults)
	t.Setenv("RATE_LIMIT_HOURS", "0.1")
	t.Setenv("RATE_RPS", "x")      // -> default 5.0
	t.Setenv("RATE_BURST", "nope") // -> default 10

	// Web protection
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.com , , http://b ")
	t.Setenv("ENABLE_HSTS", "TRUE")
	t.Setenv("HSTS_MAX_AGE", "24h")

	// OTEL
	t.Setenv("OTEL_ENABLED", "1")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel:4317")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "0")
	t.Setenv("OTEL_SERVICE_NAME", "svc")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.75")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Server
	if cfg.Port != "8088" ||
		cfg.ReadTimeout != 2*time.Second ||
		cfg.ReadHeaderTimeout != 1*time.Second ||
		cfg.WriteTimeout != 3*time.Second ||
		cfg.IdleTimeout != 4*time.Second ||
		cfg.MaxHeaderBytes != 8192 ||
		cfg.GinMode != "release" {
		t.Fatalf("server fields unexpected: %+v", cfg)
	}

	// Logging
	if cfg.LogLevel != "warn" || !cfg.LogPretty || cfg.APIBasePath != "/api/v1" {
		t.Fatalf("logging fields unexpected: %+v", cfg)
	}

	// Storage
	if cfg.UploadDir != "in" || cfg.OutputDir != "out" || cfg.MaxUploadBytes != 1<<20 {
		t.Fatalf("storage fields unexpected: %+v", cfg)
	}

	// Retention
	if cfg.FileTTL != 2*time.Minute ||
		cfg.DownloadTTL != 30*time.Second ||
		cfg.CleanupInterval != 15*time.Second {
		t.Fatalf("retention fields unexpected: %+v", cfg)
	}

	// Rate limiting
	if cfg.RateLimitWindow != 6*time.Minute {
		t.Fatalf("RATE_LIMIT_HOURS=0.1 should be 6m, got %v", cfg.RateLimitWindow)
	}
	if cfg.RateRPS != 5.0 || cfg.RateBurst != 10 {
		t.Fatalf("rate guard unexpected: %+v", cfg)
	}

	// Web protection
	if !reflect.DeepEqual(cfg.CORS.AllowedOrigins, []string{"https://a.com", "http://b"}) {
		t.Fatalf("cors origins unexpected: %#v", cfg.CORS.AllowedOrigins)
	}
	if !cfg.Security.EnableHSTS || cfg.Security.HSTSMaxAge != 24*time.Hour {
		t.Fatalf("security fields unexpected: %+v", cfg.Security)
	}

	// OTEL
	if !cfg.OTEL.Enabled || cfg.OTEL.Endpoint != "otel:4317" || cfg.OTEL.Insecure ||
		cfg.OTEL.ServiceName != "svc" || cfg.OTEL.SampleRatio != 0.75 {
		t.Fatalf("otel fields unexpected: %+v", cfg.OTEL)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults errored: %v", err)
	}
	if cfg.UploadDir != "uploads" || cfg.OutputDir != "outputs" {
		t.Fatalf("default dirs unexpected: %q %q", cfg.UploadDir, cfg.OutputDir)
	}
	if cfg.RateLimitWindow != 24*time.Hour {
		t.Fatalf("default window = %v, want 24h", cfg.RateLimitWindow)
	}
	if cfg.FileTTL != 10*time.Minute || cfg.DownloadTTL != 5*time.Minute {
		t.Fatalf("default TTLs unexpected: %v %v", cfg.FileTTL, cfg.DownloadTTL)
	}
	if cfg.CleanupInterval != 30*time.Second {
		t.Fatalf("default cleanup interval = %v", cfg.CleanupInterval)
	}
	if cfg.APIBasePath != "/" {
		t.Fatalf("default base path = %q", cfg.APIBasePath)
	}
}

// --- validation failures ---

func TestLoad_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}},
		{"zero timeout", map[string]string{"READ_TIMEOUT": "0s"}},
		{"bad file ttl", map[string]string{"FILE_CLEANUP_MINUTES": "-1"}},
		{"bad download ttl", map[string]string{"DOWNLOAD_CLEANUP_MINUTES": "0"}},
		{"bad interval", map[string]string{"CLEANUP_INTERVAL_SECONDS": "-5"}},
		{"bad window", map[string]string{"RATE_LIMIT_HOURS": "0"}},
		{"bad upload cap", map[string]string{"MAX_UPLOAD_BYTES": "-1"}},
		{"bad sampler", map[string]string{"OTEL_TRACES_SAMPLER_ARG": "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s", tc.name)
			}
		})
	}
}

func TestNormalizeBasePath(t *testing.T) {
	if got := normalizeBasePath(""); got != "/" {
		t.Fatalf("empty -> %q", got)
	}
	if got := normalizeBasePath("api/"); got != "/api" {
		t.Fatalf("api/ -> %q", got)
	}
	if got := normalizeBasePath("/"); got != "/" {
		t.Fatalf("/ -> %q", got)
	}
}
