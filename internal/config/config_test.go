package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("API_URL", "http://localhost:3000/")
	t.Setenv("APP_URL", "http://localhost:8082")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", cfg.Port)
	}
	if cfg.APIURL != "http://localhost:3000" {
		t.Errorf("Expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.SessionRedirectURL != cfg.AppURL {
		t.Errorf("Expected session redirect to default to app URL, got %q", cfg.SessionRedirectURL)
	}
	if cfg.CookieTTL() != 7*24*time.Hour {
		t.Errorf("Expected 7 day cookie TTL, got %v", cfg.CookieTTL())
	}
	if cfg.PrimeAICookie {
		t.Error("Expected AI cookie priming to be disabled by default")
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected localhost app URL to be development")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_URL", "https://app.example.com")
	t.Setenv("SESSION_REDIRECT_URL", "https://workspace.example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("GOOGLE_CLIENT_ID", "client-123")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.SessionRedirectURL != "https://workspace.example.com" {
		t.Errorf("unexpected session redirect: %q", cfg.SessionRedirectURL)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 allowed origins, got %v", cfg.AllowedOrigins)
	}
	if cfg.Google.ClientID != "client-123" {
		t.Errorf("unexpected client id: %q", cfg.Google.ClientID)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("unexpected request timeout: %v", cfg.RequestTimeout)
	}
	if cfg.IsDevelopment() {
		t.Error("Expected production app URL not to be development")
	}
}

func TestLoadRejectsInvalidURL(t *testing.T) {
	t.Setenv("APP_URL", "ftp://example.com")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for non-http APP_URL")
	}
	if !strings.Contains(err.Error(), "APP_URL") {
		t.Errorf("Expected error to mention APP_URL, got %v", err)
	}
}

func TestValidateCookieDays(t *testing.T) {
	cfg := &Config{
		Port:               "8080",
		APIURL:             "http://localhost:3000",
		AppURL:             "http://localhost:8082",
		SessionRedirectURL: "http://localhost:8082",
		DBPath:             "x.db",
		CookieDays:         0,
		RequestTimeout:     time.Second,
		Catalog:            CatalogConfig{PruneInterval: time.Minute},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected error for zero cookie days")
	}
}
