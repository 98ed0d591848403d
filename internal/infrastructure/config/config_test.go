package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8080" || !cfg.IsDevelopment() {
		t.Errorf("unexpected server defaults: port=%s env=%s", cfg.Port, cfg.Env)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("expected 24h token ttl, got %v", cfg.TokenTTL)
	}
	want := []int{10000, 20000, 40000, 50000}
	if len(cfg.Dispatch.Radii) != len(want) {
		t.Fatalf("expected radii %v, got %v", want, cfg.Dispatch.Radii)
	}
	for i := range want {
		if cfg.Dispatch.Radii[i] != want[i] {
			t.Fatalf("expected radii %v, got %v", want, cfg.Dispatch.Radii)
		}
	}
	if cfg.Dispatch.OutreachFactor != 1.5 || cfg.Dispatch.SearchStrategy != "replace" {
		t.Errorf("unexpected dispatch defaults: %+v", cfg.Dispatch)
	}
	if cfg.Realtime.Channel != "dispatch:events" {
		t.Errorf("unexpected channel: %s", cfg.Realtime.Channel)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":               "secret",
		"ENV":                      "production",
		"DISPATCH_RADII":           "5000,15000",
		"DISPATCH_SEARCH_STRATEGY": "accumulate",
		"WS_ALLOWED_ORIGINS":       "https://app.example.com,https://ops.example.com",
		"NOTIFY_WORKERS":           "16",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.IsDevelopment() {
		t.Error("expected production env")
	}
	if len(cfg.Dispatch.Radii) != 2 || cfg.Dispatch.Radii[1] != 15000 {
		t.Errorf("unexpected radii: %v", cfg.Dispatch.Radii)
	}
	if cfg.Dispatch.SearchStrategy != "accumulate" || cfg.Dispatch.NotifyWorkers != 16 {
		t.Errorf("unexpected dispatch config: %+v", cfg.Dispatch)
	}
	if len(cfg.Realtime.AllowedOrigins) != 2 {
		t.Errorf("unexpected origins: %v", cfg.Realtime.AllowedOrigins)
	}
}

func TestLoadWith_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing secret", map[string]string{}, "JWT_SECRET"},
		{"descending radii", map[string]string{"JWT_SECRET": "s", "DISPATCH_RADII": "20000,10000"}, "ascending"},
		{"factor below one", map[string]string{"JWT_SECRET": "s", "DISPATCH_OUTREACH_FACTOR": "0.5"}, "OUTREACH_FACTOR"},
		{"unknown strategy", map[string]string{"JWT_SECRET": "s", "DISPATCH_SEARCH_STRATEGY": "random"}, "SEARCH_STRATEGY"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadWith(context.Background(), envconfig.MapLookuper(tc.env))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}
}
