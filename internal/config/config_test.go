package config

import "testing"

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "local")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.HTTP.Port != "8080" {
		t.Errorf("HTTP.Port = %q, expected 8080", cfg.HTTP.Port)
	}
	if cfg.RabbitMQ.Exchange != "hms.events" {
		t.Errorf("RabbitMQ.Exchange = %q", cfg.RabbitMQ.Exchange)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should default to enabled")
	}
	if !cfg.IsLocal() {
		t.Errorf("default env should be local, got %q", cfg.App.Env)
	}
}

func TestNewConfigBasicClients(t *testing.T) {
	t.Setenv("AUTH_BASIC_CLIENTS", "svc_a:pass_a,svc_b:pass_b,malformed")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cfg.Auth.BasicClients) != 2 {
		t.Fatalf("expected 2 clients, got %d", len(cfg.Auth.BasicClients))
	}
	if cfg.Auth.BasicClients[0].Username != "svc_a" || cfg.Auth.BasicClients[0].Password != "pass_a" {
		t.Errorf("first client = %+v", cfg.Auth.BasicClients[0])
	}
	if cfg.Auth.BasicClients[1].Username != "svc_b" {
		t.Errorf("second client = %+v", cfg.Auth.BasicClients[1])
	}
}

func TestEnvironmentNormalization(t *testing.T) {
	t.Setenv("APP_ENV", "PRODUCTION")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.IsNotLocal() {
		t.Errorf("env = %q, expected production", cfg.App.Env)
	}
}
