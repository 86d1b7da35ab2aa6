package bootstrap

import (
	"testing"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "cinevote",
		SessionKey:    "0123456789abcdef0123456789abcdef",
		TMDBAPIKey:    "test-key",
		BaseURL:       "http://localhost:3000",
	}
}

func TestValidateConfig_OK(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	if err := ValidateConfig(coreCfg, validAppConfig(), zap.NewNop()); err != nil {
		t.Fatalf("ValidateConfig failed: %v", err)
	}
}

func TestValidateConfig_RequiresTMDBKey(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	cfg := validAppConfig()
	cfg.TMDBAPIKey = ""
	if err := ValidateConfig(coreCfg, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for missing tmdb_api_key")
	}
}

func TestValidateConfig_BadMongoURI(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	cfg := validAppConfig()
	cfg.MongoURI = "not-a-uri"
	if err := ValidateConfig(coreCfg, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for invalid mongo uri")
	}
}

func TestValidateConfig_HalfGoogleCredentials(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "dev"}
	cfg := validAppConfig()
	cfg.GoogleClientID = "client-id-without-secret"
	if err := ValidateConfig(coreCfg, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error when only one google credential is set")
	}
}

func TestValidateConfig_ProdRejectsDefaultSessionKey(t *testing.T) {
	coreCfg := &config.CoreConfig{Env: "prod"}
	cfg := validAppConfig()
	cfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"
	if err := ValidateConfig(coreCfg, cfg, zap.NewNop()); err == nil {
		t.Fatal("expected error for default session key in prod")
	}
}
