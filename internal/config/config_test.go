package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 0},
		Database: DatabaseConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{Strategy: "hash"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidDriver(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Driver: "postgres"},
		Embedding: EmbeddingConfig{Strategy: "hash"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid driver")
	}

	expected := `database.driver must be "redis" or "bolt", got "postgres"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_MissingRedisAddrs(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "redis",
			Addrs:  []string{},
		},
		Embedding: EmbeddingConfig{Strategy: "hash"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing redis addrs")
	}
}

func TestValidate_BoltNeedsNoAddrs(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Database:  DatabaseConfig{Driver: "bolt", BoltPath: "test.db"},
		Embedding: EmbeddingConfig{Strategy: "hash"},
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidEmbeddingStrategy(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{Strategy: "word2vec"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid embedding strategy")
	}
}

func TestValidate_OpenAIRequiresAPIKey(t *testing.T) {
	cfg := Config{
		HTTP: HTTPConfig{Port: 8080},
		Database: DatabaseConfig{
			Driver: "redis",
			Addrs:  []string{"localhost:6379"},
		},
		Embedding: EmbeddingConfig{Strategy: "openai"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing openai api key")
	}

	cfg.Embedding.OpenAI.APIKey = "test-key"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error with api key set: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 10 {
		t.Errorf("expected WriteTimeoutSec=10, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Embedding.Strategy != "hash" {
		t.Errorf("expected Strategy=hash, got %q", cfg.Embedding.Strategy)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("expected Dimensions=384, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.OpenAI.Model != "text-embedding-3-small" {
		t.Errorf("expected default model, got %q", cfg.Embedding.OpenAI.Model)
	}
	if cfg.Index.HNSWM != 32 {
		t.Errorf("expected HNSWM=32, got %d", cfg.Index.HNSWM)
	}
	if cfg.Index.HNSWEFConstruct != 400 {
		t.Errorf("expected HNSWEFConstruct=400, got %d", cfg.Index.HNSWEFConstruct)
	}
	if cfg.Index.DefaultPageSize != 20 {
		t.Errorf("expected DefaultPageSize=20, got %d", cfg.Index.DefaultPageSize)
	}
	if cfg.Index.MaxPageSize != 100 {
		t.Errorf("expected MaxPageSize=100, got %d", cfg.Index.MaxPageSize)
	}
	if cfg.Storage.KeyPrefix != "recipedex:" {
		t.Errorf("expected KeyPrefix='recipedex:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.SearchCache.TTLSec != 86400 {
		t.Errorf("expected TTLSec=86400, got %d", cfg.SearchCache.TTLSec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:        HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database:    DatabaseConfig{Driver: "bolt", BoltPath: "custom.db", ReadinessTimeout: 15},
		Embedding:   EmbeddingConfig{Strategy: "token", Dimensions: 128},
		Index:       IndexConfig{HNSWM: 16, HNSWEFConstruct: 200, DefaultPageSize: 50, MaxPageSize: 500},
		Storage:     StorageConfig{KeyPrefix: "custom:"},
		SearchCache: SearchCacheConfig{TTLSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Database.Driver != "bolt" {
		t.Errorf("expected Driver=bolt, got %q", cfg.Database.Driver)
	}
	if cfg.Database.BoltPath != "custom.db" {
		t.Errorf("expected BoltPath=custom.db, got %q", cfg.Database.BoltPath)
	}
	if cfg.Embedding.Strategy != "token" {
		t.Errorf("expected Strategy=token, got %q", cfg.Embedding.Strategy)
	}
	if cfg.Embedding.Dimensions != 128 {
		t.Errorf("expected Dimensions=128, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Index.HNSWM != 16 {
		t.Errorf("expected HNSWM=16, got %d", cfg.Index.HNSWM)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
	if cfg.SearchCache.TTLSec != 60 {
		t.Errorf("expected TTLSec=60, got %d", cfg.SearchCache.TTLSec)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("RECIPEDEX_TEST_PASSWORD", "hunter2")

	in := []byte("password: ${RECIPEDEX_TEST_PASSWORD}\nprefix: ${RECIPEDEX_TEST_UNSET:-recipedex:}\nempty: ${RECIPEDEX_TEST_UNSET}\n")
	out := string(expandEnvVars(in))

	expected := "password: hunter2\nprefix: recipedex:\nempty: \n"
	if out != expected {
		t.Errorf("unexpected expansion:\ngot:  %q\nwant: %q", out, expected)
	}
}
