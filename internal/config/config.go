// Package config loads and saves todozi's workspace configuration file,
// config.hlx (spec §6.2). The format is a small line-oriented
// "section.key = value" text format, not YAML/JSON/TOML — no example
// repo's ecosystem library targets this exact shape, so the reader/writer
// here is hand-rolled (see DESIGN.md). The Config struct itself follows the
// teacher's DefaultConfig()-with-typed-subsections shape.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/todozi/todozi/internal/logging"
)

// EmbeddingConfig configures the embedding engine and its cache.
type EmbeddingConfig struct {
	ModelName      string `hlx:"model_name"`
	Dimensions     int    `hlx:"dimensions"`
	CacheTTLSecs   int    `hlx:"cache_ttl_seconds"`
	MaxCacheMB     int    `hlx:"max_cache_mb"`
	Provider       string `hlx:"provider"`        // "ollama" or "genai"
	OllamaEndpoint string `hlx:"ollama_endpoint"`
	GenAIAPIKey    string `hlx:"genai_api_key"`
	// ANNIndexEnabled turns on the sqlite-backed ANN acceleration layer
	// (internal/embedding.SQLiteANNIndex) mirroring the cache file into
	// <workspace>/embeddings/ann.sqlite3 (spec §6.5's required container
	// stays canonical; this is a derived, rebuildable speed-up).
	ANNIndexEnabled bool `hlx:"ann_index_enabled"`
}

// StorageConfig configures the on-disk workspace layout.
type StorageConfig struct {
	Root string `hlx:"root"`
}

// SchemaConfig tracks the persisted schema version for migrations.
type SchemaConfig struct {
	Version int `hlx:"version"`
}

// LoggingConfig mirrors logging.Config, expressed in config.hlx terms.
type LoggingConfig struct {
	DebugMode  bool            `hlx:"debug_mode"`
	Level      string          `hlx:"level"`
	JSONFormat bool            `hlx:"json_format"`
	Categories map[string]bool `hlx:"-"` // logging.categories.<name> = true/false
}

// Config holds all todozi configuration loaded from config.hlx.
type Config struct {
	Embedding EmbeddingConfig
	Storage   StorageConfig
	Schema    SchemaConfig
	Logging   LoggingConfig
}

// CurrentSchemaVersion is the schema version this build of todozi writes.
const CurrentSchemaVersion = 1

// DefaultConfig returns the configuration used when no config.hlx exists.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	root := ".todozi"
	if err == nil {
		root = filepath.Join(home, ".todozi")
	}
	return &Config{
		Embedding: EmbeddingConfig{
			ModelName:      "embeddinggemma",
			Dimensions:     384,
			CacheTTLSecs:   3600,
			MaxCacheMB:     256,
			Provider:       "ollama",
			OllamaEndpoint: "http://localhost:11434",
			ANNIndexEnabled: false,
		},
		Storage: StorageConfig{Root: root},
		Schema:  SchemaConfig{Version: CurrentSchemaVersion},
		Logging: LoggingConfig{
			DebugMode:  false,
			Level:      "info",
			JSONFormat: false,
			Categories: map[string]bool{},
		},
	}
}

// Path returns the default config.hlx path rooted at storageRoot.
func Path(storageRoot string) string {
	return filepath.Join(storageRoot, "config.hlx")
}

// Load reads config.hlx from storageRoot, or returns DefaultConfig() if it
// does not exist yet (first run).
func Load(storageRoot string) (*Config, error) {
	path := Path(storageRoot)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.Storage.Root = storageRoot
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := DefaultConfig()
	cfg.Storage.Root = storageRoot

	sections, err := parseHLX(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	applySection(sections["embedding"], &cfg.Embedding)
	applySection(sections["storage"], &cfg.Storage)
	applySection(sections["schema"], &cfg.Schema)
	applySection(sections["logging"], &cfg.Logging)
	cfg.Logging.Categories = sections.boolSubsection("logging", "categories")

	return cfg, nil
}

// Save serialises cfg back to config.hlx under cfg.Storage.Root.
func Save(cfg *Config) error {
	if err := os.MkdirAll(cfg.Storage.Root, 0755); err != nil {
		return fmt.Errorf("failed to create workspace root: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# todozi workspace configuration\n\n")

	sb.WriteString("[embedding]\n")
	fmt.Fprintf(&sb, "model_name = %s\n", cfg.Embedding.ModelName)
	fmt.Fprintf(&sb, "dimensions = %d\n", cfg.Embedding.Dimensions)
	fmt.Fprintf(&sb, "cache_ttl_seconds = %d\n", cfg.Embedding.CacheTTLSecs)
	fmt.Fprintf(&sb, "max_cache_mb = %d\n", cfg.Embedding.MaxCacheMB)
	fmt.Fprintf(&sb, "provider = %s\n", cfg.Embedding.Provider)
	fmt.Fprintf(&sb, "ollama_endpoint = %s\n", cfg.Embedding.OllamaEndpoint)
	if cfg.Embedding.GenAIAPIKey != "" {
		fmt.Fprintf(&sb, "genai_api_key = %s\n", cfg.Embedding.GenAIAPIKey)
	}
	fmt.Fprintf(&sb, "ann_index_enabled = %v\n", cfg.Embedding.ANNIndexEnabled)
	sb.WriteString("\n[storage]\n")
	fmt.Fprintf(&sb, "root = %s\n", cfg.Storage.Root)

	sb.WriteString("\n[schema]\n")
	fmt.Fprintf(&sb, "version = %d\n", cfg.Schema.Version)

	sb.WriteString("\n[logging]\n")
	fmt.Fprintf(&sb, "debug_mode = %v\n", cfg.Logging.DebugMode)
	fmt.Fprintf(&sb, "level = %s\n", cfg.Logging.Level)
	fmt.Fprintf(&sb, "json_format = %v\n", cfg.Logging.JSONFormat)

	if len(cfg.Logging.Categories) > 0 {
		sb.WriteString("\n[logging.categories]\n")
		names := make([]string, 0, len(cfg.Logging.Categories))
		for name := range cfg.Logging.Categories {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "%s = %v\n", name, cfg.Logging.Categories[name])
		}
	}

	path := Path(cfg.Storage.Root)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to finalize config: %w", err)
	}
	return nil
}

// ToLoggingConfig adapts config.LoggingConfig to logging.Config.
func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		DebugMode:  c.Logging.DebugMode,
		Categories: c.Logging.Categories,
		Level:      c.Logging.Level,
		JSONFormat: c.Logging.JSONFormat,
	}
}

// sections maps "section" -> "key" -> "value" for top-level pairs, and
// additionally keeps dotted two-level sections like "logging.categories".
type sections map[string]map[string]string

func (s sections) boolSubsection(section, sub string) map[string]bool {
	kv, ok := s[section+"."+sub]
	if !ok {
		return map[string]bool{}
	}
	out := make(map[string]bool, len(kv))
	for k, v := range kv {
		b, _ := strconv.ParseBool(v)
		out[k] = b
	}
	return out
}

// parseHLX parses the line-oriented "[section]\nkey = value" format used by
// config.hlx. Comments start with '#'. Blank lines are ignored.
func parseHLX(data []byte) (sections, error) {
	out := make(sections)
	current := ""
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")
			if _, ok := out[current]; !ok {
				out[current] = make(map[string]string)
			}
			continue
		}
		idx := strings.Index(line, "=")
		if idx < 0 {
			return nil, fmt.Errorf("line %d: expected 'key = value', got %q", lineNo, line)
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if current == "" {
			return nil, fmt.Errorf("line %d: key %q outside of any [section]", lineNo, key)
		}
		out[current][key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// applySection applies a parsed section's key/values onto a struct whose
// fields carry an `hlx:"key"` tag, via simple reflection-free type switches.
func applySection(kv map[string]string, target interface{}) {
	if kv == nil {
		return
	}
	switch t := target.(type) {
	case *EmbeddingConfig:
		if v, ok := kv["model_name"]; ok {
			t.ModelName = v
		}
		if v, ok := kv["dimensions"]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				t.Dimensions = n
			}
		}
		if v, ok := kv["cache_ttl_seconds"]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				t.CacheTTLSecs = n
			}
		}
		if v, ok := kv["max_cache_mb"]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				t.MaxCacheMB = n
			}
		}
		if v, ok := kv["provider"]; ok {
			t.Provider = v
		}
		if v, ok := kv["ollama_endpoint"]; ok {
			t.OllamaEndpoint = v
		}
		if v, ok := kv["genai_api_key"]; ok {
			t.GenAIAPIKey = v
		}
		if v, ok := kv["ann_index_enabled"]; ok {
			b, _ := strconv.ParseBool(v)
			t.ANNIndexEnabled = b
		}
	case *StorageConfig:
		if v, ok := kv["root"]; ok && v != "" {
			t.Root = v
		}
	case *SchemaConfig:
		if v, ok := kv["version"]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				t.Version = n
			}
		}
	case *LoggingConfig:
		if v, ok := kv["debug_mode"]; ok {
			b, _ := strconv.ParseBool(v)
			t.DebugMode = b
		}
		if v, ok := kv["level"]; ok {
			t.Level = v
		}
		if v, ok := kv["json_format"]; ok {
			b, _ := strconv.ParseBool(v)
			t.JSONFormat = b
		}
	}
}
