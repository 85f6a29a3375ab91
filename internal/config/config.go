// Package config loads Settings from environment variables via viper, with
// an optional YAML overlay file for operators who prefer a checked-in
// config over raw env vars.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings is the full set of environment-tunable knobs named in the
// external interface contract.
type Settings struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`

	GenerationModel string `mapstructure:"generation_model" yaml:"generation_model"`
	EmbeddingModel  string `mapstructure:"embedding_model" yaml:"embedding_model"`
	AnalysisModel   string `mapstructure:"analysis_model" yaml:"analysis_model"`
	WritingModel    string `mapstructure:"writing_model" yaml:"writing_model"`
	QAModel         string `mapstructure:"qa_model" yaml:"qa_model"`

	SimilarityThreshold float64 `mapstructure:"similarity_threshold" yaml:"similarity_threshold"`
	TopK                int     `mapstructure:"top_k" yaml:"top_k"`
	DefaultCoveragePct  float64 `mapstructure:"default_coverage_pct" yaml:"default_coverage_pct"`
	MaxCoveragePct      float64 `mapstructure:"max_coverage_pct" yaml:"max_coverage_pct"`

	HistoryTurns    int `mapstructure:"history_turns" yaml:"history_turns"`
	MaxHistoryChars int `mapstructure:"max_history_chars" yaml:"max_history_chars"`

	ChunkSize    int `mapstructure:"chunk_size" yaml:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap" yaml:"chunk_overlap"`
	IngestQueueDepth int `mapstructure:"ingest_queue_depth" yaml:"ingest_queue_depth"`

	EmbedderTimeoutSeconds  int `mapstructure:"embedder_timeout_seconds" yaml:"embedder_timeout_seconds"`
	GeneratorTimeoutSeconds int `mapstructure:"generator_timeout_seconds" yaml:"generator_timeout_seconds"`

	HTTPAddr string `mapstructure:"http_addr" yaml:"http_addr"`
}

// Defaults match the external interface contract exactly.
func Defaults() Settings {
	return Settings{
		DataDir:                 "./data",
		GenerationModel:         "llama3.1",
		EmbeddingModel:          "nomic-embed-text",
		AnalysisModel:           "",
		WritingModel:            "",
		QAModel:                 "",
		SimilarityThreshold:     0.35,
		TopK:                    10,
		DefaultCoveragePct:      35,
		MaxCoveragePct:          60,
		HistoryTurns:            3,
		MaxHistoryChars:         8000,
		ChunkSize:               500,
		ChunkOverlap:            100,
		IngestQueueDepth:        4,
		EmbedderTimeoutSeconds:  30,
		GeneratorTimeoutSeconds: 60,
		HTTPAddr:                ":8080",
	}
}

// Load builds Settings from defaults, an optional YAML overlay at
// yamlPath (skipped silently if empty or missing), then environment
// variables — in ascending precedence, so an environment variable
// overrides the YAML value, which overrides the default.
func Load(yamlPath string) (Settings, error) {
	s := Defaults()

	if yamlPath != "" {
		expanded, err := expandUserPath(yamlPath)
		if err != nil {
			return s, fmt.Errorf("config: %w", err)
		}
		if b, err := os.ReadFile(expanded); err == nil {
			if err := yaml.Unmarshal(b, &s); err != nil {
				return s, fmt.Errorf("config: parsing %s: %w", expanded, err)
			}
		} else if !os.IsNotExist(err) {
			return s, fmt.Errorf("config: reading %s: %w", expanded, err)
		}
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindString(v, &s.DataDir, "DATA_DIR")
	bindString(v, &s.GenerationModel, "GENERATION_MODEL")
	bindString(v, &s.EmbeddingModel, "EMBEDDING_MODEL")
	bindString(v, &s.AnalysisModel, "ANALYSIS_MODEL")
	bindString(v, &s.WritingModel, "WRITING_MODEL")
	bindString(v, &s.QAModel, "QA_MODEL")
	bindFloat(v, &s.SimilarityThreshold, "SIMILARITY_THRESHOLD")
	bindInt(v, &s.TopK, "TOP_K")
	bindFloat(v, &s.DefaultCoveragePct, "DEFAULT_COVERAGE_PCT")
	bindFloat(v, &s.MaxCoveragePct, "MAX_COVERAGE_PCT")
	bindInt(v, &s.HistoryTurns, "HISTORY_TURNS")
	bindInt(v, &s.MaxHistoryChars, "MAX_HISTORY_CHARS")
	bindInt(v, &s.ChunkSize, "CHUNK_SIZE")
	bindInt(v, &s.ChunkOverlap, "CHUNK_OVERLAP")
	bindInt(v, &s.IngestQueueDepth, "INGEST_QUEUE_DEPTH")
	bindInt(v, &s.EmbedderTimeoutSeconds, "EMBEDDER_TIMEOUT_SECONDS")
	bindInt(v, &s.GeneratorTimeoutSeconds, "GENERATOR_TIMEOUT_SECONDS")
	bindString(v, &s.HTTPAddr, "HTTP_ADDR")

	if s.AnalysisModel == "" {
		s.AnalysisModel = s.GenerationModel
	}
	if s.WritingModel == "" {
		s.WritingModel = s.GenerationModel
	}
	if s.QAModel == "" {
		s.QAModel = s.GenerationModel
	}

	expandedData, err := expandUserPath(s.DataDir)
	if err != nil {
		return s, fmt.Errorf("config: %w", err)
	}
	s.DataDir = expandedData

	return s, nil
}

func bindString(v *viper.Viper, dst *string, key string) {
	if val := v.GetString(key); val != "" {
		*dst = val
	}
}

func bindInt(v *viper.Viper, dst *int, key string) {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		*dst = v.GetInt(key)
	}
}

func bindFloat(v *viper.Viper, dst *float64, key string) {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		*dst = v.GetFloat64(key)
	}
}

// expandUserPath expands a leading ~ to the user's home directory,
// carried over from the teacher's own path-handling idiom.
func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if trimmed == "~" {
		return home, nil
	}
	if strings.HasPrefix(trimmed, "~/") {
		return filepath.Join(home, trimmed[2:]), nil
	}
	return path, nil
}
