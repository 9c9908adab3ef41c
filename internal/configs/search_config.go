package configs

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"krisha-parser-service/internal/core/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/search_config.json
var searchConfigSchemaJSON []byte

const searchConfigSchemaURL = "search_config.json"

var searchConfigSchema = mustCompileSearchConfigSchema()

func mustCompileSearchConfigSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(searchConfigSchemaURL, bytes.NewReader(searchConfigSchemaJSON)); err != nil {
		panic(fmt.Sprintf("failed to add search config schema: %v", err))
	}
	return compiler.MustCompile(searchConfigSchemaURL)
}

// LoadSearchConfig читает и проверяет конфигурацию поиска. Любая ошибка здесь фатальна
// для запуска: обход с неполной конфигурацией не начинается.
func LoadSearchConfig(path string) (domain.SearchConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SearchConfig{}, fmt.Errorf("could not read search config %s: %w", path, err)
	}
	return ParseSearchConfig(data)
}

// ParseSearchConfig проверяет документ по JSON-схеме и разбирает его
func ParseSearchConfig(data []byte) (domain.SearchConfig, error) {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.SearchConfig{}, fmt.Errorf("search config is not a valid JSON: %w", err)
	}
	if err := searchConfigSchema.Validate(raw); err != nil {
		return domain.SearchConfig{}, fmt.Errorf("search config schema validation failed: %w", err)
	}

	var cfg domain.SearchConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.SearchConfig{}, fmt.Errorf("failed to decode search config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return cfg, nil
}
