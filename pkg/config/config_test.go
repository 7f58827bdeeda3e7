package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Brokers  []string `env:"TEST_CFG_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	LogLevel string   `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	Enabled  bool     `env:"TEST_CFG_ENABLED" envDefault:"false"`
	Amount   int      `env:"TEST_CFG_AMOUNT" envDefault:"10"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 10, cfg.Amount)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")
	t.Setenv("TEST_CFG_LOG_LEVEL", "debug")
	t.Setenv("TEST_CFG_ENABLED", "true")
	t.Setenv("TEST_CFG_AMOUNT", "3")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 3, cfg.Amount)
}

type requiredConfig struct {
	Token string `env:"TEST_CFG_TOKEN,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_AMOUNT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

type yamlDoc struct {
	Name  string   `yaml:"name"`
	Codes []string `yaml:"codes"`
}

func TestDecodeYAML(t *testing.T) {
	var doc yamlDoc
	err := DecodeYAML([]byte("name: tees\ncodes: [TSHIRTS, SUPER-TEES]\n"), &doc)

	require.NoError(t, err)
	assert.Equal(t, "tees", doc.Name)
	assert.Equal(t, []string{"TSHIRTS", "SUPER-TEES"}, doc.Codes)
}

func TestDecodeYAML_UnknownField(t *testing.T) {
	var doc yamlDoc
	err := DecodeYAML([]byte("name: tees\ncolour: red\n"), &doc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: from-file\n"), 0o600))

	var doc yamlDoc
	require.NoError(t, LoadYAMLFile(path, &doc))
	assert.Equal(t, "from-file", doc.Name)
}

func TestLoadYAMLFile_Missing(t *testing.T) {
	var doc yamlDoc
	err := LoadYAMLFile(filepath.Join(t.TempDir(), "nope.yaml"), &doc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.yaml")
}
