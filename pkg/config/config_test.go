package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	Token string `yaml:"token"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ExpandsEnvAndKeepsDefaults(t *testing.T) {
	t.Setenv("SAMPLE_TOKEN", "s3cret")
	path := writeFile(t, "token: ${SAMPLE_TOKEN}\nport: 9000\n")

	cfg := sample{Name: "default"}
	require.NoError(t, Load(path, &cfg))
	assert.Equal(t, sample{Name: "default", Port: 9000, Token: "s3cret"}, cfg)
}

func TestLoad_ValidationError(t *testing.T) {
	path := writeFile(t, "port: 0\n")
	err := Load(path, &sample{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeFile(t, "port: [\n")
	assert.Error(t, Load(path, &sample{Port: 1}))
}

func TestLoadOptional_MissingFile(t *testing.T) {
	cfg := sample{Port: 8080}
	require.NoError(t, LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &cfg))
	assert.Equal(t, 8080, cfg.Port, "defaults changed")

	assert.Error(t, LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), &sample{}),
		"invalid defaults should still fail validation")
}
