package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetproposal/services"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Data)
	assert.Equal(t, "output", cfg.Output.Dir)
	assert.Equal(t, "proposal", cfg.Output.Name)
	assert.Equal(t, []services.Format{services.FormatXLSX, services.FormatPDF, services.FormatCSV}, cfg.Formats())
	assert.True(t, cfg.Excel.Formulas)
	assert.Equal(t, "1", cfg.Tolerance().String())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PROPOSAL_OUTPUT_DIR", "/tmp/proposals")
	t.Setenv("PROPOSAL_OUTPUT_FORMATS", "pdf,csv")
	t.Setenv("PROPOSAL_EXCEL_FORMULAS", "false")
	t.Setenv("PROPOSAL_LOGGING_FORMAT", "json")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/proposals", cfg.Output.Dir)
	assert.Equal(t, []services.Format{services.FormatPDF, services.FormatCSV}, cfg.Formats())
	assert.False(t, cfg.Excel.Formulas)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proposal.yaml")
	content := "data: custom.yaml\noutput:\n  name: sera-2026\nreconcile:\n  tolerance: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := newViper(t)
	require.NoError(t, ReadFile(v, path))
	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "custom.yaml", cfg.Data)
	assert.Equal(t, "sera-2026", cfg.Output.Name)
	assert.Equal(t, "output", cfg.Output.Dir, "unset keys keep their defaults")
	assert.Equal(t, "0.5", cfg.Tolerance().String())
}

func TestReadFile_ExplicitPathMustExist(t *testing.T) {
	err := ReadFile(newViper(t), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestReadFile_NoDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NoError(t, ReadFile(newViper(t), ""))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Output:    Output{Dir: "out", Name: "proposal", Formats: []string{"xlsx"}},
			Reconcile: Reconcile{Tolerance: 1},
			Logging:   Logging{Level: "info", Format: "console"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing dir", func(c *Config) { c.Output.Dir = "" }, "output.dir"},
		{"name with directory", func(c *Config) { c.Output.Name = "a/b" }, "output.name"},
		{"no formats", func(c *Config) { c.Output.Formats = nil }, "output.formats"},
		{"unknown format", func(c *Config) { c.Output.Formats = []string{"docx"} }, "output.formats"},
		{"negative tolerance", func(c *Config) { c.Reconcile.Tolerance = -1 }, "reconcile.tolerance"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantKey == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}
