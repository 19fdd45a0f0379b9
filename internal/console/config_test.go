package console

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvThenFlags(t *testing.T) {
	t.Setenv("CONSOLE_ADDR", "api.internal:9000")
	t.Setenv("CONSOLE_USERNAME", "admin")
	t.Setenv("CONSOLE_PASSWORD", "from-env")
	t.Setenv("CONSOLE_PAGE_SIZE", "50")

	cfg, err := LoadConfig([]string{"-password", "from-flag", "-search", "oslo", "-timeout", "3s"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "api.internal:9000", cfg.Addr)
	assert.Equal(t, "from-flag", cfg.Password)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, Query{PageSize: 50, Search: "oslo"}, cfg.Query())
}

func TestLoadConfig_Validation(t *testing.T) {
	t.Setenv("CONSOLE_USERNAME", "admin")
	t.Setenv("CONSOLE_PASSWORD", "pw")

	tests := []struct {
		name string
		args []string
	}{
		{name: "negative page", args: []string{"-page", "-1"}},
		{name: "two actions", args: []string{"-activate", "a", "-delete", "b"}},
		{name: "unknown flag", args: []string{"-frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(tt.args, io.Discard)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingCredentials(t *testing.T) {
	t.Setenv("CONSOLE_USERNAME", "")
	t.Setenv("CONSOLE_PASSWORD", "")

	_, err := LoadConfig(nil, io.Discard)
	assert.Error(t, err)
}
