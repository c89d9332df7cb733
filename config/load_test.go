package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/rlcheck/config"
)

func TestLoadDefaults(t *testing.T) {
	a := assert.New(t)
	cfg, err := config.Load([]byte(``))
	require.NoError(t, err)
	a.False(cfg.PermitStaticOwning)
	a.Empty(cfg.IgnoredExceptions)
}

func TestLoadFullConfig(t *testing.T) {
	a := assert.New(t)
	cfg, err := config.Load([]byte(`
permit_static_owning = true
strict_field_match = true
ignored_exceptions = ["java.io.IOException", "pkg.MyError"]
`))
	require.NoError(t, err)
	a.True(cfg.PermitStaticOwning)
	a.True(cfg.StrictFieldMatch)
	a.Equal([]string{"java.io.IOException", "pkg.MyError"}, cfg.IgnoredExceptions)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	_, err := config.Load([]byte(`permit_static_owning = not-a-bool`))
	assert.Error(t, err)
}
