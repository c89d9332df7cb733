package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cockroachdb/rlcheck/config"
)

func TestExceptionIgnoredMatchesExactAndGlob(t *testing.T) {
	a := assert.New(t)

	cfg := &config.Config{IgnoredExceptions: []string{
		"java.io.IOException",
		"pkg.*Error",
	}}

	a.True(cfg.ExceptionIgnored("java.io.IOException"))
	a.True(cfg.ExceptionIgnored("pkg.MyError"))
	a.False(cfg.ExceptionIgnored("java.lang.RuntimeException"))
}

func TestExceptionIgnoredEmptyListNeverMatches(t *testing.T) {
	assert.False(t, config.Default().ExceptionIgnored("anything"))
}
