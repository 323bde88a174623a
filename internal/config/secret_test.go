package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIToken(t *testing.T) {
	token, err := GenerateAPIToken()
	require.NoError(t, err)
	assert.Len(t, token, 64)

	token2, err := GenerateAPIToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, token2)
}

func TestRotateAPIToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.APIToken = "old"

	token, err := cfg.RotateAPIToken()
	require.NoError(t, err)
	assert.Equal(t, token, cfg.Server.APIToken)
	assert.NotEqual(t, "old", token)
	assert.Len(t, token, 2*apiTokenBytes)
}
