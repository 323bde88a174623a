package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// apiTokenBytes is the entropy behind a server.api_token.
const apiTokenBytes = 32

// GenerateAPIToken returns a random hex token for server.api_token, the
// Bearer credential the daemon requires on /api/v1 routes.
func GenerateAPIToken() (string, error) {
	b := make([]byte, apiTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating api token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// RotateAPIToken replaces Server.APIToken with a fresh token and returns it.
// A running daemon keeps accepting the old token until it restarts.
func (c *Config) RotateAPIToken() (string, error) {
	token, err := GenerateAPIToken()
	if err != nil {
		return "", err
	}
	c.Server.APIToken = token
	return token, nil
}
