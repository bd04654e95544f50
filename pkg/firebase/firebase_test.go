package firebase

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVerifier_CredentialsRequired(t *testing.T) {
	_, err := NewVerifier(context.Background(), Config{ProjectID: "spinforge"})
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestNewVerifier_MissingCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service-account.json")

	_, err := NewVerifier(context.Background(), Config{CredentialsPath: path})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), path)
}
