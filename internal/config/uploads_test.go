package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestUploadPolicyDefaultsWithoutFile(t *testing.T) {
	holder, err := NewUploadPolicyHolderFromPaths(zaptest.NewLogger(t), t.TempDir())
	require.NoError(t, err)

	policy := holder.Get()
	assert.Equal(t, int64(5<<20), policy.MaxBytes)
	assert.Equal(t, []string{"image/png"}, policy.AllowedTypes)
	assert.Equal(t, 512, policy.MaxDimension)
}

func TestUploadPolicyReadsFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("uploads:\n  maxBytes: 1024\n  allowedTypes:\n    - image/png\n    - image/jpeg\n  maxDimension: 128\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uploads.yml"), content, 0o644))

	holder, err := NewUploadPolicyHolderFromPaths(zaptest.NewLogger(t), dir)
	require.NoError(t, err)

	policy := holder.Get()
	assert.Equal(t, int64(1024), policy.MaxBytes)
	assert.Equal(t, []string{"image/png", "image/jpeg"}, policy.AllowedTypes)
	assert.Equal(t, 128, policy.MaxDimension)
}

func TestUploadPolicyRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte("uploads:\n  maxBytes: 0\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "uploads.yml"), content, 0o644))

	_, err := NewUploadPolicyHolderFromPaths(zaptest.NewLogger(t), dir)
	assert.Error(t, err)
}

func TestUploadPolicyAllows(t *testing.T) {
	policy := DefaultUploadPolicy()

	assert.True(t, policy.Allows("image/png"))
	assert.True(t, policy.Allows("IMAGE/PNG"))
	assert.False(t, policy.Allows("image/jpeg"))
	assert.False(t, policy.Allows(""))
}
