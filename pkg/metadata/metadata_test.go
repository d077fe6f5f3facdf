package metadata

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signedAt = time.Date(2024, 5, 10, 6, 0, 0, 0, time.UTC)

func TestSignAndVerify(t *testing.T) {
	signed := Sign("# Digest\n\nbody\n", true, "v1.0", signedAt)

	ok, err := Verify(signed)
	require.NoError(t, err)
	assert.True(t, ok)

	meta, clean := Extract(signed)
	require.NotNil(t, meta)
	assert.Equal(t, "# Digest\n\nbody", clean)
	assert.True(t, meta.Validation)
	assert.Equal(t, "v1.0", meta.Version)
	assert.True(t, signedAt.Equal(meta.LastModify))
	assert.Len(t, meta.Hash, 64)
}

func TestSign_ReplacesExistingBlock(t *testing.T) {
	first := Sign("body", false, "", signedAt)
	second := Sign(first, false, "", signedAt.Add(time.Hour))

	assert.Equal(t, 1, strings.Count(second, TagStart))
	assert.NotContains(t, second, "VERSION:")

	ok, err := Verify(second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerify_DetectsEdits(t *testing.T) {
	signed := Sign("original body", true, "v1.0", signedAt)
	tampered := strings.Replace(signed, "original", "edited", 1)

	ok, err := Verify(tampered)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrHashMismatch)
}

func TestVerify_NoBlock(t *testing.T) {
	ok, err := Verify("plain markdown")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoMetadataBlock)
}

func TestVerify_NoHash(t *testing.T) {
	doc := "body\n\n<!-- METADATA_START\nVALIDATION: TRUE\nMETADATA_END -->"

	ok, err := Verify(doc)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrNoHashFound)
}
