package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servibid/internal/testutil/memstore"
	"servibid/pkg/errors"
)

const catalogYAML = `
services:
  - name: Leak Repair
    category: Plumbing
    description: Pipes and taps
  - id: custom-id
    name: Drain Cleaning
    category: Plumbing
  - name: Wall Painting
    category: Painting
`

func TestSeedFromYAML(t *testing.T) {
	store := memstore.New()
	uc := NewCatalogUseCase(store.Services())
	ctx := context.Background()

	n, err := uc.SeedFromYAML(ctx, []byte(catalogYAML))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = uc.SeedFromYAML(ctx, []byte(catalogYAML))
	require.NoError(t, err)

	plumbing, err := uc.ListByCategory(ctx, "Plumbing")
	require.NoError(t, err)
	require.Len(t, plumbing, 2, "reseeding does not duplicate")
	assert.Equal(t, "custom-id", plumbing[0].ID)
	assert.Equal(t, "plumbing-leak-repair", plumbing[1].ID)

	_, err = uc.ListByCategory(ctx, "")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestSeedFromYAMLRejectsIncompleteEntries(t *testing.T) {
	uc := NewCatalogUseCase(memstore.New().Services())

	_, err := uc.SeedFromYAML(context.Background(), []byte("services:\n  - name: Orphan\n"))
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.SeedFromYAML(context.Background(), []byte("services: [unclosed"))
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "a-c-repair-install", slug("  A/C Repair & Install "))
	assert.Equal(t, "plumbing", slug("Plumbing"))
}
