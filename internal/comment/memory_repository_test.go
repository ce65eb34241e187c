package comment

import (
	"context"
	"testing"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(fixtures.Comments()...)

	require.NoError(t, repo.Insert(ctx, domain.Comment{ID: "n", ProductID: "3"}))
	assert.ErrorIs(t, repo.Insert(ctx, domain.Comment{ID: "n"}), domain.ErrValidation)

	list, err := repo.ListByProduct(ctx, "3")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "n", list[0].ID)

	require.NoError(t, repo.Delete(ctx, "n"))
	assert.ErrorIs(t, repo.Delete(ctx, "n"), domain.ErrNotFound)
	_, err = repo.Get(ctx, "n")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryRepository_ToggleLikeFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository(domain.Comment{ID: "z", LikedByCurrentUser: true})

	c, err := repo.ToggleLike(ctx, "z")
	require.NoError(t, err)
	assert.Zero(t, c.LikeCount)
	assert.False(t, c.LikedByCurrentUser)
}
