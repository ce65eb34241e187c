package comment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockActors struct {
	actor domain.Actor
	admin bool
}

func (m *mockActors) Actor() domain.Actor { return m.actor }
func (m *mockActors) IsAdmin() bool       { return m.admin }

func newTestStore(actors *mockActors) *Store {
	return NewStore(NewMemoryRepository(fixtures.Comments()...), actors, Config{}, nil)
}

func TestGetCommentsByProductID(t *testing.T) {
	s := newTestStore(&mockActors{actor: domain.Guest()})

	comments, err := s.GetCommentsByProductID(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "1", comments[0].ID)
	assert.Equal(t, "2", comments[1].ID)

	none, err := s.GetCommentsByProductID(context.Background(), "404")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestAddComment_PrependsAsGuest(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(&mockActors{actor: domain.Guest()})

	c, err := s.AddComment(ctx, "1", 5, "  Lovely coconut  ")
	require.NoError(t, err)
	assert.Equal(t, "Lovely coconut", c.Body)
	assert.Equal(t, domain.GuestID, c.AuthorID)
	assert.Equal(t, domain.GuestDisplayName, c.DisplayName)
	assert.Zero(t, c.LikeCount)
	assert.False(t, c.LikedByCurrentUser)

	comments, err := s.GetCommentsByProductID(ctx, "1")
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, c.ID, comments[0].ID)
}

func TestAddComment_UsesLoggedInUser(t *testing.T) {
	s := newTestStore(&mockActors{actor: domain.Actor{ID: "u-9", DisplayName: "Ally", Avatar: "/a.png", Authenticated: true}})

	c, err := s.AddComment(context.Background(), "2", 4, "good")
	require.NoError(t, err)
	assert.Equal(t, "u-9", c.AuthorID)
	assert.Equal(t, "Ally", c.DisplayName)
	assert.Equal(t, "/a.png", c.Avatar)
}

func TestAddComment_Validation(t *testing.T) {
	s := newTestStore(&mockActors{actor: domain.Guest()})
	ctx := context.Background()

	for name, tc := range map[string]struct {
		product string
		rating  int
		body    string
	}{
		"rating too low":  {"1", 0, "x"},
		"rating too high": {"1", 6, "x"},
		"blank body":      {"1", 3, "   "},
		"no product":      {"", 3, "x"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := s.AddComment(ctx, tc.product, tc.rating, tc.body)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	comments, err := s.GetCommentsByProductID(ctx, "1")
	require.NoError(t, err)
	assert.Len(t, comments, 2)
}

func TestLikeComment_TwiceRestores(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(&mockActors{actor: domain.Guest()})

	liked, err := s.LikeComment(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 13, liked.LikeCount)
	assert.True(t, liked.LikedByCurrentUser)

	unliked, err := s.LikeComment(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 12, unliked.LikeCount)
	assert.False(t, unliked.LikedByCurrentUser)

	_, err = s.LikeComment(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLikeComment_ConcurrentTogglesAreNotLost(t *testing.T) {
	ctx := context.Background()
	s := NewStore(NewMemoryRepository(fixtures.Comments()...), &mockActors{actor: domain.Guest()}, Config{LikeDelay: time.Millisecond}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 51; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.LikeComment(ctx, "3")
			assert.NoError(t, err)
			// count and flag always move together
			if c.LikedByCurrentUser {
				assert.Equal(t, 9, c.LikeCount)
			} else {
				assert.Equal(t, 8, c.LikeCount)
			}
		}()
	}
	wg.Wait()

	comments, err := s.GetCommentsByProductID(ctx, "2")
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.True(t, comments[0].LikedByCurrentUser, "an odd number of toggles ends liked")
	assert.Equal(t, 9, comments[0].LikeCount)
}

func TestDeleteComment_Authorisation(t *testing.T) {
	ctx := context.Background()

	t.Run("guest is refused", func(t *testing.T) {
		s := newTestStore(&mockActors{actor: domain.Guest()})
		assert.ErrorIs(t, s.DeleteComment(ctx, "1"), domain.ErrForbidden)
	})

	t.Run("another user is refused", func(t *testing.T) {
		s := newTestStore(&mockActors{actor: domain.Actor{ID: "2", Authenticated: true}})
		assert.ErrorIs(t, s.DeleteComment(ctx, "1"), domain.ErrForbidden)
	})

	t.Run("author may delete", func(t *testing.T) {
		s := newTestStore(&mockActors{actor: domain.Actor{ID: "1", Authenticated: true}})
		require.NoError(t, s.DeleteComment(ctx, "1"))
		comments, err := s.GetCommentsByProductID(ctx, "1")
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "2", comments[0].ID)
	})

	t.Run("admin may delete", func(t *testing.T) {
		s := newTestStore(&mockActors{actor: domain.Guest(), admin: true})
		require.NoError(t, s.DeleteComment(ctx, "4"))
		assert.ErrorIs(t, s.DeleteComment(ctx, "4"), domain.ErrNotFound)
	})
}

func TestCancelledBeforeMutation(t *testing.T) {
	s := NewStore(NewMemoryRepository(fixtures.Comments()...), &mockActors{actor: domain.Guest()}, Config{LikeDelay: time.Minute}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LikeComment(ctx, "1")
	require.ErrorIs(t, err, context.Canceled)

	comments, err := s.GetCommentsByProductID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 12, comments[0].LikeCount)
	assert.False(t, s.Busy())
}
