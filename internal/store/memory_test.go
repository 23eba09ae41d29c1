// internal/store/memory_test.go
package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"librekeep/internal/models"
)

func TestMemoryFindByTitleFirstInsertedWins(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	first, err := st.Books.Insert(ctx, &models.Book{Title: "Dune"})
	require.NoError(t, err)
	_, err = st.Books.Insert(ctx, &models.Book{Title: "Dune"})
	require.NoError(t, err)

	found, err := st.Books.FindByTitle(ctx, "Dune")
	require.NoError(t, err)
	assert.Equal(t, first, found.ID)
}

func TestMemoryReturnsCopies(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	id, err := st.Books.Insert(ctx, &models.Book{Title: "Original"})
	require.NoError(t, err)

	got, err := st.Books.FindByID(ctx, id)
	require.NoError(t, err)
	got.Title = "Mutated"

	// Mutating the returned value must not leak into the store.
	again, err := st.Books.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Original", again.Title)
}

func TestMemoryMembersListSortsByMembershipDate(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	older, err := st.Members.Insert(ctx, &models.Member{
		Username:       "older",
		MembershipDate: time.Now().AddDate(0, -1, 0),
	})
	require.NoError(t, err)
	newer, err := st.Members.Insert(ctx, &models.Member{
		Username:       "newer",
		MembershipDate: time.Now(),
	})
	require.NoError(t, err)

	members, err := st.Members.List(ctx)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, newer, members[0].ID)
	assert.Equal(t, older, members[1].ID)
}

func TestMemoryClearAuthor(t *testing.T) {
	st := NewMemory()
	ctx := context.Background()

	author, err := st.Authors.Insert(ctx, &models.Author{AuthorName: "A"})
	require.NoError(t, err)

	linked, err := st.Books.Insert(ctx, &models.Book{Title: "Linked", Author: &author})
	require.NoError(t, err)
	other := primitive.NewObjectID()
	unlinked, err := st.Books.Insert(ctx, &models.Book{Title: "Other", Author: &other})
	require.NoError(t, err)

	require.NoError(t, st.Books.ClearAuthor(ctx, author))

	b, err := st.Books.FindByID(ctx, linked)
	require.NoError(t, err)
	assert.Nil(t, b.Author)

	b, err = st.Books.FindByID(ctx, unlinked)
	require.NoError(t, err)
	require.NotNil(t, b.Author)
	assert.Equal(t, other, *b.Author)
}
