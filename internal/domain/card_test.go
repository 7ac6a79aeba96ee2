package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratedCard(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		card, err := NewGeneratedCard("  What is mitosis?  ", "Cell division.")
		require.NoError(t, err)
		assert.Equal(t, "What is mitosis?", card.Front)
		assert.Equal(t, "Cell division.", card.Back)
	})

	t.Run("empty front", func(t *testing.T) {
		_, err := NewGeneratedCard("   ", "back")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "front", ve.Field)
	})

	t.Run("front too long", func(t *testing.T) {
		_, err := NewGeneratedCard(strings.Repeat("a", CardFrontMaxLen+1), "back")
		assert.True(t, IsValidation(err))
	})

	t.Run("back too long", func(t *testing.T) {
		_, err := NewGeneratedCard("front", strings.Repeat("b", CardBackMaxLen+1))
		assert.True(t, IsValidation(err))
	})

	t.Run("multibyte content at the limit", func(t *testing.T) {
		_, err := NewGeneratedCard(strings.Repeat("ó", CardFrontMaxLen), "back")
		assert.NoError(t, err)
	})
}

func TestNewCard(t *testing.T) {
	content, err := NewGeneratedCard("front", "back")
	require.NoError(t, err)

	card, err := NewCard("set-1", content, CardOriginAI, true)
	require.NoError(t, err)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, "set-1", card.SetID)
	assert.Equal(t, CardOriginAI, card.Origin)
	assert.True(t, card.Edited)

	_, err = NewCard("set-1", content, CardOrigin("bogus"), false)
	assert.True(t, IsValidation(err))
}

func TestNewSet(t *testing.T) {
	set, err := NewSet("user-1", "  Biology  ")
	require.NoError(t, err)
	assert.Equal(t, "Biology", set.Name)
	assert.Equal(t, "user-1", set.UserID)
	assert.False(t, set.Deleted)

	_, err = NewSet("user-1", "   ")
	assert.True(t, IsValidation(err))

	_, err = NewSet("user-1", strings.Repeat("x", SetNameMaxLen+1))
	assert.True(t, IsValidation(err))
}

func TestSetRename(t *testing.T) {
	set, err := NewSet("user-1", "Biology")
	require.NoError(t, err)

	require.NoError(t, set.Rename("Chemistry"))
	assert.Equal(t, "Chemistry", set.Name)

	assert.Error(t, set.Rename(""))
	assert.Equal(t, "Chemistry", set.Name)
}
