package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeCursor(t *testing.T) {
	createdAt := time.Date(2024, 5, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeCursor(createdAt, "company-42")
	assert.NotEmpty(t, token, "Token should not be empty")

	cursor, err := DecodeCursor(&token)
	require.NoError(t, err)
	assert.True(t, createdAt.Equal(cursor.CreatedAt), "Created at should match after decode")
	assert.Equal(t, "company-42", cursor.ID)
}

func TestDecodeCursor_Empty(t *testing.T) {
	cursor, err := DecodeCursor(nil)
	assert.NoError(t, err)
	assert.Nil(t, cursor)

	empty := ""
	cursor, err = DecodeCursor(&empty)
	assert.NoError(t, err)
	assert.Nil(t, cursor)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	for _, token := range []string{"%%%", encodeRaw("no-separator"), encodeRaw("yesterday|id")} {
		tok := token
		_, err := DecodeCursor(&tok)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "token %q", token)
	}
}

func TestCursorBefore(t *testing.T) {
	at := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	cursor := &Cursor{CreatedAt: at, ID: "m"}

	assert.True(t, cursor.Before(at.Add(-time.Second), "z"), "older rows come after the cursor")
	assert.False(t, cursor.Before(at.Add(time.Second), "a"), "newer rows were already served")
	assert.True(t, cursor.Before(at, "a"), "same instant, lower id comes after")
	assert.False(t, cursor.Before(at, "m"), "the cursor row itself is excluded")

	var none *Cursor
	assert.True(t, none.Before(at, "m"))
}

func TestNextToken(t *testing.T) {
	at := time.Now()
	assert.Nil(t, NextToken(5, 5, at, "x"))
	assert.Nil(t, NextToken(3, 5, at, "x"))

	token := NextToken(6, 5, at, "x")
	require.NotNil(t, token)
	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "x", cursor.ID)
}

func encodeRaw(raw string) string {
	return base64.URLEncoding.EncodeToString([]byte(raw))
}
