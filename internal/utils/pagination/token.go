package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/pabg92/ned-project-bw-sub001/internal/apperrors"
)

const timeFormat = time.RFC3339Nano // Use a precise time format

// Cursor is the position after the last row of a page ordered by
// (created_at DESC, id DESC).
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// EncodeCursor creates a base64 encoded token from the last row of a page.
func EncodeCursor(createdAt time.Time, id string) string {
	tokenStr := fmt.Sprintf("%s|%s", createdAt.UTC().Format(timeFormat), id)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeCursor parses a token produced by EncodeCursor. A nil or empty token
// means "first page" and yields a nil cursor.
func DecodeCursor(token *string) (*Cursor, error) {
	if token == nil || *token == "" {
		return nil, nil
	}
	decodedBytes, err := base64.URLEncoding.DecodeString(*token)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pagination token format (base64 decode): %v", apperrors.ErrValidation, err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("%w: invalid pagination token format (split)", apperrors.ErrValidation)
	}
	createdAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pagination token format (created_at parse): %v", apperrors.ErrValidation, err)
	}
	return &Cursor{CreatedAt: createdAt, ID: parts[1]}, nil
}

// Before reports whether a row at (createdAt, id) comes after the cursor in
// (created_at DESC, id DESC) order. A nil cursor admits every row.
func (c *Cursor) Before(createdAt time.Time, id string) bool {
	if c == nil {
		return true
	}
	if createdAt.Equal(c.CreatedAt) {
		return id < c.ID
	}
	return createdAt.Before(c.CreatedAt)
}

// NextToken returns the token for the page after rows, or nil when the
// limit+1 fetch found no further row.
func NextToken(fetched, limit int, lastCreatedAt time.Time, lastID string) *string {
	if fetched <= limit {
		return nil
	}
	token := EncodeCursor(lastCreatedAt, lastID)
	return &token
}
