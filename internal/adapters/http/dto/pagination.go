package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// Page size bounds for catalog listings.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	// ErrInvalidCursor is returned for a cursor that does not decode.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor signals a first-page request.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest is bound from the query string.
type PaginationRequest struct {
	// Cursor is the NextCursor of the previous page.
	Cursor string `form:"cursor"`

	Limit int `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns Limit clamped to [1, MaxLimit], DefaultLimit when unset.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// DecodeCursor decodes Cursor. Returns ErrNoCursor when it is empty.
func (p *PaginationRequest) DecodeCursor() (*CursorData, error) {
	return DecodeCursor(p.Cursor)
}

// PaginatedResponse is one page of items.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`

	HasMore bool `json:"hasMore"`
}

// NewPaginatedResponse builds a page from up to limit+1 items; the extra
// item only signals that another page exists.
func NewPaginatedResponse[T any](items []T, limit int, cursorFor func(T) *CursorData) *PaginatedResponse[T] {
	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	resp := &PaginatedResponse[T]{Items: items, HasMore: hasMore}
	if resp.Items == nil {
		resp.Items = []T{}
	}

	if hasMore && len(items) > 0 && cursorFor != nil {
		resp.NextCursor = EncodeCursor(cursorFor(items[len(items)-1]))
	}

	return resp
}

// CursorData is the content of a catalog cursor: the ID of the last
// quotation of the previous page.
type CursorData struct {
	ID string `json:"id"`
}

// EncodeCursor encodes data as URL-safe base64 JSON.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor. Returns ErrNoCursor for "".
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.ID == "" {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}
