package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// MessageCursor is the keyset position of the last contact message a page
// returned. Pages are ordered newest first.
type MessageCursor struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
}

func EncodeMessageCursor(createdAt time.Time, id string) (string, error) {
	b, err := json.Marshal(MessageCursor{CreatedAt: createdAt, ID: id})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeMessageCursor(cursor string) (MessageCursor, error) {
	if cursor == "" {
		return MessageCursor{}, ErrInvalidCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return MessageCursor{}, ErrInvalidCursor
	}

	var c MessageCursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return MessageCursor{}, ErrInvalidCursor
	}
	if c.ID == "" || c.CreatedAt.IsZero() {
		return MessageCursor{}, ErrInvalidCursor
	}
	return c, nil
}

// Before reports whether a message at (createdAt, id) sorts after the cursor
// in newest-first order.
func (c MessageCursor) Before(createdAt time.Time, id string) bool {
	if createdAt.Equal(c.CreatedAt) {
		return id < c.ID
	}
	return createdAt.Before(c.CreatedAt)
}
