package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/geocoder89/impactfest/internal/domain/contact"
	"github.com/geocoder89/impactfest/internal/utils"
)

var ErrDuplicateMessage = errors.New("contact message already stored")

// ContactMessagesRepo keeps contact messages in process memory; used when no
// database is configured.
type ContactMessagesRepo struct {
	mu    sync.RWMutex
	items map[string]contact.Message
}

func NewContactMessagesRepo() *ContactMessagesRepo {
	return &ContactMessagesRepo{
		items: make(map[string]contact.Message),
	}
}

func (r *ContactMessagesRepo) InsertContactMessage(_ context.Context, m contact.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[m.ID]; ok {
		return ErrDuplicateMessage
	}
	r.items[m.ID] = m
	return nil
}

func (r *ContactMessagesRepo) ListRecent(_ context.Context, limit int, after *utils.MessageCursor) ([]contact.Message, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	out := make([]contact.Message, 0, len(r.items))
	for _, m := range r.items {
		if after == nil || after.Before(m.CreatedAt, m.ID) {
			out = append(out, m)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
