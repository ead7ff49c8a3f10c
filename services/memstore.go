package services

import (
	"sort"
	"sync"
	"time"

	"school-portal-server/models"
)

// MemoryStore is an in-memory MessageStore used by tests and local
// development. Messages are kept in insertion order so sorts on equal
// timestamps stay stable, matching the database's id tie-break.
type MemoryStore struct {
	mu       sync.Mutex
	nextID   uint
	messages []models.Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Insert(msg *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.ID = s.nextID
	s.nextID++
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	s.messages = append(s.messages, *msg)
	return nil
}

func (s *MemoryStore) Get(id uint) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			msg := s.messages[i]
			return &msg, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (s *MemoryStore) MarkRead(id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.messages {
		if s.messages[i].ID == id {
			s.messages[i].IsRead = true
			return nil
		}
	}
	return ErrMessageNotFound
}

func (s *MemoryStore) Inbox(userID uint, role string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, m := range s.messages {
		if m.ParentMessageID != nil {
			continue
		}
		if m.RecipientID != nil && *m.RecipientID == userID {
			out = append(out, m)
			continue
		}
		if m.TargetRole != nil && (*m.TargetRole == role || *m.TargetRole == models.AudienceAll) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Sent(userID uint) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, m := range s.messages {
		if m.ParentMessageID == nil && m.SenderID == userID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) Replies(parentID uint) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Message
	for _, m := range s.messages {
		if m.ParentMessageID != nil && *m.ParentMessageID == parentID {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CountUnread(userID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, m := range s.messages {
		if m.ParentMessageID != nil {
			continue
		}
		if m.RecipientID != nil && *m.RecipientID == userID && !m.IsRead {
			n++
		}
	}
	return n, nil
}
