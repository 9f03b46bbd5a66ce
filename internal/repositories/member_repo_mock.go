package repositories

import (
	"fmt"
	"sync"

	"fluxmall/internal/models"

	"github.com/google/uuid"
)

// MockMemberRepository is an in-memory implementation of MemberRepository.
type MockMemberRepository struct {
	members map[string]models.Member
	mu      sync.RWMutex
}

// NewMockMemberRepository creates a new instance of MockMemberRepository.
func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{
		members: make(map[string]models.Member),
	}
}

// Create adds a new member.
func (r *MockMemberRepository) Create(member *models.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if member.ID == "" {
		member.ID = uuid.New().String()
	}
	r.members[member.ID] = *member
	return nil
}

// GetByUsername returns a member by their username.
func (r *MockMemberRepository) GetByUsername(username string) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, member := range r.members {
		if member.Username == username {
			return &member, nil
		}
	}
	return nil, fmt.Errorf("member with username %s: %w", username, models.ErrNotFound)
}

// GetByEmail returns a member by their email.
func (r *MockMemberRepository) GetByEmail(email string) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, member := range r.members {
		if member.Email == email {
			return &member, nil
		}
	}
	return nil, fmt.Errorf("member with email %s: %w", email, models.ErrNotFound)
}

// GetByID returns a member by their ID.
func (r *MockMemberRepository) GetByID(id string) (*models.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	member, ok := r.members[id]
	if !ok {
		return nil, fmt.Errorf("member %s: %w", id, models.ErrNotFound)
	}
	return &member, nil
}
