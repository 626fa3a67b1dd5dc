package memstore

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	userModel "blog-backend/internal/domains/user/model"
)

// UserRepository implements user repository.Repository
type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(_ context.Context, u *userModel.User) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return userModel.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return userModel.ErrEmailTaken
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*userModel.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, userModel.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*userModel.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := u
			return &out, nil
		}
	}
	return nil, userModel.ErrUserNotFound
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	if errors.Is(err, userModel.ErrUserNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r *UserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Delete xóa user và cascade posts
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return userModel.ErrUserNotFound
	}
	delete(s.users, id)
	for postID, p := range s.posts {
		if p.AuthorID == id {
			delete(s.posts, postID)
		}
	}
	return nil
}
