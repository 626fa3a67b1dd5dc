package memstore

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postModel "blog-backend/internal/domains/post/model"
)

// PostRepository implements post repository.Repository
type PostRepository struct {
	store *Store
}

func (r *PostRepository) Create(_ context.Context, p *postModel.Post) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// FK checks giống Postgres
	if _, ok := s.users[p.AuthorID]; !ok {
		return fmt.Errorf("insert post: author %s does not exist", p.AuthorID)
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return fmt.Errorf("insert post: group %s does not exist", *p.GroupID)
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	stored := *p
	stored.Author = postModel.AuthorRef{}
	stored.Group = nil
	s.posts[p.ID] = stored
	*p = *s.hydrate(stored)
	return nil
}

func (r *PostRepository) GetByID(_ context.Context, id uuid.UUID) (*postModel.Post, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return nil, postModel.ErrPostNotFound
	}
	return s.hydrate(p), nil
}

func (r *PostRepository) Update(_ context.Context, p *postModel.Post) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.posts[p.ID]
	if !ok {
		return postModel.ErrPostNotFound
	}
	if p.GroupID != nil {
		if _, ok := s.groups[*p.GroupID]; !ok {
			return fmt.Errorf("update post: group %s does not exist", *p.GroupID)
		}
	}

	current.Text = p.Text
	current.GroupID = p.GroupID
	current.ImageKey = p.ImageKey
	current.ImageURL = p.ImageURL
	current.ThumbnailURL = p.ThumbnailURL
	s.posts[p.ID] = current
	*p = *s.hydrate(current)
	return nil
}

func (r *PostRepository) UpdateThumbnail(_ context.Context, id uuid.UUID, thumbnailURL string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.posts[id]
	if !ok {
		return postModel.ErrPostNotFound
	}
	current.ThumbnailURL = &thumbnailURL
	s.posts[id] = current
	return nil
}

func (r *PostRepository) Count(_ context.Context, filter postModel.ListFilter) (int, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sortedPosts(filter)), nil
}

func (r *PostRepository) List(_ context.Context, filter postModel.ListFilter, offset, limit int) ([]*postModel.Post, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedPosts(filter)
	if offset >= len(all) {
		return []*postModel.Post{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}

	out := make([]*postModel.Post, 0, end-offset)
	for _, p := range all[offset:end] {
		out = append(out, s.hydrate(p))
	}
	return out, nil
}

func (r *PostRepository) ListAll(_ context.Context) ([]*postModel.Post, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.sortedPosts(postModel.ListFilter{})
	out := make([]*postModel.Post, 0, len(all))
	for _, p := range all {
		out = append(out, s.hydrate(p))
	}
	return out, nil
}

func (r *PostRepository) ListMissingThumbnails(_ context.Context, limit int) ([]*postModel.Post, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*postModel.Post, 0)
	for _, p := range s.sortedPosts(postModel.ListFilter{}) {
		if limit > 0 && len(out) >= limit {
			break
		}
		if p.ImageKey != nil && p.ThumbnailURL == nil {
			out = append(out, s.hydrate(p))
		}
	}
	return out, nil
}
