package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	groupModel "blog-backend/internal/domains/group/model"
)

// GroupRepository implements group repository.Repository
type GroupRepository struct {
	store *Store
}

func (r *GroupRepository) Create(_ context.Context, g *groupModel.Group) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.groups {
		if existing.Slug == g.Slug {
			return groupModel.ErrSlugTaken
		}
	}
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	s.groups[g.ID] = *g
	return nil
}

func (r *GroupRepository) GetByID(_ context.Context, id uuid.UUID) (*groupModel.Group, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[id]
	if !ok {
		return nil, groupModel.ErrGroupNotFound
	}
	return &g, nil
}

func (r *GroupRepository) GetBySlug(_ context.Context, slug string) (*groupModel.Group, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.groups {
		if g.Slug == slug {
			out := g
			return &out, nil
		}
	}
	return nil, groupModel.ErrGroupNotFound
}

// List - sắp xếp theo title
func (r *GroupRepository) List(_ context.Context) ([]*groupModel.Group, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*groupModel.Group, 0, len(s.groups))
	for _, g := range s.groups {
		g := g
		out = append(out, &g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].Slug < out[j].Slug
	})
	return out, nil
}

func (r *GroupRepository) Update(_ context.Context, g *groupModel.Group) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[g.ID]; !ok {
		return groupModel.ErrGroupNotFound
	}
	for _, existing := range s.groups {
		if existing.ID != g.ID && existing.Slug == g.Slug {
			return groupModel.ErrSlugTaken
		}
	}
	s.groups[g.ID] = *g
	return nil
}

// Delete xóa group và set group_id = NULL cho posts liên quan
func (r *GroupRepository) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return 0, groupModel.ErrGroupNotFound
	}

	var detached int64
	for postID, p := range s.posts {
		if p.GroupID != nil && *p.GroupID == id {
			p.GroupID = nil
			s.posts[postID] = p
			detached++
		}
	}
	delete(s.groups, id)
	return detached, nil
}
