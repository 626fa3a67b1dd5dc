package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"blog-backend/internal/domains/group/model"
	"blog-backend/internal/domains/group/repository"
	"blog-backend/internal/shared/utils"
	"blog-backend/pkg/logger"
)

type groupService struct {
	repo repository.Repository
}

func NewGroupService(repo repository.Repository) Service {
	return &groupService{repo: repo}
}

func (s *groupService) List(ctx context.Context) ([]*model.Group, error) {
	groups, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) GetBySlug(ctx context.Context, slug string) (*model.Group, error) {
	g, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			return nil, model.NewGroupNotFoundError(slug)
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

func (s *groupService) Resolve(ctx context.Context, ref string) (*model.Group, error) {
	if id, err := uuid.Parse(ref); err == nil {
		g, err := s.repo.GetByID(ctx, id)
		if err == nil {
			return g, nil
		}
		if !errors.Is(err, model.ErrGroupNotFound) {
			return nil, fmt.Errorf("resolve group: %w", err)
		}
	}
	return s.GetBySlug(ctx, ref)
}

func (s *groupService) Create(ctx context.Context, req model.GroupRequest) (*model.Group, error) {
	// ========== STEP 1: Normalize + Validate ==========
	req.Normalize()
	if req.Slug == "" {
		req.Slug = utils.GenerateSlug(req.Title)
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	// ========== STEP 2: Persist ==========
	g := &model.Group{
		ID:          uuid.New(),
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, g); err != nil {
		if errors.Is(err, model.ErrSlugTaken) {
			return nil, model.NewSlugTakenError(g.Slug)
		}
		return nil, fmt.Errorf("create group: %w", err)
	}

	logger.Info("Group created", map[string]interface{}{
		"group_id": g.ID.String(),
		"slug":     g.Slug,
	})
	return g, nil
}

func (s *groupService) Update(ctx context.Context, slug string, req model.GroupRequest) (*model.Group, error) {
	g, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	req.Normalize()
	if req.Slug == "" {
		req.Slug = g.Slug
	}
	if err := req.Validate(); err != nil {
		return nil, model.NewValidationError(err)
	}

	g.Title = req.Title
	g.Slug = req.Slug
	g.Description = req.Description
	if err := s.repo.Update(ctx, g); err != nil {
		switch {
		case errors.Is(err, model.ErrSlugTaken):
			return nil, model.NewSlugTakenError(g.Slug)
		case errors.Is(err, model.ErrGroupNotFound):
			return nil, model.NewGroupNotFoundError(slug)
		}
		return nil, fmt.Errorf("update group: %w", err)
	}
	return g, nil
}

// Delete - posts của group vẫn còn, chỉ mất liên kết group
func (s *groupService) Delete(ctx context.Context, slug string) (*model.GroupDeleteResponse, error) {
	g, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	detached, err := s.repo.Delete(ctx, g.ID)
	if err != nil {
		if errors.Is(err, model.ErrGroupNotFound) {
			return nil, model.NewGroupNotFoundError(slug)
		}
		return nil, fmt.Errorf("delete group: %w", err)
	}

	logger.Info("Group deleted", map[string]interface{}{
		"slug":           slug,
		"detached_posts": detached,
	})
	return &model.GroupDeleteResponse{Slug: slug, DetachedPosts: detached}, nil
}
