package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	groupModel "blog-backend/internal/domains/group/model"
	"blog-backend/internal/domains/post/model"
	"blog-backend/internal/domains/post/repository"
	userModel "blog-backend/internal/domains/user/model"
	"blog-backend/internal/infrastructure/queue"
	"blog-backend/internal/infrastructure/storage"
	"blog-backend/internal/shared"
	"blog-backend/internal/shared/pagination"
	"blog-backend/pkg/logger"
)

type postService struct {
	repo    repository.Repository
	groups  GroupReader
	authors AuthorReader
	media   MediaStorage // nil = image uploads disabled
	images  *storage.ImageProcessor
	queue   queue.Enqueuer // nil = không xử lý thumbnail
	perPage int
	now     func() time.Time
}

func NewPostService(
	repo repository.Repository,
	groups GroupReader,
	authors AuthorReader,
	media MediaStorage,
	images *storage.ImageProcessor,
	enqueuer queue.Enqueuer,
	perPage int,
) Service {
	if images == nil {
		images = storage.NewImageProcessor()
	}
	return &postService{
		repo:    repo,
		groups:  groups,
		authors: authors,
		media:   media,
		images:  images,
		queue:   enqueuer,
		perPage: perPage,
		now:     time.Now,
	}
}

// ========================================
// LISTINGS
// ========================================

// paginate: count -> clamp page -> fetch đúng slice của page
func (s *postService) paginate(
	ctx context.Context,
	filter model.ListFilter,
	requested int,
) ([]*model.Post, pagination.Page, error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, pagination.Page{}, fmt.Errorf("count posts: %w", err)
	}

	page := pagination.New(total, s.perPage, requested)
	posts, err := s.repo.List(ctx, filter, page.Offset(), page.Limit())
	if err != nil {
		return nil, pagination.Page{}, fmt.Errorf("list posts: %w", err)
	}
	return posts, page, nil
}

func (s *postService) Index(ctx context.Context, page int) (*model.IndexContext, error) {
	posts, p, err := s.paginate(ctx, model.ListFilter{}, page)
	if err != nil {
		return nil, err
	}
	return &model.IndexContext{Posts: posts, Page: p}, nil
}

func (s *postService) GroupPosts(ctx context.Context, slug string, page int) (*model.GroupContext, error) {
	group, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, groupModel.ErrGroupNotFound) {
			return nil, model.NewGroupNotFoundError(slug)
		}
		return nil, err
	}

	posts, p, err := s.paginate(ctx, model.ListFilter{GroupID: &group.ID}, page)
	if err != nil {
		return nil, err
	}
	return &model.GroupContext{Group: group, Posts: posts, Page: p}, nil
}

func (s *postService) Profile(ctx context.Context, username string, page int) (*model.ProfileContext, error) {
	author, err := s.authors.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userModel.ErrUserNotFound) {
			return nil, model.NewAuthorNotFoundError(username)
		}
		return nil, err
	}

	posts, p, err := s.paginate(ctx, model.ListFilter{AuthorID: &author.ID}, page)
	if err != nil {
		return nil, err
	}

	return &model.ProfileContext{
		Author: model.ProfileAuthor{
			ID:         author.ID,
			Username:   author.Username,
			FullName:   author.FullName(),
			PostsCount: p.Total,
		},
		Posts: posts,
		Page:  p,
	}, nil
}

func (s *postService) Detail(ctx context.Context, postID string) (*model.DetailContext, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Count(ctx, model.ListFilter{AuthorID: &post.AuthorID})
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	return &model.DetailContext{Post: post, AuthorPostsCount: count}, nil
}

// load parse id + get post; id sai format cũng là not found
func (s *postService) load(ctx context.Context, postID string) (*model.Post, error) {
	id, err := uuid.Parse(postID)
	if err != nil {
		return nil, model.NewPostNotFoundError()
	}

	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return nil, model.NewPostNotFoundError()
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return post, nil
}

// ========================================
// FORMS
// ========================================

func (s *postService) NewForm(ctx context.Context) (*model.FormContext, error) {
	return s.BuildFormContext(ctx, model.PostForm{}, nil, nil)
}

func (s *postService) EditForm(ctx context.Context, principal *shared.Principal, postID string) (*model.FormContext, error) {
	post, err := s.loadOwned(ctx, principal, postID)
	if err != nil {
		return nil, err
	}

	form := model.PostForm{Text: post.Text}
	if post.Group != nil {
		form.Group = post.Group.Slug
	}
	return s.BuildFormContext(ctx, form, nil, &post.ID)
}

func (s *postService) BuildFormContext(
	ctx context.Context,
	form model.PostForm,
	errs model.FormErrors,
	postID *uuid.UUID,
) (*model.FormContext, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	choices := make([]model.GroupChoice, 0, len(groups))
	for _, g := range groups {
		choices = append(choices, model.GroupChoice{ID: g.ID, Title: g.Title, Slug: g.Slug})
	}
	if errs == nil {
		errs = model.FormErrors{}
	}

	return &model.FormContext{
		Form:   form,
		Errors: errs,
		Groups: choices,
		IsEdit: postID != nil,
		PostID: postID,
	}, nil
}

// ========================================
// CREATE / UPDATE
// ========================================

func (s *postService) Create(
	ctx context.Context,
	principal *shared.Principal,
	form model.PostForm,
	image *model.ImageUpload,
) (*model.Post, error) {
	if principal == nil {
		return nil, model.NewNotAuthorError()
	}

	cleaned, err := s.clean(ctx, &form, image)
	if err != nil {
		return nil, err
	}

	post := &model.Post{
		ID:       uuid.New(),
		Text:     form.Text,
		PubDate:  s.now().UTC().Truncate(time.Microsecond),
		AuthorID: principal.UserID,
		GroupID:  cleaned.groupID,
	}

	if cleaned.image != nil {
		if err := s.attachImage(ctx, post, cleaned.image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	logger.Info("Post created", map[string]interface{}{
		"post_id": post.ID.String(),
		"author":  principal.Username,
		"text":    post.String(),
	})

	if cleaned.image != nil {
		s.enqueueProcessImage(ctx, post)
	}
	return post, nil
}

func (s *postService) Update(
	ctx context.Context,
	principal *shared.Principal,
	postID string,
	form model.PostForm,
	image *model.ImageUpload,
) (*model.Post, error) {
	// Ownership guard trước mọi validation/mutation
	post, err := s.loadOwned(ctx, principal, postID)
	if err != nil {
		return nil, err
	}

	cleaned, err := s.clean(ctx, &form, image)
	if err != nil {
		return nil, err
	}

	post.Text = form.Text
	post.GroupID = cleaned.groupID
	if cleaned.image != nil {
		if err := s.attachImage(ctx, post, cleaned.image); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, post); err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return nil, model.NewPostNotFoundError()
		}
		return nil, fmt.Errorf("update post: %w", err)
	}

	logger.Info("Post updated", map[string]interface{}{
		"post_id": post.ID.String(),
		"author":  principal.Username,
	})

	if cleaned.image != nil {
		s.enqueueProcessImage(ctx, post)
	}
	return post, nil
}

func (s *postService) loadOwned(ctx context.Context, principal *shared.Principal, postID string) (*model.Post, error) {
	post, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	if principal == nil || !post.IsAuthor(principal.UserID) {
		return post, model.NewNotAuthorError()
	}
	return post, nil
}

type cleanedForm struct {
	groupID *uuid.UUID
	image   *validImage
}

type validImage struct {
	data   []byte
	format string
}

// clean normalize + validate form, resolve group, validate image.
// Mọi field error được gom lại trong một *model.ValidationError.
func (s *postService) clean(ctx context.Context, form *model.PostForm, image *model.ImageUpload) (*cleanedForm, error) {
	form.Normalize()

	errs := model.FormErrors{}
	if err := form.Validate(); err != nil {
		for field, msg := range model.FormErrorsFrom(err) {
			errs.Add(field, msg)
		}
	}

	out := &cleanedForm{}
	if form.Group != "" {
		group, err := s.groups.Resolve(ctx, form.Group)
		switch {
		case err == nil:
			out.groupID = &group.ID
		case errors.Is(err, groupModel.ErrGroupNotFound):
			errs.Add("group", model.MsgInvalidChoice)
		default:
			return nil, fmt.Errorf("resolve group: %w", err)
		}
	}

	if image != nil && len(image.Data) > 0 {
		img, msg := s.validateImage(image)
		if msg != "" {
			errs.Add("image", msg)
		}
		out.image = img
	}

	if errs.HasErrors() {
		return nil, model.NewValidationError(errs)
	}
	return out, nil
}

func (s *postService) validateImage(image *model.ImageUpload) (*validImage, string) {
	if s.media == nil {
		return nil, model.MsgImageDisabled
	}

	format, err := s.images.ValidateImage(image.Data)
	switch {
	case err == nil:
		return &validImage{data: image.Data, format: format}, ""
	case errors.Is(err, storage.ErrImageTooLarge):
		return nil, model.MsgImageTooLarge
	case errors.Is(err, storage.ErrImageFormatDenied):
		return nil, model.MsgImageFormatBad
	default:
		return nil, model.MsgImageNotImage
	}
}
