package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	groupModel "blog-backend/internal/domains/group/model"
	groupService "blog-backend/internal/domains/group/service"
	"blog-backend/internal/domains/post/model"
	userModel "blog-backend/internal/domains/user/model"
	userService "blog-backend/internal/domains/user/service"
	"blog-backend/internal/infrastructure/memstore"
	"blog-backend/internal/infrastructure/queue"
	"blog-backend/internal/shared"
	"blog-backend/pkg/cache"
	"blog-backend/pkg/jwt"
)

// ========================================
// TEST DOUBLES
// ========================================

type mockEnqueuer struct {
	mock.Mock
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task, opts)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func taskOfType(taskType string) interface{} {
	return mock.MatchedBy(func(t *asynq.Task) bool { return t.Type() == taskType })
}

type fakeMedia struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{objects: make(map[string][]byte)}
}

func (f *fakeMedia) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = data
	return "http://media.local/blog/" + key, nil
}

func (f *fakeMedia) Download(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[key]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeMedia) DeleteByPrefix(_ context.Context, prefix string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key := range f.objects {
		if strings.HasPrefix(key, prefix) {
			delete(f.objects, key)
		}
	}
	return nil
}

func (f *fakeMedia) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

// ========================================
// FIXTURE
// ========================================

type fixture struct {
	svc    *postService
	store  *memstore.Store
	groups groupService.Service
	clock  time.Time
}

func newFixture(t *testing.T, perPage int, media MediaStorage, enqueuer queue.Enqueuer) *fixture {
	t.Helper()

	store := memstore.New()
	groups := groupService.NewGroupService(store.Groups())
	users := userService.NewUserService(store.Users(), cache.NewMemoryCache(), jwt.NewManager("test-secret", time.Hour), nil)

	f := &fixture{
		store:  store,
		groups: groups,
		clock:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	svc := NewPostService(store.Posts(), groups, users, media, nil, enqueuer, perPage).(*postService)
	// Mỗi lần gọi now() tiến 1 giây -> pub_date tăng dần, thứ tự xác định
	svc.now = func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.svc = svc
	return f
}

func (f *fixture) author(t *testing.T, username string) *shared.Principal {
	t.Helper()
	u := &userModel.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "Leo",
		LastName:  "Tolstoy",
		Role:      userModel.RoleUser,
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return &shared.Principal{UserID: u.ID, Username: u.Username, Role: u.Role.String()}
}

func (f *fixture) group(t *testing.T, slug string) *groupModel.Group {
	t.Helper()
	g, err := f.groups.Create(context.Background(), groupModel.GroupRequest{
		Title:       "Group " + slug,
		Slug:        slug,
		Description: "about " + slug,
	})
	require.NoError(t, err)
	return g
}

func (f *fixture) post(t *testing.T, p *shared.Principal, text, group string) *model.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), p, model.PostForm{Text: text, Group: group}, nil)
	require.NoError(t, err)
	return post
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func postIDs(posts []*model.Post) []uuid.UUID {
	ids := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

// ========================================
// LISTINGS
// ========================================

func TestIndex_PaginatesNewestFirst(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")

	created := make([]*model.Post, 0, 15)
	for i := 0; i < 15; i++ {
		created = append(created, f.post(t, leo, "post number", ""))
	}

	first, err := f.svc.Index(ctx, 1)
	require.NoError(t, err)
	require.Len(t, first.Posts, 10)
	assert.Equal(t, created[14].ID, first.Posts[0].ID)
	assert.Equal(t, 2, first.Page.NumPages)
	assert.True(t, first.Page.HasNext)

	second, err := f.svc.Index(ctx, 2)
	require.NoError(t, err)
	require.Len(t, second.Posts, 5)
	assert.Equal(t, created[0].ID, second.Posts[4].ID)
	assert.False(t, second.Page.HasNext)

	// Page ngoài range -> trang cuối
	clamped, err := f.svc.Index(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 2, clamped.Page.Number)
	assert.Equal(t, postIDs(second.Posts), postIDs(clamped.Posts))
}

func TestIndex_Empty(t *testing.T) {
	f := newFixture(t, 10, nil, nil)

	data, err := f.svc.Index(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, data.Posts)
	assert.Equal(t, 1, data.Page.NumPages)
	assert.Equal(t, 0, data.Page.Total)
}

func TestProfile_OnlyAuthorPosts(t *testing.T) {
	f := newFixture(t, 2, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	tom := f.author(t, "tom")

	p1 := f.post(t, leo, "first", "")
	f.post(t, tom, "not leo", "")
	p2 := f.post(t, leo, "second", "")
	p3 := f.post(t, leo, "third", "")

	page1, err := f.svc.Profile(ctx, "leo", 1)
	require.NoError(t, err)
	assert.Equal(t, "leo", page1.Author.Username)
	assert.Equal(t, "Leo Tolstoy", page1.Author.FullName)
	assert.Equal(t, 3, page1.Author.PostsCount)
	assert.Equal(t, []uuid.UUID{p3.ID, p2.ID}, postIDs(page1.Posts))

	page2, err := f.svc.Profile(ctx, "leo", 2)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{p1.ID}, postIDs(page2.Posts))
}

func TestProfile_UnknownAuthor(t *testing.T) {
	f := newFixture(t, 10, nil, nil)

	_, err := f.svc.Profile(context.Background(), "ghost", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrAuthorNotFound)

	var postErr *model.PostError
	require.True(t, errors.As(err, &postErr))
	assert.Equal(t, model.ErrCodeAuthorNotFound, postErr.Code)
}

func TestGroupPosts_FiltersByGroup(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	cats := f.group(t, "cats")
	f.group(t, "dogs")

	inCats := f.post(t, leo, "meow", "cats")
	f.post(t, leo, "woof", "dogs")
	f.post(t, leo, "no group", "")

	data, err := f.svc.GroupPosts(ctx, "cats", 1)
	require.NoError(t, err)
	assert.Equal(t, cats.ID, data.Group.ID)
	assert.Equal(t, []uuid.UUID{inCats.ID}, postIDs(data.Posts))

	_, err = f.svc.GroupPosts(ctx, "birds", 1)
	assert.ErrorIs(t, err, model.ErrGroupNotFound)
}

func TestDetail(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	p := f.post(t, leo, "hello", "")
	f.post(t, leo, "again", "")

	data, err := f.svc.Detail(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Equal(t, p.ID, data.Post.ID)
	assert.Equal(t, 2, data.AuthorPostsCount)

	_, err = f.svc.Detail(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	_, err = f.svc.Detail(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

// ========================================
// CREATE
// ========================================

func TestCreate_WithoutGroup(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")

	post, err := f.svc.Create(ctx, leo, model.PostForm{Text: "  just text  "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "just text", post.Text)
	assert.Nil(t, post.GroupID)
	assert.Equal(t, leo.UserID, post.AuthorID)
	assert.False(t, post.PubDate.IsZero())

	index, err := f.svc.Index(ctx, 1)
	require.NoError(t, err)
	require.Len(t, index.Posts, 1)
	assert.Nil(t, index.Posts[0].Group)
	assert.Equal(t, "leo", index.Posts[0].Author.Username)
}

func TestCreate_GroupBySlugOrID(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	leo := f.author(t, "leo")
	cats := f.group(t, "cats")

	bySlug := f.post(t, leo, "by slug", "cats")
	require.NotNil(t, bySlug.Group)
	assert.Equal(t, cats.ID, bySlug.Group.ID)

	byID := f.post(t, leo, "by id", cats.ID.String())
	require.NotNil(t, byID.GroupID)
	assert.Equal(t, cats.ID, *byID.GroupID)
}

func TestCreate_ValidationErrors(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")

	testCases := []struct {
		name  string
		form  model.PostForm
		field string
		msg   string
	}{
		{"empty text", model.PostForm{Text: ""}, "text", model.MsgTextRequired},
		{"whitespace text", model.PostForm{Text: "   \n "}, "text", model.MsgTextRequired},
		{"unknown group", model.PostForm{Text: "ok", Group: "nope"}, "group", model.MsgInvalidChoice},
		{"unknown group id", model.PostForm{Text: "ok", Group: uuid.NewString()}, "group", model.MsgInvalidChoice},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, leo, tc.form, nil)
			var verr *model.ValidationError
			require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
			assert.Equal(t, tc.msg, verr.Errors[tc.field])
		})
	}

	total, err := f.store.Posts().Count(ctx, model.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCreate_ImageDisabled(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	leo := f.author(t, "leo")

	upload := &model.ImageUpload{Filename: "a.png", Data: pngBytes(t, 10, 10)}
	_, err := f.svc.Create(context.Background(), leo, model.PostForm{Text: "pic"}, upload)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.MsgImageDisabled, verr.Errors["image"])
}

func TestCreate_InvalidImage(t *testing.T) {
	f := newFixture(t, 10, newFakeMedia(), nil)
	leo := f.author(t, "leo")

	upload := &model.ImageUpload{Filename: "a.png", Data: []byte("definitely not an image")}
	_, err := f.svc.Create(context.Background(), leo, model.PostForm{Text: "pic"}, upload)

	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, model.MsgImageNotImage, verr.Errors["image"])
}

func TestCreate_WithImageEnqueuesThumbnail(t *testing.T) {
	media := newFakeMedia()
	enq := new(mockEnqueuer)
	enq.On("EnqueueContext", mock.Anything, taskOfType(shared.TypeProcessPostImage), mock.Anything).
		Return((*asynq.TaskInfo)(nil), nil).Once()

	f := newFixture(t, 10, media, enq)
	ctx := context.Background()
	leo := f.author(t, "leo")

	upload := &model.ImageUpload{Filename: "a.png", Data: pngBytes(t, 600, 400)}
	post, err := f.svc.Create(ctx, leo, model.PostForm{Text: "pic"}, upload)
	require.NoError(t, err)
	require.NotNil(t, post.ImageKey)
	require.NotNil(t, post.ImageURL)
	assert.Nil(t, post.ThumbnailURL)
	assert.True(t, media.has(*post.ImageKey))
	enq.AssertExpectations(t)

	// Worker side
	require.NoError(t, f.svc.ProcessImage(ctx, post.ID.String(), *post.ImageKey))

	stored, err := f.store.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ThumbnailURL)
	assert.True(t, strings.HasSuffix(*stored.ThumbnailURL, "/thumb.jpg"))
}

func TestProcessImage_SkipsReplacedImage(t *testing.T) {
	media := newFakeMedia()
	f := newFixture(t, 10, media, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")

	upload := &model.ImageUpload{Filename: "a.png", Data: pngBytes(t, 20, 20)}
	post, err := f.svc.Create(ctx, leo, model.PostForm{Text: "pic"}, upload)
	require.NoError(t, err)

	require.NoError(t, f.svc.ProcessImage(ctx, post.ID.String(), "posts/stale/original.png"))

	stored, err := f.store.Posts().GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ThumbnailURL)

	// Post đã bị xóa -> không lỗi
	assert.NoError(t, f.svc.ProcessImage(ctx, uuid.NewString(), "x"))
}

func TestReconcileThumbnails(t *testing.T) {
	media := newFakeMedia()
	enq := new(mockEnqueuer)
	enq.On("EnqueueContext", mock.Anything, taskOfType(shared.TypeProcessPostImage), mock.Anything).
		Return((*asynq.TaskInfo)(nil), nil)

	f := newFixture(t, 10, media, enq)
	ctx := context.Background()
	leo := f.author(t, "leo")

	upload := &model.ImageUpload{Filename: "a.png", Data: pngBytes(t, 20, 20)}
	_, err := f.svc.Create(ctx, leo, model.PostForm{Text: "pic"}, upload)
	require.NoError(t, err)
	f.post(t, leo, "no image", "")

	n, err := f.svc.ReconcileThumbnails(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	enq.AssertNumberOfCalls(t, "EnqueueContext", 2)
}

func TestDeleteAuthorMedia(t *testing.T) {
	media := newFakeMedia()
	f := newFixture(t, 10, media, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	tom := f.author(t, "tom")

	upload := &model.ImageUpload{Filename: "a.png", Data: pngBytes(t, 20, 20)}
	leoPost, err := f.svc.Create(ctx, leo, model.PostForm{Text: "pic"}, upload)
	require.NoError(t, err)
	tomPost, err := f.svc.Create(ctx, tom, model.PostForm{Text: "pic"}, upload)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteAuthorMedia(ctx, leo.UserID.String()))
	assert.False(t, media.has(*leoPost.ImageKey))
	assert.True(t, media.has(*tomPost.ImageKey))

	assert.Error(t, f.svc.DeleteAuthorMedia(ctx, "not-a-uuid"))
}

// ========================================
// EDIT
// ========================================

func TestUpdate_ByAuthor(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	f.group(t, "cats")
	original := f.post(t, leo, "before", "")

	updated, err := f.svc.Update(ctx, leo, original.ID.String(), model.PostForm{Text: "after", Group: "cats"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Text)
	require.NotNil(t, updated.Group)
	assert.Equal(t, "cats", updated.Group.Slug)

	// Author và pub_date không đổi
	assert.Equal(t, leo.UserID, updated.AuthorID)
	assert.True(t, original.PubDate.Equal(updated.PubDate))

	// Bỏ group
	cleared, err := f.svc.Update(ctx, leo, original.ID.String(), model.PostForm{Text: "after"}, nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.Group)
}

func TestUpdate_NonAuthorLeavesPostUnchanged(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	tom := f.author(t, "tom")
	original := f.post(t, leo, "leo wrote this", "")

	_, err := f.svc.Update(ctx, tom, original.ID.String(), model.PostForm{Text: "hijacked"}, nil)
	assert.ErrorIs(t, err, model.ErrNotAuthor)

	// Invalid form của non-author vẫn là NotAuthor, không phải validation error
	_, err = f.svc.Update(ctx, tom, original.ID.String(), model.PostForm{Text: ""}, nil)
	assert.ErrorIs(t, err, model.ErrNotAuthor)

	_, err = f.svc.EditForm(ctx, tom, original.ID.String())
	assert.ErrorIs(t, err, model.ErrNotAuthor)

	stored, err := f.store.Posts().GetByID(ctx, original.ID)
	require.NoError(t, err)
	assert.Equal(t, "leo wrote this", stored.Text)
}

func TestUpdate_MissingPost(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	leo := f.author(t, "leo")

	_, err := f.svc.Update(context.Background(), leo, uuid.NewString(), model.PostForm{Text: "x"}, nil)
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}

func TestEditForm_PrefillsPost(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	f.group(t, "cats")
	f.group(t, "dogs")
	p := f.post(t, leo, "meow", "cats")

	data, err := f.svc.EditForm(ctx, leo, p.ID.String())
	require.NoError(t, err)
	assert.True(t, data.IsEdit)
	require.NotNil(t, data.PostID)
	assert.Equal(t, p.ID, *data.PostID)
	assert.Equal(t, "meow", data.Form.Text)
	assert.Equal(t, "cats", data.Form.Group)
	assert.Len(t, data.Groups, 2)
	assert.Empty(t, data.Errors)

	blank, err := f.svc.NewForm(ctx)
	require.NoError(t, err)
	assert.False(t, blank.IsEdit)
	assert.Nil(t, blank.PostID)
}

// ========================================
// GROUP DELETION + EXPORT
// ========================================

func TestGroupDeletion_KeepsPostsWithoutGroup(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	f.group(t, "cats")
	p := f.post(t, leo, "meow", "cats")

	result, err := f.groups.Delete(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.DetachedPosts)

	data, err := f.svc.Detail(ctx, p.ID.String())
	require.NoError(t, err)
	assert.Nil(t, data.Post.Group)
	assert.Equal(t, "meow", data.Post.Text)

	_, err = f.svc.GroupPosts(ctx, "cats", 1)
	assert.ErrorIs(t, err, model.ErrGroupNotFound)
}

func TestExport(t *testing.T) {
	f := newFixture(t, 10, nil, nil)
	ctx := context.Background()
	leo := f.author(t, "leo")
	f.group(t, "cats")
	f.post(t, leo, "a very long post text that gets cut", "cats")
	f.post(t, leo, "short", "")

	buf := new(bytes.Buffer)
	require.NoError(t, f.svc.Export(ctx, buf))

	book, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, exportHeaders, rows[0])

	// newest first
	assert.Equal(t, "short", rows[1][1])
	assert.Equal(t, "a very long pos", rows[2][1])
	assert.Equal(t, "leo", rows[2][2])
	assert.Equal(t, "cats", rows[2][3])
}
