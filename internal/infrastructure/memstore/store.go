// Package memstore là in-memory backend cho STORAGE_DRIVER=memory và tests.
// Giữ cùng semantics với schema Postgres: slug/username/email unique,
// xóa group -> posts.group_id = NULL, xóa user -> xóa posts của user.
package memstore

import (
	"bytes"
	"sort"
	"sync"

	"github.com/google/uuid"

	groupModel "blog-backend/internal/domains/group/model"
	postModel "blog-backend/internal/domains/post/model"
	userModel "blog-backend/internal/domains/user/model"
)

// Store giữ toàn bộ bảng trong memory, bảo vệ bởi một RWMutex
type Store struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]userModel.User
	groups map[uuid.UUID]groupModel.Group
	posts  map[uuid.UUID]postModel.Post
}

func New() *Store {
	return &Store{
		users:  make(map[uuid.UUID]userModel.User),
		groups: make(map[uuid.UUID]groupModel.Group),
		posts:  make(map[uuid.UUID]postModel.Post),
	}
}

// Users trả về user repository trên store này
func (s *Store) Users() *UserRepository {
	return &UserRepository{store: s}
}

// Groups trả về group repository trên store này
func (s *Store) Groups() *GroupRepository {
	return &GroupRepository{store: s}
}

// Posts trả về post repository trên store này
func (s *Store) Posts() *PostRepository {
	return &PostRepository{store: s}
}

// hydrate fill Author/Group refs như JOIN trong Postgres. Caller giữ lock.
func (s *Store) hydrate(p postModel.Post) *postModel.Post {
	out := p
	if u, ok := s.users[p.AuthorID]; ok {
		out.Author = postModel.AuthorRef{ID: u.ID, Username: u.Username, FullName: u.FullName()}
	}
	out.Group = nil
	if p.GroupID != nil {
		if g, ok := s.groups[*p.GroupID]; ok {
			out.Group = &postModel.GroupRef{ID: g.ID, Title: g.Title, Slug: g.Slug}
		}
	}
	return &out
}

// sortedPosts - pub_date DESC, id DESC. Caller giữ lock.
func (s *Store) sortedPosts(filter postModel.ListFilter) []postModel.Post {
	out := make([]postModel.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.GroupID != nil && (p.GroupID == nil || *p.GroupID != *filter.GroupID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PubDate.Equal(out[j].PubDate) {
			return out[i].PubDate.After(out[j].PubDate)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}
