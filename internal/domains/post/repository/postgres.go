package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-backend/internal/domains/post/model"
	"blog-backend/internal/shared/utils"
	"blog-backend/pkg/logger"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository tạo repository instance
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// selectPosts join author + group để handler không phải query thêm (N+1)
const selectPosts = `
	SELECT
		p.id, p.text, p.pub_date, p.author_id, p.group_id,
		p.image_key, p.image_url, p.thumbnail_url,
		u.username, u.first_name, u.last_name,
		g.title, g.slug
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN groups g ON g.id = p.group_id
`

const orderPosts = ` ORDER BY p.pub_date DESC, p.id DESC`

// ========================================
// WRITE OPERATIONS
// ========================================

func (r *postgresRepository) Create(ctx context.Context, p *model.Post) error {
	const query = `
		INSERT INTO posts (
			id, text, pub_date, author_id, group_id,
			image_key, image_url, thumbnail_url
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Text,
		p.PubDate,
		p.AuthorID,
		p.GroupID,
		p.ImageKey,
		p.ImageURL,
		p.ThumbnailURL,
	)
	if err != nil {
		logger.Error("Create post: database error", err)
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// Update - author_id và pub_date không bao giờ nằm trong SET
func (r *postgresRepository) Update(ctx context.Context, p *model.Post) error {
	const query = `
		UPDATE posts
		SET text = $2, group_id = $3,
			image_key = $4, image_url = $5, thumbnail_url = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		p.ID,
		p.Text,
		p.GroupID,
		p.ImageKey,
		p.ImageURL,
		p.ThumbnailURL,
	)
	if err != nil {
		logger.Error("Update post: database error", err)
		return fmt.Errorf("update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postgresRepository) UpdateThumbnail(ctx context.Context, id uuid.UUID, thumbnailURL string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE posts SET thumbnail_url = $2 WHERE id = $1`, id, thumbnailURL,
	)
	if err != nil {
		return fmt.Errorf("update thumbnail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

// ========================================
// READ OPERATIONS
// ========================================

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	row := r.pool.QueryRow(ctx, selectPosts+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPostNotFound
		}
		return nil, fmt.Errorf("get post: %w", err)
	}
	return p, nil
}

func (r *postgresRepository) Count(ctx context.Context, filter model.ListFilter) (int, error) {
	where, args := buildWhere(filter)

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM posts p`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return total, nil
}

func (r *postgresRepository) List(
	ctx context.Context,
	filter model.ListFilter,
	offset, limit int,
) ([]*model.Post, error) {
	where, args := buildWhere(filter)
	args = append(args, limit, offset)
	query := selectPosts + where + orderPosts +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	return r.query(ctx, query, args...)
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]*model.Post, error) {
	return r.query(ctx, selectPosts+orderPosts)
}

func (r *postgresRepository) ListMissingThumbnails(ctx context.Context, limit int) ([]*model.Post, error) {
	query := selectPosts +
		` WHERE p.image_key IS NOT NULL AND p.thumbnail_url IS NULL` +
		orderPosts + ` LIMIT $1`
	return r.query(ctx, query, limit)
}

// ========================================
// HELPERS
// ========================================

func (r *postgresRepository) query(ctx context.Context, query string, args ...any) ([]*model.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func buildWhere(filter model.ListFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.AuthorID != nil {
		args = append(args, *filter.AuthorID)
		clauses = append(clauses, fmt.Sprintf("p.author_id = $%d", len(args)))
	}
	if filter.GroupID != nil {
		args = append(args, *filter.GroupID)
		clauses = append(clauses, fmt.Sprintf("p.group_id = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + utils.JoinWithAnd(clauses), args
}

func scanPost(row pgx.Row) (*model.Post, error) {
	var (
		p                   model.Post
		firstName, lastName string
		groupTitle          *string
		groupSlug           *string
	)

	err := row.Scan(
		&p.ID,
		&p.Text,
		&p.PubDate,
		&p.AuthorID,
		&p.GroupID,
		&p.ImageKey,
		&p.ImageURL,
		&p.ThumbnailURL,
		&p.Author.Username,
		&firstName,
		&lastName,
		&groupTitle,
		&groupSlug,
	)
	if err != nil {
		return nil, err
	}

	p.Author.ID = p.AuthorID
	p.Author.FullName = utils.FullName(firstName, lastName, p.Author.Username)
	if p.GroupID != nil && groupSlug != nil {
		p.Group = &model.GroupRef{ID: *p.GroupID, Title: derefString(groupTitle), Slug: *groupSlug}
	}
	return &p, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
