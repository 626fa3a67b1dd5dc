package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-backend/internal/domains/group/model"
	"blog-backend/pkg/database"
	"blog-backend/pkg/logger"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository tạo repository instance
func NewPostgresRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const groupColumns = `id, title, slug, description, created_at`

func (r *postgresRepository) Create(ctx context.Context, g *model.Group) error {
	const query = `
		INSERT INTO groups (id, title, slug, description, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, g.ID, g.Title, g.Slug, g.Description, g.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		logger.Error("Create group: database error", err)
		return fmt.Errorf("insert group: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE id = $1`
	return scanGroup(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups WHERE slug = $1`
	return scanGroup(r.pool.QueryRow(ctx, query, slug))
}

func (r *postgresRepository) List(ctx context.Context) ([]*model.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups ORDER BY title ASC, slug ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	groups := make([]*model.Group, 0)
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

func (r *postgresRepository) Update(ctx context.Context, g *model.Group) error {
	const query = `
		UPDATE groups
		SET title = $2, slug = $3, description = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, g.ID, g.Title, g.Slug, g.Description)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrSlugTaken
		}
		logger.Error("Update group: database error", err)
		return fmt.Errorf("update group: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGroupNotFound
	}
	return nil
}

// Delete chạy trong transaction: detach posts rồi xóa group.
// FK ON DELETE SET NULL cũng đảm bảo điều này; UPDATE tường minh để đếm số posts.
func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (int64, error) {
		tag, err := tx.Exec(ctx, `UPDATE posts SET group_id = NULL WHERE group_id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("detach posts: %w", err)
		}
		detached := tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
		if err != nil {
			return 0, fmt.Errorf("delete group: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return 0, model.ErrGroupNotFound
		}
		return detached, nil
	})
}

// ========================================
// HELPERS
// ========================================

func scanGroup(row pgx.Row) (*model.Group, error) {
	g := &model.Group{}
	err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrGroupNotFound
		}
		return nil, fmt.Errorf("scan group: %w", err)
	}
	return g, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
