package repository

import (
	"context"
	"fmt"
	"strings"

	"creatememe/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postColumns = `p.id, p.slug, p.title, p.excerpt, p.content, p.cover_image, p.author_id, p.category_id,
	p.status, p.published_at, p.created_at, p.updated_at`

type BlogRepository struct {
	db *pgxpool.Pool
}

func NewBlogRepository(db *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{db: db}
}

// Categories

func (r *BlogRepository) CreateCategory(ctx context.Context, c *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO blog_categories (name, slug) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.Slug,
	).Scan(&c.ID, &c.CreatedAt)
	return mapErr(err)
}

func (r *BlogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, created_at FROM blog_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *BlogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "blog_categories", id)
}

// Tags

func (r *BlogRepository) CreateTag(ctx context.Context, t *domain.Tag) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO blog_tags (name, slug) VALUES ($1, $2) RETURNING id, created_at`,
		t.Name, t.Slug,
	).Scan(&t.ID, &t.CreatedAt)
	return mapErr(err)
}

func (r *BlogRepository) ListTags(ctx context.Context) ([]domain.Tag, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, slug, created_at FROM blog_tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTags(rows)
}

func (r *BlogRepository) DeleteTag(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "blog_tags", id)
}

func collectTags(rows pgx.Rows) ([]domain.Tag, error) {
	out := []domain.Tag{}
	for rows.Next() {
		var t domain.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Posts

func scanPost(row pgx.Row, extra ...any) (*domain.BlogPost, error) {
	var p domain.BlogPost
	dest := []any{&p.ID, &p.Slug, &p.Title, &p.Excerpt, &p.Content, &p.CoverImage, &p.AuthorID, &p.CategoryID,
		&p.Status, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, mapErr(err)
	}
	p.Tags = []domain.Tag{}
	return &p, nil
}

// CreatePost inserts p with its tag links in one transaction.
func (r *BlogRepository) CreatePost(ctx context.Context, p *domain.BlogPost, tagIDs []int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		saved, err := scanPost(tx.QueryRow(ctx, `
			INSERT INTO blog_posts AS p (slug, title, excerpt, content, cover_image, author_id, category_id, status, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+postColumns,
			p.Slug, p.Title, p.Excerpt, p.Content, p.CoverImage, p.AuthorID, p.CategoryID, p.Status, p.PublishedAt,
		))
		if err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, saved.ID, tagIDs); err != nil {
			return err
		}
		*p = *saved
		return nil
	})
	if err != nil {
		return mapErr(err)
	}
	return r.loadTags(ctx, p)
}

// UpdatePost overwrites the editable fields of p and replaces its tags.
func (r *BlogRepository) UpdatePost(ctx context.Context, p *domain.BlogPost, tagIDs []int64) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		saved, err := scanPost(tx.QueryRow(ctx, `
			UPDATE blog_posts AS p SET slug = $2, title = $3, excerpt = $4, content = $5, cover_image = $6,
				category_id = $7, status = $8, published_at = $9, updated_at = NOW()
			WHERE p.id = $1
			RETURNING `+postColumns,
			p.ID, p.Slug, p.Title, p.Excerpt, p.Content, p.CoverImage, p.CategoryID, p.Status, p.PublishedAt,
		))
		if err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, saved.ID, tagIDs); err != nil {
			return err
		}
		*p = *saved
		return nil
	})
	if err != nil {
		return mapErr(err)
	}
	return r.loadTags(ctx, p)
}

func replaceTags(ctx context.Context, tx pgx.Tx, postID int64, tagIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM blog_post_tags WHERE post_id = $1`, postID); err != nil {
		return err
	}
	if len(tagIDs) == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO blog_post_tags (post_id, tag_id)
		SELECT $1, id FROM blog_tags WHERE id = ANY($2)
		ON CONFLICT DO NOTHING`, postID, tagIDs)
	if err != nil {
		return err
	}
	if int(tag.RowsAffected()) != len(dedupe(tagIDs)) {
		return fmt.Errorf("%w: unknown tag id", ErrNotFound)
	}
	return nil
}

func (r *BlogRepository) DeletePost(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "blog_posts", id)
}

func (r *BlogRepository) GetPostByID(ctx context.Context, id int64) (*domain.BlogPost, error) {
	p, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts p WHERE p.id = $1`, id))
	if err != nil {
		return nil, err
	}
	return p, r.loadTags(ctx, p)
}

func (r *BlogRepository) GetPostBySlug(ctx context.Context, slug string) (*domain.BlogPost, error) {
	p, err := scanPost(r.db.QueryRow(ctx, `SELECT `+postColumns+` FROM blog_posts p WHERE p.slug = $1`, slug))
	if err != nil {
		return nil, err
	}
	return p, r.loadTags(ctx, p)
}

// ListPosts returns a page of posts without content bodies.
func (r *BlogRepository) ListPosts(ctx context.Context, f domain.PostFilter) ([]domain.BlogPost, int64, error) {
	limit, offset := clampPage(f.Limit, f.Offset)

	var (
		joins []string
		where []string
		args  []any
	)
	if f.PublishedOnly {
		where = append(where, "p.status = 'published'")
	}
	if f.CategorySlug != "" {
		args = append(args, f.CategorySlug)
		joins = append(joins, "JOIN blog_categories c ON c.id = p.category_id")
		where = append(where, fmt.Sprintf("c.slug = $%d", len(args)))
	}
	if f.TagSlug != "" {
		args = append(args, f.TagSlug)
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM blog_post_tags pt JOIN blog_tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id AND t.slug = $%d)",
			len(args)))
	}

	q := `SELECT ` + postColumns + `, COUNT(*) OVER() FROM blog_posts p ` + strings.Join(joins, " ")
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, limit, offset)
	q += fmt.Sprintf(" ORDER BY COALESCE(p.published_at, p.created_at) DESC, p.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []domain.BlogPost{}
	var total int64
	for rows.Next() {
		p, err := scanPost(rows, &total)
		if err != nil {
			return nil, 0, err
		}
		p.Content = ""
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range out {
		if err := r.loadTags(ctx, &out[i]); err != nil {
			return nil, 0, err
		}
	}
	return out, total, nil
}

func (r *BlogRepository) loadTags(ctx context.Context, p *domain.BlogPost) error {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.name, t.slug, t.created_at
		FROM blog_tags t JOIN blog_post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = $1
		ORDER BY t.name`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	tags, err := collectTags(rows)
	if err != nil {
		return err
	}
	p.Tags = tags
	return nil
}

func deleteByID(ctx context.Context, db *pgxpool.Pool, table string, id int64) error {
	tag, err := db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
