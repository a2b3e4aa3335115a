package domain

import "time"

type PostStatus string

const (
	PostDraft     PostStatus = "draft"
	PostPublished PostStatus = "published"
)

type Category struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Tag struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type BlogPost struct {
	ID          int64      `db:"id" json:"id"`
	Slug        string     `db:"slug" json:"slug"`
	Title       string     `db:"title" json:"title"`
	Excerpt     string     `db:"excerpt" json:"excerpt"`
	Content     string     `db:"content" json:"content,omitempty"`
	CoverImage  string     `db:"cover_image" json:"cover_image,omitempty"`
	AuthorID    *int64     `db:"author_id" json:"author_id,omitempty"`
	CategoryID  *int64     `db:"category_id" json:"category_id,omitempty"`
	Status      PostStatus `db:"status" json:"status"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	Tags        []Tag      `json:"tags"`
}

// PostFilter narrows post listings; PublishedOnly is set for public reads.
type PostFilter struct {
	PublishedOnly bool
	CategorySlug  string
	TagSlug       string
	Limit         int
	Offset        int
}
