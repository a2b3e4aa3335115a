package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"creatememe/internal/apperr"
	"creatememe/internal/domain"
)

const maxSlugLen = 80

// Slugify lower-cases s and joins its letter/digit runs with '-'.
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimRight(b.String(), "-")
	if len(out) > maxSlugLen {
		out = strings.TrimRight(out[:maxSlugLen], "-")
	}
	return out
}

type BlogService struct {
	store BlogStore
	logs  *AdminLogService
	now   func() time.Time
}

func NewBlogService(store BlogStore, logs *AdminLogService) *BlogService {
	return &BlogService{store: store, logs: logs, now: time.Now}
}

func slugFor(name, explicit string) (string, error) {
	src := explicit
	if strings.TrimSpace(src) == "" {
		src = name
	}
	slug := Slugify(src)
	if slug == "" {
		return "", apperr.Validation("slug must contain letters or digits")
	}
	return slug, nil
}

func (s *BlogService) Categories(ctx context.Context) ([]domain.Category, error) {
	out, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *BlogService) CreateCategory(ctx context.Context, adminID int64, name string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	slug, err := slugFor(name, "")
	if err != nil {
		return nil, err
	}
	c := &domain.Category{Name: name, Slug: slug}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, storeErr(err, "category")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionCategoryCreate, c.ID, map[string]interface{}{"slug": slug})
	return c, nil
}

func (s *BlogService) DeleteCategory(ctx context.Context, adminID, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return storeErr(err, "category")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionCategoryDelete, id, nil)
	return nil
}

func (s *BlogService) Tags(ctx context.Context) ([]domain.Tag, error) {
	out, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return out, nil
}

func (s *BlogService) CreateTag(ctx context.Context, adminID int64, name string) (*domain.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name is required")
	}
	slug, err := slugFor(name, "")
	if err != nil {
		return nil, err
	}
	t := &domain.Tag{Name: name, Slug: slug}
	if err := s.store.CreateTag(ctx, t); err != nil {
		return nil, storeErr(err, "tag")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionTagCreate, t.ID, map[string]interface{}{"slug": slug})
	return t, nil
}

func (s *BlogService) DeleteTag(ctx context.Context, adminID, id int64) error {
	if err := s.store.DeleteTag(ctx, id); err != nil {
		return storeErr(err, "tag")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionTagDelete, id, nil)
	return nil
}

type PostInput struct {
	Title      string
	Slug       string
	Excerpt    string
	Content    string
	CoverImage string
	CategoryID *int64
	Status     domain.PostStatus
	TagIDs     []int64
}

func (in *PostInput) apply(p *domain.BlogPost, now time.Time) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || len(in.Title) > 200 {
		return apperr.Validation("title must be 1-200 characters")
	}
	slug, err := slugFor(in.Title, in.Slug)
	if err != nil {
		return err
	}
	status := in.Status
	if status == "" {
		status = domain.PostDraft
	}
	if status != domain.PostDraft && status != domain.PostPublished {
		return apperr.Validation("invalid status")
	}

	p.Title = in.Title
	p.Slug = slug
	p.Excerpt = strings.TrimSpace(in.Excerpt)
	p.Content = in.Content
	p.CoverImage = strings.TrimSpace(in.CoverImage)
	p.CategoryID = in.CategoryID
	p.Status = status
	switch {
	case status == domain.PostDraft:
		p.PublishedAt = nil
	case p.PublishedAt == nil:
		t := now.UTC()
		p.PublishedAt = &t
	}
	return nil
}

func (s *BlogService) CreatePost(ctx context.Context, adminID int64, in PostInput) (*domain.BlogPost, error) {
	p := &domain.BlogPost{AuthorID: &adminID}
	if err := in.apply(p, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.CreatePost(ctx, p, in.TagIDs); err != nil {
		return nil, storeErr(err, "post")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionPostCreate, p.ID, map[string]interface{}{"slug": p.Slug, "status": p.Status})
	return p, nil
}

// UpdatePost replaces the post's fields and tags.
func (s *BlogService) UpdatePost(ctx context.Context, adminID, id int64, in PostInput) (*domain.BlogPost, error) {
	p, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	if err := in.apply(p, s.now()); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePost(ctx, p, in.TagIDs); err != nil {
		return nil, storeErr(err, "post")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionPostUpdate, id, map[string]interface{}{"slug": p.Slug, "status": p.Status})
	return p, nil
}

func (s *BlogService) DeletePost(ctx context.Context, adminID, id int64) error {
	if err := s.store.DeletePost(ctx, id); err != nil {
		return storeErr(err, "post")
	}
	s.logs.Record(ctx, adminID, domain.AdminActionPostDelete, id, nil)
	return nil
}

// ListPosts lists posts; public callers only see published ones.
func (s *BlogService) ListPosts(ctx context.Context, f domain.PostFilter) ([]domain.BlogPost, int64, error) {
	out, total, err := s.store.ListPosts(ctx, f)
	if err != nil {
		return nil, 0, apperr.Internal(err)
	}
	return out, total, nil
}

// PublishedPost returns a published post; drafts read as missing.
func (s *BlogService) PublishedPost(ctx context.Context, slug string) (*domain.BlogPost, error) {
	p, err := s.store.GetPostBySlug(ctx, slug)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	if p.Status != domain.PostPublished {
		return nil, apperr.NotFound("post not found")
	}
	return p, nil
}

func (s *BlogService) Post(ctx context.Context, id int64) (*domain.BlogPost, error) {
	p, err := s.store.GetPostByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "post")
	}
	return p, nil
}
