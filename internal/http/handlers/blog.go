package handlers

import (
	"net/http"

	"creatememe/internal/domain"
	"creatememe/internal/service"

	"github.com/gin-gonic/gin"
)

type nameRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type postRequest struct {
	Title      string  `json:"title" binding:"required"`
	Slug       string  `json:"slug"`
	Excerpt    string  `json:"excerpt"`
	Content    string  `json:"content"`
	CoverImage string  `json:"cover_image"`
	CategoryID *int64  `json:"category_id"`
	Status     string  `json:"status"`
	TagIDs     []int64 `json:"tag_ids"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:      r.Title,
		Slug:       r.Slug,
		Excerpt:    r.Excerpt,
		Content:    r.Content,
		CoverImage: r.CoverImage,
		CategoryID: r.CategoryID,
		Status:     domain.PostStatus(r.Status),
		TagIDs:     r.TagIDs,
	}
}

// Public

func (h *Handler) BlogPosts(c *gin.Context) {
	page := pageFrom(c)
	out, total, err := h.Blog.ListPosts(c.Request.Context(), domain.PostFilter{
		PublishedOnly: true,
		CategorySlug:  c.Query("category"),
		TagSlug:       c.Query("tag"),
		Limit:         page.Limit,
		Offset:        page.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) BlogPost(c *gin.Context) {
	p, err := h.Blog.PublishedPost(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) BlogCategories(c *gin.Context) {
	out, err := h.Blog.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}

func (h *Handler) BlogTags(c *gin.Context) {
	out, err := h.Blog.Tags(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, int64(len(out)))
}

// Admin

func (h *Handler) AdminCreateCategory(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.Blog.CreateCategory(c.Request.Context(), adminID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) AdminDeleteCategory(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Blog.DeleteCategory(c.Request.Context(), adminID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminCreateTag(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req nameRequest
	if !bindJSON(c, &req) {
		return
	}
	tag, err := h.Blog.CreateTag(c.Request.Context(), adminID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

func (h *Handler) AdminDeleteTag(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Blog.DeleteTag(c.Request.Context(), adminID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AdminListPosts(c *gin.Context) {
	page := pageFrom(c)
	out, total, err := h.Blog.ListPosts(c.Request.Context(), domain.PostFilter{
		CategorySlug: c.Query("category"),
		TagSlug:      c.Query("tag"),
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	list(c, out, total)
}

func (h *Handler) AdminGetPost(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.Blog.Post(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) AdminCreatePost(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req postRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Blog.CreatePost(c.Request.Context(), adminID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) AdminUpdatePost(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req postRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Blog.UpdatePost(c.Request.Context(), adminID, id, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) AdminDeletePost(c *gin.Context) {
	adminID, ok := mustUserID(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Blog.DeletePost(c.Request.Context(), adminID, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
