package blog

import (
	"net/http"
	"strconv"

	"github.com/srisabarish06/Notoria/internal/domain"
	"github.com/srisabarish06/Notoria/internal/errors"
	"github.com/srisabarish06/Notoria/internal/utils"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type CreateBlogRequest struct {
	Title    string   `json:"title" binding:"required,min=1,max=255"`
	Content  string   `json:"content" binding:"required"`
	Tags     []string `json:"tags" binding:"omitempty,tagset"`
	IsPublic bool     `json:"is_public"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateBlogRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	authorID := c.GetUint64("user_id")

	blog := &domain.Blog{
		Title:    form.Title,
		Content:  form.Content,
		Tags:     form.Tags,
		IsPublic: form.IsPublic,
	}

	if err := h.service.CreateBlog(c.Request.Context(), authorID, blog); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, blog)
}

// ListPublic handles GET /api/blogs/public. No authentication required.
func (h *Handler) ListPublic(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	rows, total, err := h.service.ListPublic(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "total": total})
}

func (h *Handler) ListMine(c *gin.Context) {
	authorID := c.GetUint64("user_id")
	page, pageSize := utils.GetPaginationParams(c)

	rows, total, err := h.service.ListMine(c.Request.Context(), authorID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rows, "total": total})
}

// Show handles GET /api/blogs/:id. Works with or without a principal;
// unauthenticated requests only see public blogs.
func (h *Handler) Show(c *gin.Context) {
	blogID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Blog not found", err))
		return
	}

	requesterID := c.GetUint64("user_id")

	blog, err := h.service.GetBlog(c.Request.Context(), blogID, requesterID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, blog)
}

type UpdateBlogRequest struct {
	Title    *string   `json:"title" binding:"omitempty,min=1,max=255"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags" binding:"omitempty,tagset"`
	IsPublic *bool     `json:"is_public"`
}

func (h *Handler) Update(c *gin.Context) {
	blogID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Blog not found", err))
		return
	}

	var form UpdateBlogRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	authorID := c.GetUint64("user_id")

	blog, err := h.service.UpdateBlog(c.Request.Context(), blogID, authorID, UpdateBlogInput{
		Title:    form.Title,
		Content:  form.Content,
		Tags:     form.Tags,
		IsPublic: form.IsPublic,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, blog)
}

func (h *Handler) Delete(c *gin.Context) {
	blogID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Blog not found", err))
		return
	}

	authorID := c.GetUint64("user_id")

	if err := h.service.DeleteBlog(c.Request.Context(), blogID, authorID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Blog deleted successfully"})
}

func (h *Handler) ToggleLike(c *gin.Context) {
	blogID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Blog not found", err))
		return
	}

	userID := c.GetUint64("user_id")

	liked, likes, err := h.service.ToggleLike(c.Request.Context(), blogID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "likes": likes})
}
