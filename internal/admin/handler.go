package admin

import (
	"net/http"
	"strconv"

	"github.com/srisabarish06/Notoria/internal/errors"
	"github.com/srisabarish06/Notoria/internal/utils"

	"github.com/gin-gonic/gin"
)

// Handler exposes platform-wide listings and analytics. All routes
// are mounted behind the admin middleware.
type Handler struct {
	repository AdminRepository
}

func NewHandler(repository AdminRepository) *Handler {
	return &Handler{repository: repository}
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	users, total, err := h.repository.ListUsers(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": users, "total": total})
}

func (h *Handler) ListNotes(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	notes, total, err := h.repository.ListNotes(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notes, "total": total})
}

func (h *Handler) ListBlogs(c *gin.Context) {
	page, pageSize := utils.GetPaginationParams(c)

	blogs, total, err := h.repository.ListBlogs(c.Request.Context(), page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": blogs, "total": total})
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetUserActive handles PATCH /api/admin/users/:id/active, used to
// suspend or restore an account.
func (h *Handler) SetUserActive(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("User not found", err))
		return
	}

	var form SetActiveRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	if err := h.repository.SetUserActive(c.Request.Context(), userID, *form.IsActive); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

func (h *Handler) Analytics(c *gin.Context) {
	analytics, err := h.repository.Analytics(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}
