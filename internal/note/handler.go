package note

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

type CreateNoteRequest struct {
	Title    string   `json:"title" binding:"omitempty,max=255"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags" binding:"omitempty,tagset"`
	IsPublic bool     `json:"is_public"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateNoteRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID := c.GetUint64("user_id")

	note := &domain.Note{
		Title:    form.Title,
		Content:  form.Content,
		Tags:     form.Tags,
		IsPublic: form.IsPublic,
	}

	if err := h.service.CreateNote(c.Request.Context(), userID, note); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, note)
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetUint64("user_id")

	page, pageSize := utils.GetPaginationParams(c)
	result, err := h.service.ListNotes(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) Show(c *gin.Context) {
	noteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Note not found", err))
		return
	}

	userID := c.GetUint64("user_id")

	note, err := h.service.GetNote(c.Request.Context(), noteID, userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, note)
}

type UpdateNoteRequest struct {
	Title    *string   `json:"title" binding:"omitempty,max=255"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags" binding:"omitempty,tagset"`
	IsPublic *bool     `json:"is_public"`
}

func (h *Handler) Update(c *gin.Context) {
	noteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Note not found", err))
		return
	}

	var form UpdateNoteRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	userID := c.GetUint64("user_id")

	note, err := h.service.UpdateNote(c.Request.Context(), noteID, userID, UpdateNoteInput{
		Title:    form.Title,
		Content:  form.Content,
		Tags:     form.Tags,
		IsPublic: form.IsPublic,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, note)
}

func (h *Handler) Delete(c *gin.Context) {
	noteID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Note not found", err))
		return
	}

	userID := c.GetUint64("user_id")

	if err := h.service.DeleteNote(c.Request.Context(), noteID, userID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}
