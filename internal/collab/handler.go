package collab

import (
	"net/http"
	"strconv"

	"github.com/srisabarish06/Notoria/internal/errors"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type ShareNoteRequest struct {
	NoteID    uint64 `json:"note_id" binding:"required"`
	UserEmail string `json:"user_email" binding:"required,email"`
	Role      string `json:"role" binding:"omitempty,oneof=editor viewer"`
}

// Share handles POST /api/collab/share.
func (h *Handler) Share(c *gin.Context) {
	var form ShareNoteRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	inviterID := c.GetUint64("user_id")

	collab, err := h.service.ShareNote(
		c.Request.Context(),
		form.NoteID,
		inviterID,
		form.UserEmail,
		form.Role,
	)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invitation sent",
		"collab":  collab,
	})
}

// ListInvites handles GET /api/collab/invites.
func (h *Handler) ListInvites(c *gin.Context) {
	userID := c.GetUint64("user_id")

	invites, err := h.service.ListInvites(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, invites)
}

// Accept handles PUT /api/collab/invites/:id/accept.
func (h *Handler) Accept(c *gin.Context) {
	h.respond(c, DecisionAccept)
}

// Decline handles PUT /api/collab/invites/:id/decline.
func (h *Handler) Decline(c *gin.Context) {
	h.respond(c, DecisionDecline)
}

func (h *Handler) respond(c *gin.Context, decision string) {
	collabID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Invite not found", err))
		return
	}

	actorID := c.GetUint64("user_id")

	collab, err := h.service.RespondToInvite(c.Request.Context(), collabID, actorID, decision)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invite " + collab.Status,
		"collab":  collab,
	})
}

// ListCollaborators handles GET /api/collab/note/:noteId.
func (h *Handler) ListCollaborators(c *gin.Context) {
	noteID, err := strconv.ParseUint(c.Param("noteId"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Note not found", err))
		return
	}

	requesterID := c.GetUint64("user_id")

	rows, err := h.service.ListCollaborators(c.Request.Context(), noteID, requesterID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, rows)
}
