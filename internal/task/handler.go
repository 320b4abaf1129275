package task

import (
	"net/http"
	"strconv"
	"time"

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

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=255"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *Handler) Create(c *gin.Context) {
	var form CreateTaskRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	ownerID := c.GetUint64("user_id")

	task := &domain.Task{
		Title:       form.Title,
		Description: form.Description,
		Status:      form.Status,
		Priority:    form.Priority,
		DueDate:     form.DueDate,
	}

	if err := h.service.CreateTask(c.Request.Context(), ownerID, task); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// List handles GET /api/tasks with optional status and priority filters.
func (h *Handler) List(c *gin.Context) {
	ownerID := c.GetUint64("user_id")
	page, pageSize := utils.GetPaginationParams(c)

	filter := TaskFilter{
		OwnerID:  ownerID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Page:     page,
		PageSize: pageSize,
	}

	tasks, total, err := h.service.ListTasks(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": tasks, "total": total})
}

func (h *Handler) Show(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Task not found", err))
		return
	}

	ownerID := c.GetUint64("user_id")

	task, err := h.service.GetTask(c.Request.Context(), taskID, ownerID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=todo in-progress done"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *Handler) Update(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Task not found", err))
		return
	}

	var form UpdateTaskRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	ownerID := c.GetUint64("user_id")

	task, err := h.service.UpdateTask(c.Request.Context(), taskID, ownerID, UpdateTaskInput{
		Title:       form.Title,
		Description: form.Description,
		Status:      form.Status,
		Priority:    form.Priority,
		DueDate:     form.DueDate,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *Handler) Delete(c *gin.Context) {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.Error(errors.NotFound("Task not found", err))
		return
	}

	ownerID := c.GetUint64("user_id")

	if err := h.service.DeleteTask(c.Request.Context(), taskID, ownerID); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}
