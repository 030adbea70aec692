package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-task-manager/internal/application"
	"github.com/oksasatya/go-task-manager/internal/domain/entity"
	"github.com/oksasatya/go-task-manager/internal/interface/middleware"
	"github.com/oksasatya/go-task-manager/pkg/response"
)

type TaskHandler struct {
	Svc    *application.TaskService
	Logger *logrus.Logger
}

func NewTaskHandler(svc *application.TaskService, logger *logrus.Logger) *TaskHandler {
	return &TaskHandler{Svc: svc, Logger: logger}
}

// parseTaskFilter reads completed, limit, skip and sortBy=<field>:<asc|desc>.
// Values that do not parse fall back to the defaults; unknown sort fields are ignored.
func parseTaskFilter(c *gin.Context) entity.TaskFilter {
	var f entity.TaskFilter
	switch c.Query("completed") {
	case "true":
		v := true
		f.Completed = &v
	case "false":
		v := false
		f.Completed = &v
	}
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	if n, err := strconv.Atoi(c.Query("skip")); err == nil && n > 0 {
		f.Skip = n
	}
	if sortBy := c.Query("sortBy"); sortBy != "" {
		field, dir, _ := strings.Cut(sortBy, ":")
		switch sf := entity.SortField(field); sf {
		case entity.SortByCreatedAt, entity.SortByUpdatedAt, entity.SortByDescription, entity.SortByCompleted:
			f.Sort = sf
			f.Desc = strings.EqualFold(dir, "desc")
		}
	}
	return f
}

func (h *TaskHandler) List(c *gin.Context) {
	f := parseTaskFilter(c)
	tasks, err := h.Svc.List(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), f)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponses(tasks), "tasks", gin.H{"count": len(tasks)})
}

func (h *TaskHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	tasks, err := h.Svc.Search(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Query("q"), limit)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponses(tasks), "tasks", gin.H{"count": len(tasks)})
}

func (h *TaskHandler) Get(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(t), "task", nil)
}

func (h *TaskHandler) Create(c *gin.Context) {
	var req application.NewTaskInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badPayload(c, err)
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toTaskResponse(t), "task created", nil)
}

func (h *TaskHandler) Update(c *gin.Context) {
	var fields map[string]json.RawMessage
	if err := c.ShouldBindJSON(&fields); err != nil {
		badPayload(c, err)
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"), fields)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(t), "task updated", nil)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	t, err := h.Svc.Delete(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toTaskResponse(t), "task deleted", nil)
}
