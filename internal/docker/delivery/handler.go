package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"devtodo-backend/internal/docker/usecase"
	"devtodo-backend/pkg/docker"

	"github.com/gin-gonic/gin"
)

// DockerHandler handles container listing and lifecycle requests
type DockerHandler struct {
	dockerUsecase usecase.DockerUsecase
}

// NewDockerHandler creates a new DockerHandler
func NewDockerHandler(dockerUsecase usecase.DockerUsecase) *DockerHandler {
	return &DockerHandler{
		dockerUsecase: dockerUsecase,
	}
}

// RegisterRoutes mounts the docker endpoints on the given group
func (h *DockerHandler) RegisterRoutes(group *gin.RouterGroup) {
	d := group.Group("/docker")
	d.GET("/containers", h.ListContainers)
	d.GET("/containers/:id/logs", h.Logs)
	d.GET("/containers/:id/stats", h.Stats)
	d.POST("/containers/:id/:action", h.PerformAction)
	d.GET("/actions", h.Actions)
}

// GET /api/docker/containers
func (h *DockerHandler) ListContainers(c *gin.Context) {
	containers, err := h.dockerUsecase.ListContainers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, containers)
}

// GET /api/docker/containers/:id/logs?tail=100
func (h *DockerHandler) Logs(c *gin.Context) {
	tail := usecase.DefaultLogTail
	if raw := c.Query("tail"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "tail must be a positive integer"})
			return
		}
		tail = parsed
	}

	logs, err := h.dockerUsecase.Logs(c.Request.Context(), c.Param("id"), tail)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

// GET /api/docker/containers/:id/stats
func (h *DockerHandler) Stats(c *gin.Context) {
	stats, err := h.dockerUsecase.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// POST /api/docker/containers/:id/:action
func (h *DockerHandler) PerformAction(c *gin.Context) {
	id, action := c.Param("id"), c.Param("action")

	if err := h.dockerUsecase.PerformAction(c.Request.Context(), id, action); err != nil {
		if errors.Is(err, docker.ErrInvalidAction) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "action": action, "containerId": id})
}

// GET /api/docker/actions
func (h *DockerHandler) Actions(c *gin.Context) {
	c.JSON(http.StatusOK, h.dockerUsecase.Actions())
}
