package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Office/internal/app/orch"
	"github.com/dkeye/Office/internal/domain"
	"github.com/gin-gonic/gin"
)

type CreateRoomRequest struct {
	Name string `json:"name"`
}

type CreateRoomResponse struct {
	ID   domain.RoomID   `json:"id"`
	Name domain.RoomName `json:"name"`
}

type roomHandlers struct {
	orch *orch.Orchestrator
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *roomHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.orch.Rooms.List())
}

func (h *roomHandlers) create(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid name"})
		return
	}

	room, err := h.orch.CreateRoom(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, CreateRoomResponse{
		ID:   room.Room().ID,
		Name: room.Room().Name,
	})
}

// get returns the live room state: players and seats.
func (h *roomHandlers) get(c *gin.Context) {
	room, ok := h.orch.Rooms.GetRoom(domain.RoomID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	st, err := room.Snapshot(c.Request.Context())
	if err != nil {
		if errors.Is(err, c.Request.Context().Err()) {
			c.Status(http.StatusRequestTimeout)
			return
		}
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, st)
}
