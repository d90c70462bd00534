// Package api exposes the dispatcher over HTTP with gin: a single /areas
// route group whose :area parameter selects that area's dispatch.Manager.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/riftline/geodispatch/internal/api/middleware"
	"github.com/riftline/geodispatch/internal/dispatch"
)

// Handler serves the dispatch HTTP surface for a fixed set of areas.
type Handler struct {
	areas map[string]*dispatch.Manager
}

// NewHandler builds a Handler over the given area name → Manager mapping.
func NewHandler(areas map[string]*dispatch.Manager) *Handler {
	return &Handler{areas: areas}
}

// Register wires every route onto router, under the "/areas" group.
func (h *Handler) Register(router gin.IRouter) {
	areas := router.Group("/areas")
	{
		areas.POST("/:area/workers/:origin", h.registerWorker)
		areas.DELETE("/:area/workers/:origin", h.unregisterWorker)
		areas.POST("/:area/workers/:origin/next", h.nextLocation)
		areas.GET("/:area/status", h.status)
		areas.GET("/:area/rounds/:origin", h.rounds)
		areas.GET("/:area/route", h.route)
		areas.GET("/:area/prioroute", h.priorityRoute)
		areas.GET("/:area/workers", h.workers)
		areas.GET("/:area/position/:origin", h.position)
		areas.GET("/:area/init", h.init)
		areas.GET("/:area/mode", h.mode)
	}
}

func (h *Handler) manager(c *gin.Context) (*dispatch.Manager, bool) {
	name := c.Param("area")
	m, ok := h.areas[name]
	if !ok {
		c.Error(middleware.ErrNotFound)
		c.AbortWithStatus(http.StatusNotFound)
		return nil, false
	}
	return m, true
}

func (h *Handler) registerWorker(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	created := m.Register(c.Param("origin"))
	c.JSON(http.StatusOK, gin.H{"created": created})
}

func (h *Handler) unregisterWorker(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	removed := m.Unregister(c.Param("origin"))
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (h *Handler) nextLocation(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	loc, has := m.Next(c.Request.Context(), c.Param("origin"))
	if !has {
		c.JSON(http.StatusOK, gin.H{"location": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": loc})
}

func (h *Handler) status(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	served, total := m.RouteStatus(c.Query("origin"))
	c.JSON(http.StatusOK, gin.H{"served": served, "total": total})
}

func (h *Handler) rounds(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": m.Rounds(c.Param("origin"))})
}

func (h *Handler) route(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": m.CurrentRoute()})
}

func (h *Handler) priorityRoute(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": m.CurrentPriorityRoute()})
}

func (h *Handler) workers(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": m.RegisteredWorkers()})
}

func (h *Handler) position(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"position_type": m.PositionType(c.Param("origin")).String()})
}

func (h *Handler) init(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"init": m.Init()})
}

func (h *Handler) mode(c *gin.Context) {
	m, ok := h.manager(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"mode": m.Mode()})
}
