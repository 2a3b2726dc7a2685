package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/dto"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/api/middleware"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/dashboard"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/events"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/domain/notification"
	"github.com/aaandroiddd/Waboku.gg-sub000/internal/infrastructure/cache"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
	// Snapshots queued for a slow websocket beyond this are dropped; the
	// next snapshot carries the full state anyway.
	wsSendBuffer = 16
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DashboardHandler exposes the preloaded dashboard over HTTP and websocket.
type DashboardHandler struct {
	preloader     *dashboard.Preloader
	notifications notification.Service
	redisClient   *cache.RedisClient
	bus           *events.Bus
	logger        *zap.Logger
}

func NewDashboardHandler(
	preloader *dashboard.Preloader,
	notifications notification.Service,
	redisClient *cache.RedisClient,
	bus *events.Bus,
	logger *zap.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		preloader:     preloader,
		notifications: notifications,
		redisClient:   redisClient,
		bus:           bus,
		logger:        logger,
	}
}

// GetDashboard godoc
// @Summary Get the full dashboard snapshot
// @Description Serves the cached snapshot when it is inside the freshness window, otherwise runs every section loader. Pass force=true to bypass the window.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param force query bool false "Bypass the freshness window"
// @Success 200 {object} dto.DashboardResponse
// @Failure 401 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /api/dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	force := c.Query("force") == "true"
	fromCache := !force && h.preloader.Fresh(c.Request.Context(), userID)

	data, err := h.preloader.Preload(c.Request.Context(), userID, force)
	if err != nil {
		middleware.TrackPreload("error")
		h.logger.Error("Dashboard preload failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load dashboard"})
		return
	}

	if fromCache {
		middleware.TrackPreload("cache")
	} else {
		middleware.TrackPreload("fetch")
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.DashboardResponse{
		Data:      data,
		Loading:   h.preloader.LoadingState(userID),
		FromCache: fromCache,
	}})
}

// RefreshSection godoc
// @Summary Re-run a single section loader
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param section path string true "Section name"
// @Success 200 {object} dto.DashboardResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/dashboard/refresh/{section} [post]
func (h *DashboardHandler) RefreshSection(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	section := events.Section(c.Param("section"))
	if !section.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown section"})
		return
	}

	if err := h.preloader.RefreshSection(c.Request.Context(), userID, section); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	data, _ := h.preloader.CachedData(userID)
	c.JSON(http.StatusOK, gin.H{"data": dto.DashboardResponse{
		Data:    data,
		Loading: h.preloader.LoadingState(userID),
	}})
}

// GetLoadingState godoc
// @Summary Get the per-section loading flags
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.DashboardLoadingResponse
// @Failure 401 {object} map[string]string
// @Router /api/dashboard/loading [get]
func (h *DashboardHandler) GetLoadingState(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": dto.DashboardLoadingResponse{
		Loading: h.preloader.LoadingState(userID),
	}})
}

// ClearCache godoc
// @Summary Drop the user's persisted and in-memory dashboard snapshot
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/dashboard/cache [delete]
func (h *DashboardHandler) ClearCache(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.preloader.ClearCache(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "dashboard cache cleared"})
}

// Dispose godoc
// @Summary Tear down the user's dashboard subscriptions
// @Description Called on logout so the server stops tracking dashboard state for the user.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/dashboard/session [delete]
func (h *DashboardHandler) Dispose(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	h.preloader.Dispose(userID)
	c.JSON(http.StatusOK, gin.H{"message": "dashboard session disposed"})
}

// Stream upgrades the connection to a websocket and pushes dashboard
// snapshots and notifications as they happen. The preload runs in the
// background after the upgrade so the first snapshot arrives promptly.
func (h *DashboardHandler) Stream(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Websocket upgrade failed", zap.Error(err))
		return
	}

	send := make(chan dto.DashboardStreamMessage, wsSendBuffer)
	done := make(chan struct{})

	cancelSnapshots := h.preloader.Subscribe(userID, func(data dashboard.Data, state dashboard.LoadingState) {
		msg := dto.DashboardStreamMessage{Type: "snapshot", Data: &data, Loading: &state}
		select {
		case send <- msg:
		case <-done:
		default:
		}
	})

	notifCh, cancelNotifs, err := h.notifications.Subscribe(userID)
	if err != nil {
		h.logger.Error("Notification subscription failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		cancelSnapshots()
		conn.Close()
		return
	}

	go func() {
		if _, err := h.preloader.Preload(context.Background(), userID, false); err != nil {
			h.logger.Warn("Background preload failed",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}()

	// Writer: the only goroutine allowed to write to the connection.
	go func() {
		ticker := time.NewTicker(wsPingPeriod)
		defer ticker.Stop()
		defer conn.Close()

		for {
			select {
			case msg := <-send:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case n, ok := <-notifCh:
				if !ok {
					return
				}
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteJSON(dto.DashboardStreamMessage{Type: "notification", Notification: n}); err != nil {
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	// Reader: drains until the client disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	close(done)
	cancelSnapshots()
	cancelNotifs()
}

// StartDashboardEventListener bridges dashboard events published by other
// instances through Redis onto the local bus. Events stamped with this
// instance's origin already went through the local bus and are skipped;
// Dispatch delivers locally without re-forwarding, so events never loop
// between instances.
func (h *DashboardHandler) StartDashboardEventListener(ctx context.Context, origin string) {
	go func() {
		err := h.redisClient.SubscribeToDashboardEvents(ctx, func(event *events.DashboardEvent) error {
			if event.Details != nil && event.Details["origin"] == origin {
				return nil
			}
			h.logger.Debug("Received dashboard event from Redis",
				zap.String("event_type", event.EventType),
				zap.String("section", string(event.Section)))
			h.bus.Dispatch(*event)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			h.logger.Error("Dashboard event listener error", zap.Error(err))
		}
	}()
}
