package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/openreel/openreel/internal/events"
	"github.com/openreel/openreel/internal/logger"
)

const (
	feedBufferSize = 64
	writeDeadline  = 10 * time.Second
	pingInterval   = 30 * time.Second
)

// EventsHandler exposes the event bus over HTTP: recent history,
// stats, and a live websocket feed.
type EventsHandler struct {
	bus      events.EventBus
	upgrader websocket.Upgrader
}

// NewEventsHandler builds an events handler around the bus
func NewEventsHandler(bus events.EventBus) *EventsHandler {
	return &EventsHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API already allows cross-origin calls in dev mode.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// GetRecentEvents returns buffered events, optionally filtered by
// ?types=a,b and bounded by ?limit=
func (h *EventsHandler) GetRecentEvents(c *gin.Context) {
	filter := filterFromQuery(c)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	recent := h.bus.GetRecentEvents(filter, limit)
	c.JSON(http.StatusOK, gin.H{
		"events": recent,
		"count":  len(recent),
	})
}

// GetEventStats returns event bus statistics
func (h *EventsHandler) GetEventStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.bus.GetStats())
}

// EventFeed streams matching events over a websocket until the client
// disconnects.
func (h *EventsHandler) EventFeed(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	feed := make(chan events.Event, feedBufferSize)
	sub, err := h.bus.Subscribe(filterFromQuery(c), func(event events.Event) error {
		select {
		case feed <- event:
		default:
			// Slow consumer; drop rather than stall the bus.
		}
		return nil
	})
	if err != nil {
		logger.Warn("Event feed subscription failed: %v", err)
		return
	}
	defer func() {
		if err := h.bus.Unsubscribe(sub.ID); err != nil {
			logger.Warn("Event feed unsubscribe failed: %v", err)
		}
	}()

	// Reader goroutine only watches for the client closing.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case event := <-feed:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		}
	}
}

func filterFromQuery(c *gin.Context) events.EventFilter {
	var filter events.EventFilter
	if raw := c.Query("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Types = append(filter.Types, events.EventType(t))
			}
		}
	}
	if raw := c.Query("sources"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				filter.Sources = append(filter.Sources, s)
			}
		}
	}
	return filter
}
