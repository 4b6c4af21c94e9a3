package browse

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/auth"
	"mangashelf/internal/catalog"
	"mangashelf/internal/facet"
	"mangashelf/internal/live"
	"mangashelf/internal/logging"
	"mangashelf/internal/normalize"
	"mangashelf/internal/paginate"
)

// ListSource returns the library lists of a user keyed by item id.
type ListSource interface {
	Lists(ctx context.Context, userID string) (map[string][]string, error)
}

type Handler struct {
	Registry   *Registry
	Source     catalog.Source
	Normalizer *normalize.Normalizer
	Locale     string
	PageSize   int
	// Libraries and Hub are optional.
	Libraries ListSource
	Hub       *live.Hub
	// LoadTimeout bounds the catalog fetch made when a session opens.
	LoadTimeout time.Duration
}

// RegisterRoutes mounts the session API on rg. optionalAuth runs before
// session creation so a signed-in caller gets their library lists.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, optionalAuth gin.HandlerFunc) {
	open := []gin.HandlerFunc{h.open}
	if optionalAuth != nil {
		open = append([]gin.HandlerFunc{optionalAuth}, open...)
	}
	rg.POST("", open...)
	rg.GET("/:id", h.withSession(h.view))
	rg.DELETE("/:id", h.close)
	rg.GET("/:id/facets", h.withSession(h.facets))
	rg.POST("/:id/actions", h.withSession(h.dispatch))
	rg.POST("/:id/page", h.withSession(h.page))
	rg.POST("/:id/range-input", h.withSession(h.rangeInput))
	if h.Hub != nil {
		rg.GET("/:id/ws", live.Handler(h.Hub, h.topicOf, h.firstView))
		if h.Registry.OnClose == nil {
			h.Registry.OnClose = func(id string) {
				h.Hub.CloseTopic(live.SessionTopic(id), live.Event{Type: "session.closed", Session: id})
			}
		}
	}
}

func (h *Handler) withSession(fn func(*gin.Context, *Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := h.Registry.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		fn(c, s)
	}
}

func (h *Handler) open(c *gin.Context) {
	opts := Options{Locale: h.Locale, PageSize: h.PageSize, Normalizer: h.Normalizer}

	if claims := auth.MustGetClaims(c); claims != nil && h.Libraries != nil {
		lists, err := h.Libraries.Lists(c.Request.Context(), claims.UserID)
		if err != nil {
			logging.Component("browse").Error().Err(err).Str("user", claims.UserID).Msg("load library lists")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "library lookup failed"})
			return
		}
		opts.UserLists = lists
	}

	ctx := c.Request.Context()
	if h.LoadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.LoadTimeout)
		defer cancel()
	}

	// A failed load still yields a session; the view carries the error.
	s, _ := h.Registry.Open(ctx, h.Source, opts)
	c.JSON(http.StatusCreated, gin.H{"id": s.ID, "view": s.View()})
}

func (h *Handler) view(c *gin.Context, s *Session) {
	c.JSON(http.StatusOK, s.View())
}

func (h *Handler) facets(c *gin.Context, s *Session) {
	c.JSON(http.StatusOK, s.Facets())
}

func (h *Handler) dispatch(c *gin.Context, s *Session) {
	var a facet.Action
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, err := s.Dispatch(a)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.publish(s.ID, v)
	c.JSON(http.StatusOK, v)
}

type pageReq struct {
	Op   paginate.Op `json:"op"`
	Page int         `json:"page"`
}

func (h *Handler) page(c *gin.Context, s *Session) {
	var req pageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, err := s.Page(req.Op, req.Page)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.publish(s.ID, v)
	c.JSON(http.StatusOK, v)
}

type rangeReq struct {
	Field facet.RangeField `json:"field"`
	Side  facet.Side       `json:"side"`
	Text  string           `json:"text"`
}

func (h *Handler) rangeInput(c *gin.Context, s *Session) {
	var req rangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	v, committed, err := s.RangeInput(req.Field, req.Side, req.Text)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if committed {
		h.publish(s.ID, v)
	}
	c.JSON(http.StatusOK, gin.H{"committed": committed, "view": v})
}

func (h *Handler) close(c *gin.Context) {
	if !h.Registry.Close(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

func (h *Handler) topicOf(c *gin.Context) (string, bool) {
	id := c.Param("id")
	_, ok := h.Registry.Get(id)
	return live.SessionTopic(id), ok
}

func (h *Handler) firstView(c *gin.Context) *live.Event {
	s, ok := h.Registry.Get(c.Param("id"))
	if !ok {
		return nil
	}
	return viewEvent(s.ID, s.View())
}

func (h *Handler) publish(id string, v View) {
	if h.Hub == nil {
		return
	}
	h.Hub.Publish(live.SessionTopic(id), *viewEvent(id, v))
}

func viewEvent(id string, v View) *live.Event {
	return &live.Event{Type: "view", Session: id, Data: v, At: time.Now().UTC()}
}
