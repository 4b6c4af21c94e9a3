// Package library lets a signed-in reader file titles under reading lists.
package library

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/auth"
	"mangashelf/internal/live"
	"mangashelf/internal/logging"
	"mangashelf/pkg/models"
)

type Handler struct {
	Repo *Repo
	Hub  *live.Hub
}

func NewHandler(repo *Repo, hub *live.Hub) *Handler {
	return &Handler{Repo: repo, Hub: hub}
}

// RegisterRoutes expects rg to already run auth.AuthMiddleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/library", h.list)
	rg.POST("/library", h.upsert)
	rg.PUT("/library/:manga_id", h.upsert)
	rg.DELETE("/library/:manga_id", h.remove)
	rg.GET("/library/:manga_id", h.getOne)
	if h.Hub != nil {
		rg.GET("/library/ws", live.Handler(h.Hub, func(c *gin.Context) (string, bool) {
			return live.LibraryTopic(auth.MustGetClaims(c).UserID), true
		}, nil))
	}
}

type upsertReq struct {
	MangaID string `json:"manga_id"`
	List    string `json:"list"`
}

func (h *Handler) upsert(c *gin.Context) {
	claims := auth.MustGetClaims(c)

	var req upsertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	mangaID := strings.TrimSpace(c.Param("manga_id"))
	if mangaID == "" {
		mangaID = strings.TrimSpace(req.MangaID)
	}
	if mangaID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "manga_id required"})
		return
	}

	list := normalizeList(req.List)
	if list == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "list must be one of: " + strings.Join(models.UserLists, ", "),
		})
		return
	}

	entry := models.LibraryEntry{UserID: claims.UserID, MangaID: mangaID, List: list}
	if err := h.Repo.Upsert(c.Request.Context(), entry); err != nil {
		logging.Component("library").Error().Err(err).Msg("upsert")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	saved, err := h.Repo.Get(c.Request.Context(), claims.UserID, mangaID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "fetch saved failed"})
		return
	}

	h.publish(live.Event{Type: "library.update", UserID: claims.UserID, MangaID: mangaID, List: saved.List})
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) list(c *gin.Context) {
	claims := auth.MustGetClaims(c)

	list := ""
	if raw := c.Query("list"); raw != "" {
		if list = normalizeList(raw); list == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown list"})
			return
		}
	}
	limit := parseInt(c.Query("limit"), 20)
	offset := parseInt(c.Query("offset"), 0)

	entries, total, err := h.Repo.List(c.Request.Context(), claims.UserID, list, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"items":  entries,
	})
}

func (h *Handler) remove(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	mangaID := strings.TrimSpace(c.Param("manga_id"))

	if err := h.Repo.Delete(c.Request.Context(), claims.UserID, mangaID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}

	h.publish(live.Event{Type: "library.delete", UserID: claims.UserID, MangaID: mangaID})
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *Handler) getOne(c *gin.Context) {
	claims := auth.MustGetClaims(c)

	e, err := h.Repo.Get(c.Request.Context(), claims.UserID, strings.TrimSpace(c.Param("manga_id")))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handler) publish(ev live.Event) {
	if h.Hub == nil {
		return
	}
	ev.At = time.Now().UTC()
	go h.Hub.Publish(live.LibraryTopic(ev.UserID), ev)
}

func normalizeList(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reading":
		return models.ListReading
	case "completed":
		return models.ListCompleted
	case "wish list", "wish_list", "wishlist":
		return models.ListWishList
	case "blacklist", "black_list", "black list":
		return models.ListBlacklist
	default:
		return ""
	}
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
