// Package api exposes the dashboard services over HTTP for administration and inspection.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/celerix-dev/painel-store/pkg/lifecycle"
	"github.com/celerix-dev/painel-store/pkg/schema"
	"github.com/celerix-dev/painel-store/pkg/session"
	"github.com/celerix-dev/painel-store/pkg/store"
)

// dedicated lists namespaces served by their own routes rather than as record collections.
var dedicated = map[schema.Namespace]bool{
	schema.Matrix:             true,
	schema.LastResetWatermark: true,
	schema.Logs:               true,
	schema.Notifications:      true,
	schema.JobTitles:          true,
	schema.AnnouncementNS:     true,
	schema.OperationalRoles:   true,
	schema.AppConfigNS:        true,
	schema.GlobalResetSignal:  true,
	schema.ResetAck:           true,
}

type Handler struct {
	Services *session.Services
}

// Register mounts every route on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/collections/:ns", h.GetCollection)
	r.PUT("/collections/:ns", h.SaveCollection)
	r.POST("/collections/:ns", h.AddRecord)
	r.PUT("/collections/:ns/:id", h.UpdateRecord)
	r.DELETE("/collections/:ns/:id", h.DeleteRecord)

	r.GET("/logs", h.GetLogs)

	r.GET("/matrix", h.GetMatrix)
	r.PUT("/matrix", h.SaveMatrix)
	r.POST("/matrix/:role/:task/toggle", h.ToggleTask)

	r.GET("/notifications/:user", h.GetNotifications)
	r.POST("/notifications", h.AddNotification)
	r.POST("/notifications/:id/read", h.MarkNotificationRead)

	r.GET("/announcement", h.GetAnnouncement)
	r.PUT("/announcement", h.SetAnnouncement)
	r.DELETE("/announcement", h.ClearAnnouncement)

	r.GET("/config", h.GetConfig)
	r.PUT("/config", h.SaveConfig)

	r.GET("/job-titles", h.GetJobTitles)
	r.POST("/job-titles", h.AddJobTitle)
	r.DELETE("/job-titles/:title", h.RemoveJobTitle)
	r.GET("/operational-roles", h.GetOperationalRoles)
	r.POST("/operational-roles", h.AddOperationalRole)

	r.POST("/reset-signal", h.IssueReset)
	r.GET("/keys", h.GetKeys)
}

// CORS allows the browser dashboard to call the API from another origin.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (h *Handler) collection(c *gin.Context) (schema.Namespace, bool) {
	ns := schema.Namespace(c.Param("ns"))
	if strings.TrimSpace(string(ns)) == "" || dedicated[ns] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "not a record collection: " + string(ns)})
		return "", false
	}
	return ns, true
}

func (h *Handler) GetCollection(c *gin.Context) {
	ns, ok := h.collection(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.Services.Store.Get(ns))
}

func (h *Handler) SaveCollection(c *gin.Context) {
	ns, ok := h.collection(c)
	if !ok {
		return
	}
	var records []schema.Record
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Services.Store.Save(ns, records); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) AddRecord(c *gin.Context) {
	ns, ok := h.collection(c)
	if !ok {
		return
	}
	var r schema.Record
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Services.Store.Add(ns, r); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	ns, ok := h.collection(c)
	if !ok {
		return
	}
	var r schema.Record
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// The path id wins over any id in the body
	r["id"] = c.Param("id")
	if err := h.Services.Store.Update(ns, r); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	ns, ok := h.collection(c)
	if !ok {
		return
	}
	if err := h.Services.Store.Delete(ns, c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetLogs(c *gin.Context) {
	logs := h.Services.Log.List()
	if category := c.Query("category"); category != "" {
		filtered := logs[:0]
		for _, l := range logs {
			if string(l.Category) == category {
				filtered = append(filtered, l)
			}
		}
		logs = filtered
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) GetMatrix(c *gin.Context) {
	m, err := h.Services.Scheduler.Matrix()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) SaveMatrix(c *gin.Context) {
	var m []schema.MatrixRole
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Services.Scheduler.SaveMatrix(m); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) ToggleTask(c *gin.Context) {
	m, err := h.Services.Scheduler.ToggleTask(c.Param("role"), c.Param("task"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) GetNotifications(c *gin.Context) {
	user := c.Param("user")
	list := h.Services.Notifications.List(user)
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

func (h *Handler) AddNotification(c *gin.Context) {
	var n schema.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if n.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}
	saved, err := h.Services.Notifications.Add(n)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.Services.Notifications.MarkRead(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetAnnouncement(c *gin.Context) {
	a, ok := h.Services.Announcements.Get()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no announcement"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) SetAnnouncement(c *gin.Context) {
	var a schema.Announcement
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := h.Services.Announcements.Set(a)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) ClearAnnouncement(c *gin.Context) {
	if err := h.Services.Announcements.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *Handler) GetConfig(c *gin.Context) {
	cfg, ok := h.Services.Store.AppConfig()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no app config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (h *Handler) SaveConfig(c *gin.Context) {
	var cfg schema.AppConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cfg.UpdatedAt = h.Services.Clock.Now()
	author := schema.Identity{Username: cfg.UpdatedBy}
	if err := h.Services.Store.SaveAppConfig(cfg, author); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type nameInput struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) GetJobTitles(c *gin.Context) {
	c.JSON(http.StatusOK, h.Services.Store.JobTitles())
}

func (h *Handler) AddJobTitle(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Services.Store.AddJobTitle(input.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Services.Store.JobTitles())
}

func (h *Handler) RemoveJobTitle(c *gin.Context) {
	if err := h.Services.Store.RemoveJobTitle(c.Param("title")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.Services.Store.JobTitles())
}

func (h *Handler) GetOperationalRoles(c *gin.Context) {
	roles, err := h.Services.Store.OperationalRoles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (h *Handler) AddOperationalRole(c *gin.Context) {
	var input nameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Services.Store.AddOperationalRole(input.Name); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.GetOperationalRoles(c)
}

func (h *Handler) IssueReset(c *gin.Context) {
	var input struct {
		Token string `json:"token"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	token, err := h.Services.Reset.Issue(input.Token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) GetKeys(c *gin.Context) {
	keys, err := h.Services.Medium.Keys()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, keys)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrMissingID):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicateID):
		return http.StatusConflict
	case errors.Is(err, lifecycle.ErrUnknownTask):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
