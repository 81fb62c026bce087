package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidlink/api/internal/middleware"
	"vidlink/api/internal/models"
	"vidlink/api/internal/repository"
	"vidlink/api/internal/service"
)

type startSessionResponse struct {
	SessionID string `json:"sessionId"`
}

func (h HandlerSet) StartSession(c *gin.Context) {
	var user *models.User
	if v, ok := c.Get(middleware.CurrentUserKey); ok {
		if u, ok := v.(models.User); ok {
			user = &u
		}
	}

	session, err := h.sessionService.StartSession(c.Request.Context(), user)
	if err != nil {
		var quotaErr *service.QuotaExceededError
		if errors.As(err, &quotaErr) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":        "quota_exceeded",
				"limitMinutes": quotaErr.LimitMinutes,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, startSessionResponse{SessionID: session.ID})
}

type endSessionResponse struct {
	SessionID       string `json:"sessionId"`
	DurationMinutes int    `json:"durationMinutes"`
}

func (h HandlerSet) EndSession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id required"})
		return
	}

	session, err := h.sessionService.EndSession(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session_not_found"})
		case errors.Is(err, repository.ErrSessionEnded):
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_already_ended"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, endSessionResponse{
		SessionID:       session.ID,
		DurationMinutes: *session.DurationMinutes,
	})
}
