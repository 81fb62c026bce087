package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Chat endpoints are placeholders; message delivery runs over the media
// layer, which this service does not own.

func (h HandlerSet) ChatMessages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"messages": []string{}})
}

type chatSendRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h HandlerSet) ChatSend(c *gin.Context) {
	var req chatSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "sent", "content": req.Message})
}
