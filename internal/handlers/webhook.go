package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidlink/api/internal/security"
	"vidlink/api/internal/service"
)

func (h HandlerSet) PaymentWebhook(c *gin.Context) {
	signature := c.GetHeader(security.HeaderWebhookSignature)
	if signature == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "signature_required"})
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_body"})
		return
	}

	if err := h.webhookService.Process(c.Request.Context(), signature, body); err != nil {
		switch {
		case errors.Is(err, service.ErrBadWebhookSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_signature"})
		case errors.Is(err, service.ErrDuplicateWebhook):
			// Replays are acknowledged so the processor stops retrying.
			c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
		default:
			h.log.Error().Err(err).Msg("webhook processing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook_failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "received"})
}
