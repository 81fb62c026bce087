package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vidlink/api/internal/identity"
	"vidlink/api/internal/service"
)

type signupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (h HandlerSet) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var provErr *identity.ProviderError
		switch {
		case errors.As(err, &provErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": "identity_provider_unavailable"})
		case errors.Is(err, service.ErrEmailRegistered), errors.Is(err, service.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}})
}

type loginRequest struct {
	Token string `json:"token" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Login(c.Request.Context(), req.Token)
	if err != nil {
		var provErr *identity.ProviderError
		switch {
		case errors.As(err, &provErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": "identity_provider_unavailable"})
		case errors.Is(err, identity.ErrInvalidToken):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}})
}
