package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.authSvc.Login(c.Request.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.sessions.Set(c, result.Session.Token, result.Session.ExpiresAt)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":   result.Principal.ID.String(),
		"role": result.Principal.Role,
	}})
}

func (s *Server) Logout(c *gin.Context) {
	if token, ok := s.sessions.ReadToken(c); ok {
		if err := s.authSvc.Logout(c.Request.Context(), token); err != nil {
			AbortWithError(c, err)
			return
		}
	}
	s.sessions.Clear(c)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) Me(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"id":   p.ID.String(),
		"role": p.Role,
	}})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) ChangePassword(c *gin.Context) {
	p, ok := mustPrincipal(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.authSvc.ChangePassword(c.Request.Context(), p, req.CurrentPassword, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
