package handler

import (
	"errors"

	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/auth/service"
	"github.com/AlfonsoCorona1996/Base-mayorista-web-sub000/internal/web"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			web.Error(c, 40101, "Usuario o contraseña incorrectos")
		case errors.Is(err, service.ErrUserDisabled):
			web.Forbidden(c, "La cuenta está deshabilitada")
		default:
			web.InternalError(c, "No se pudo iniciar sesión: "+err.Error())
		}
		return
	}

	web.Success(c, gin.H{"user": user, "token": pair})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	pair, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		web.Error(c, 40102, "Token de actualización inválido")
		return
	}
	web.Success(c, pair)
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req logoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.svc.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		web.InternalError(c, "No se pudo cerrar la sesión: "+err.Error())
		return
	}
	web.Success(c, gin.H{"logged_out": true})
}

// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.svc.GetCurrentUser(c.Request.Context(), web.GetUserID(c))
	if err != nil {
		web.NotFound(c, "El usuario no existe")
		return
	}
	web.Success(c, user)
}

// POST /api/v1/users (admin)
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		web.BadRequest(c, "Parámetros inválidos: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		web.InternalError(c, "No se pudo crear el usuario: "+err.Error())
		return
	}
	web.Created(c, user)
}
