package controllers

import (
	"github.com/asadazo/asadazo/app/services"
	"github.com/asadazo/asadazo/pkg/auth"
	"github.com/asadazo/asadazo/pkg/ctx"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Register POST /register
func (ac *AuthController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}
	user, err := ac.service.Register(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{"ok": true, "user": user.Public()})
}

// Login POST /login sets the session cookie.
func (ac *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	user, token, err := ac.service.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.SetCookie(auth.SessionCookie(token))
	c.OK(map[string]any{
		"ok": true,
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// Logout POST /logout
func (ac *AuthController) Logout(c *ctx.Context) {
	c.SetCookie(auth.ExpiredCookie())
	c.OK(map[string]any{"ok": true})
}

// Me GET /me never fails; an absent or invalid session is user:null.
func (ac *AuthController) Me(c *ctx.Context) {
	claims := c.Claims()
	if claims == nil {
		c.OK(map[string]any{"user": nil})
		return
	}
	c.OK(map[string]any{"user": map[string]any{
		"id":    claims.UserID(),
		"email": claims.Email,
		"role":  claims.Role,
	}})
}

// Promote POST /admin-promote
func (ac *AuthController) Promote(c *ctx.Context) {
	var in struct {
		Email string `json:"email"`
	}
	if !c.BindJSON(&in) {
		return
	}
	user, err := ac.service.Promote(c.Context(), in.Email)
	if err != nil {
		fail(c, err)
		return
	}
	c.OK(map[string]any{"ok": true, "user": map[string]any{
		"id":    user.ID,
		"email": user.Email,
		"role":  user.Role,
	}})
}
