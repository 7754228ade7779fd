package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"comlab_tool/app"
)

type InviteController struct{ *Srv }

func GetInviteController(s *Srv) *InviteController { return &InviteController{Srv: s} }

// CreateInvite handles POST /api/admin/invites.
func (ic *InviteController) CreateInvite(c *gin.Context) {
	var in struct {
		Email   string `json:"email" binding:"required,email"`
		Expires int    `json:"expiresDays"`
		AsAdmin bool   `json:"asAdmin"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Expires <= 0 {
		in.Expires = 1
	}
	token, err := app.NewInviteToken()
	if err != nil {
		fail(c, err, "could not create invite")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	inv, err := ic.Repo.CreateInvite(ctx, in.Email, token, in.AsAdmin, time.Now().AddDate(0, 0, in.Expires), app.Actor(c).Username)
	if err != nil {
		fail(c, err, "could not create invite")
		return
	}

	link := app.InviteLink(ic.Cfg.WebOrigin, token)
	if err := app.SendInvite(ic.Cfg.SMTP, inv.Email, link, in.Expires); err != nil {
		log.Warn().Err(err).Str("email", inv.Email).Msg("invite email failed")
	}
	c.JSON(http.StatusCreated, app.H{
		"token":  token,
		"link":   link,
		"invite": inv,
	})
}

// ListInvites handles GET /api/admin/invites?pending=true.
func (ic *InviteController) ListInvites(c *gin.Context) {
	pending, _ := strconv.ParseBool(c.DefaultQuery("pending", "false"))
	invs, err := ic.Repo.ListInvites(c.Request.Context(), pending)
	if err != nil {
		fail(c, err, "could not list invites")
		return
	}
	c.JSON(http.StatusOK, app.H{"invites": invs})
}

func (ic *InviteController) DeleteInvite(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid id"})
		return
	}
	if err := ic.Repo.DeleteInvite(c.Request.Context(), uint(id)); err != nil {
		fail(c, err, "could not delete invite")
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
