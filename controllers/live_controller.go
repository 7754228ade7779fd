package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"comlab_tool/app"
	"comlab_tool/live"
	"comlab_tool/requests"
)

type LiveController struct{ *Srv }

func NewLiveController(s *Srv) *LiveController { return &LiveController{Srv: s} }

// Token issues a short-lived JWT for websocket clients that cannot send the cookie.
func (lc *LiveController) Token(c *gin.Context) {
	u := app.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	name := requests.ResolveDisplayName(u.FullName, u.DisplayName)
	tok, err := lc.Tokens.Generate(u.ID, u.Username, name, app.IsAdmin(c))
	if err != nil {
		fail(c, err, "could not issue token")
		return
	}
	c.JSON(http.StatusOK, app.H{"token": tok, "expiresIn": int(lc.Tokens.TTL().Seconds())})
}

func (lc *LiveController) originAllowed(origin string) bool {
	if origin == "" {
		return true
	}
	if strings.EqualFold(origin, strings.TrimRight(lc.Cfg.WebOrigin, "/")) {
		return true
	}
	for _, o := range lc.Cfg.RPOrigins {
		if strings.EqualFold(origin, strings.TrimRight(o, "/")) {
			return true
		}
	}
	return false
}

// Subscribe handles GET /api/live/:topic?status=&from=&to= as a websocket.
func (lc *LiveController) Subscribe(c *gin.Context) {
	topic := c.Param("topic")
	if !lc.Hub.HasTopic(topic) {
		c.JSON(http.StatusNotFound, app.H{"error": "unknown topic"})
		return
	}
	if !c.IsWebsocket() {
		c.JSON(http.StatusBadRequest, app.H{"error": "websocket upgrade required"})
		return
	}
	if !lc.originAllowed(c.GetHeader("Origin")) {
		c.JSON(http.StatusForbidden, app.H{"error": "origin not allowed"})
		return
	}
	v, ok := NewRequestController(lc.Srv).viewFromQuery(c)
	if !ok {
		return
	}
	scope := live.Scope{UserID: app.UserID(c), Admin: app.IsAdmin(c)}
	if err := lc.Hub.Serve(c.Writer, c.Request, topic, scope, v); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("websocket upgrade failed")
	}
}
