package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// TouchLastSeen records activity at most once per throttle window per user.
// The window is claimed with SETNX so concurrent requests write once.
func TouchLastSeen(a *App, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UserID(c)
		if uid == "" || a.RDB == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		if ok, err := a.RDB.SetNX(ctx, "comlab:lastseen:"+uid, "1", throttle).Result(); err == nil && ok {
			if err := a.Repo.TouchUserSeen(ctx, uid); err != nil {
				log.Warn().Err(err).Str("uid", uid).Msg("touch last seen")
			}
		}
		c.Next()
	}
}
