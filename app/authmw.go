package app

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"comlab_tool/db"
	"comlab_tool/models"
)

const AppSessionCookie = "app_session"

const (
	ctxUserID   = "userID"
	ctxUsername = "username"
	ctxIsAdmin  = "isAdmin"
	ctxUser     = "user"
)

var errUnauthenticated = errors.New("unauthenticated")

// AuthRequired accepts a bearer token or the app_session cookie and puts the
// user on the context.
func AuthRequired(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, err := a.resolveUserID(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		u, err := a.Repo.FindUserByID(c.Request.Context(), uid)
		if err != nil {
			if errors.Is(err, db.ErrNotFound) {
				if ck, cerr := c.Cookie(AppSessionCookie); cerr == nil && a.appSess != nil {
					_ = a.appSess.Delete(c.Request.Context(), ck)
				}
				c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "could not load user"})
			return
		}
		c.Set(ctxUserID, u.ID)
		c.Set(ctxUsername, u.Username)
		c.Set(ctxIsAdmin, u.HasAdminClaim(a.Config.AdminEmails))
		c.Set(ctxUser, u)
		c.Next()
	}
}

func (a *App) resolveUserID(c *gin.Context) (string, error) {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		claims, err := a.Tokens.Validate(strings.TrimPrefix(h, "Bearer "))
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	}
	if tok := c.Query("token"); tok != "" && c.IsWebsocket() {
		claims, err := a.Tokens.Validate(tok)
		if err != nil {
			return "", err
		}
		return claims.UserID, nil
	}
	if a.appSess == nil {
		return "", errUnauthenticated
	}
	ck, err := c.Cookie(AppSessionCookie)
	if err != nil || ck == "" {
		return "", errUnauthenticated
	}
	as, err := a.appSess.Get(c.Request.Context(), ck)
	if err != nil {
		return "", err
	}
	return as.UserID, nil
}

// AdminOnly requires the admin claim set by AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(ctxUserID); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if !c.GetBool(ctxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }
func IsAdmin(c *gin.Context) bool  { return c.GetBool(ctxIsAdmin) }

// CurrentUser returns the user loaded by AuthRequired.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(ctxUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// Actor returns the signed-in user as the author of an admin action.
func Actor(c *gin.Context) db.Actor {
	return db.Actor{ID: c.GetString(ctxUserID), Username: c.GetString(ctxUsername)}
}
