package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"comlab_tool/app"
	"comlab_tool/models"
	"comlab_tool/requests"
)

type UserController struct{ *Srv }

func GetUserController(s *Srv) *UserController { return &UserController{Srv: s} }

// ListUsers handles GET /api/admin/users?q=alice&page=1&size=20.
func (uc *UserController) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	res, err := uc.Repo.ListUsers(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		fail(c, err, "could not list users")
		return
	}
	c.JSON(http.StatusOK, app.H{
		"total": res.Total,
		"users": res.Users,
	})
}

func (uc *UserController) GetUser(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid uuid"})
		return
	}
	user, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "could not load user")
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// DeleteUser removes an account and revokes its sessions. Admins cannot be
// deleted, nor can the caller delete itself.
func (uc *UserController) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	if id == app.UserID(c) {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot delete yourself"})
		return
	}
	target, err := uc.Repo.FindUserByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "could not load user")
		return
	}
	if target.HasAdminClaim(uc.Cfg.AdminEmails) {
		c.JSON(http.StatusForbidden, app.H{"error": "cannot delete an admin"})
		return
	}
	if err := uc.Repo.DeleteUserByID(c.Request.Context(), id); err != nil {
		fail(c, err, "could not delete user")
		return
	}
	if uc.AppSess != nil {
		_ = uc.AppSess.RevokeAllForUser(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// SetAdmin handles PUT /api/admin/users/:id/admin {"isAdmin": bool}.
func (uc *UserController) SetAdmin(c *gin.Context) {
	var in struct {
		IsAdmin *bool `json:"isAdmin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	if id == app.UserID(c) && !*in.IsAdmin {
		c.JSON(http.StatusBadRequest, app.H{"error": "cannot revoke your own admin claim"})
		return
	}
	if err := uc.Repo.SetUserAdmin(c.Request.Context(), id, *in.IsAdmin); err != nil {
		fail(c, err, "could not update user")
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "isAdmin": *in.IsAdmin})
}

type profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
	IsAdmin     bool   `json:"isAdmin"`
	Landing     string `json:"landing"`
}

func profileOf(u *models.User, admin bool) profile {
	photo := u.PhotoURL
	if photo == "" {
		photo = models.DefaultPhotoURL
	}
	return profile{
		ID:          u.ID,
		DisplayName: requests.ResolveDisplayName(u.FullName, u.DisplayName),
		FullName:    u.FullName,
		Email:       u.Username,
		PhotoURL:    photo,
		IsAdmin:     admin,
		Landing:     landingFor(admin),
	}
}

// Me returns the profile widget data for the signed-in user.
func (uc *UserController) Me(c *gin.Context) {
	u := app.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, profileOf(u, app.IsAdmin(c)))
}

// UpdateProfile handles PUT /api/me/profile {"fullName": "..."}; empty clears the override.
func (uc *UserController) UpdateProfile(c *gin.Context) {
	var in struct {
		FullName string `json:"fullName"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if len(in.FullName) > 255 {
		c.JSON(http.StatusBadRequest, app.H{"error": "fullName too long"})
		return
	}
	u, err := uc.Repo.UpdateProfile(c.Request.Context(), app.UserID(c), in.FullName)
	if err != nil {
		fail(c, err, "could not update profile")
		return
	}
	c.JSON(http.StatusOK, profileOf(u, app.IsAdmin(c)))
}
