package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"comlab_tool/app"
	"comlab_tool/db"
	"comlab_tool/models"
)

const ceremonyTimeout = 3 * time.Second

var errBadInvite = errors.New("invalid or expired invite")

func registrationOptions() []webauthn.RegistrationOption {
	return []webauthn.RegistrationOption{
		webauthn.WithResidentKeyRequirement(protocol.ResidentKeyRequirementRequired),
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			UserVerification: protocol.VerificationRequired,
		}),
	}
}

func addCredentialKey(uid string) string { return "add:" + uid }

func (s *Srv) usableInvite(ctx context.Context, token string) (*models.Invite, error) {
	inv, err := s.Repo.GetInviteByToken(ctx, token)
	if err != nil {
		return nil, errBadInvite
	}
	if !inv.Usable(time.Now()) {
		return nil, errBadInvite
	}
	return inv, nil
}

// WhoAmI reports the signed-in identity.
func (s *Srv) WhoAmI(c *app.Ctx) {
	u := app.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	n, _ := s.Repo.CountCredentials(c.Request.Context(), u.ID)
	c.JSON(http.StatusOK, app.H{
		"userID":      u.ID,
		"username":    u.Username,
		"isAdmin":     app.IsAdmin(c),
		"credentials": n,
	})
}

// BeginRegistration starts passkey enrollment for an invited email.
func (s *Srv) BeginRegistration(c *gin.Context) {
	var in struct {
		InviteToken string `json:"inviteToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	inv, err := s.usableInvite(ctx, in.InviteToken)
	if err != nil {
		c.JSON(http.StatusForbidden, app.H{"error": err.Error()})
		return
	}
	u, err := s.Repo.FindOrCreateUser(ctx, inv.Email, app.NewUserID(), inv.AsAdmin)
	if err != nil {
		fail(c, err, "could not create user")
		return
	}

	opts, sd, err := s.WA.BeginRegistration(s.wrapUser(ctx, u), registrationOptions()...)
	if err != nil {
		fail(c, err, "could not begin registration")
		return
	}
	if err := s.Sess.SaveReg(ctx, in.InviteToken, sd); err != nil {
		fail(c, err, "could not save ceremony")
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

// FinishRegistration stores the passkey, consumes the invite and signs the user in.
func (s *Srv) FinishRegistration(c *gin.Context) {
	token := c.Query("inviteToken")
	if token == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing inviteToken"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	inv, err := s.usableInvite(ctx, token)
	if err != nil {
		c.JSON(http.StatusForbidden, app.H{"error": err.Error()})
		return
	}
	wUser, err := s.loadWAUserByUsername(ctx, inv.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
		return
	}
	sd, err := s.Sess.LoadReg(ctx, token)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.MarkInviteUsed(ctx, token); err != nil {
		fail(c, err, "could not consume invite")
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(wUser.user.ID, cred)); err != nil {
		fail(c, err, "could not store credential")
		return
	}
	s.Sess.DelReg(ctx, token)
	log.Info().Str("user", wUser.user.Username).Bool("admin", inv.AsAdmin).Msg("passkey registered")

	if err := s.issueSession(ctx, c.Writer, wUser.user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		fail(c, err, "create app session failed")
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "username": wUser.user.Username})
}

// BeginAddCredential lets a signed-in user enroll another device.
func (s *Srv) BeginAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	uid := app.UserID(c)
	wUser, err := s.loadWAUserByID(ctx, uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	opts, sd, err := s.WA.BeginRegistration(wUser, registrationOptions()...)
	if err != nil {
		fail(c, err, "could not begin registration")
		return
	}
	if err := s.Sess.SaveReg(ctx, addCredentialKey(uid), sd); err != nil {
		fail(c, err, "could not save ceremony")
		return
	}
	c.JSON(http.StatusOK, app.H{"opts": opts})
}

func (s *Srv) FinishAddCredential(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	uid := app.UserID(c)
	wUser, err := s.loadWAUserByID(ctx, uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}
	sd, err := s.Sess.LoadReg(ctx, addCredentialKey(uid))
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}
	cred, err := s.WA.FinishRegistration(wUser, *sd, c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.AddCredential(ctx, fromWaCred(uid, cred)); err != nil {
		fail(c, err, "could not store credential")
		return
	}
	s.Sess.DelReg(ctx, addCredentialKey(uid))
	c.JSON(http.StatusOK, app.H{"ok": true})
}

type loginBeginReq struct {
	Username     string `json:"username"`
	Discoverable bool   `json:"discoverable"`
}

type loginBeginResp struct {
	Options   *protocol.CredentialAssertion `json:"options"`
	SessionID string                        `json:"sessionId"`
}

func (s *Srv) BeginLogin(c *gin.Context) {
	var req loginBeginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "bad request"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	var (
		opts *protocol.CredentialAssertion
		sd   *webauthn.SessionData
		err  error
	)
	if req.Discoverable || req.Username == "" {
		opts, sd, err = s.WA.BeginDiscoverableLogin(webauthn.WithUserVerification(protocol.VerificationRequired))
	} else {
		wUser, lerr := s.loadWAUserByUsername(ctx, req.Username)
		if lerr != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		opts, sd, err = s.WA.BeginLogin(wUser, webauthn.WithUserVerification(protocol.VerificationRequired))
	}
	if err != nil {
		fail(c, err, "could not begin login")
		return
	}

	sid := uuid.NewString()
	if err := s.Sess.SaveAuth(ctx, sid, sd); err != nil {
		fail(c, err, "could not save ceremony")
		return
	}
	c.JSON(http.StatusOK, loginBeginResp{Options: opts, SessionID: sid})
}

// FinishLogin verifies the assertion and lands admins and faculty on their dashboards.
func (s *Srv) FinishLogin(c *gin.Context) {
	sid := c.Query("sessionId")
	if sid == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing sessionId"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), ceremonyTimeout)
	defer cancel()

	sd, err := s.Sess.LoadAuth(ctx, sid)
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "session expired or invalid"})
		return
	}

	var (
		wUser *waUser
		cred  *webauthn.Credential
	)
	if username := c.Query("username"); username != "" {
		wUser, err = s.loadWAUserByUsername(ctx, username)
		if err != nil {
			c.JSON(http.StatusNotFound, app.H{"error": "user not found"})
			return
		}
		cred, err = s.WA.FinishLogin(wUser, *sd, c.Request)
	} else {
		handler := func(rawID, _ []byte) (webauthn.User, error) {
			u, _, ferr := s.Repo.FindUserByCredentialID(ctx, rawID)
			if ferr != nil {
				if errors.Is(ferr, db.ErrNotFound) {
					return nil, protocol.ErrBadRequest.WithDetails("credential not found")
				}
				return nil, ferr
			}
			return s.wrapUser(ctx, u), nil
		}
		var user webauthn.User
		user, cred, err = s.WA.FinishPasskeyLogin(handler, *sd, c.Request)
		if err == nil {
			wUser = user.(*waUser)
		}
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, app.H{"error": err.Error()})
		return
	}
	if err := s.Repo.UpdateCredentialCounter(ctx, cred.ID, cred.Authenticator.SignCount, cred.Authenticator.CloneWarning); err != nil {
		log.Warn().Err(err).Msg("update credential counter")
	}
	s.Sess.DelAuth(ctx, sid)

	if err := s.issueSession(ctx, c.Writer, wUser.user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		fail(c, err, "create app session failed")
		return
	}
	landing := landingFor(wUser.user.HasAdminClaim(s.Cfg.AdminEmails))
	c.JSON(http.StatusOK, app.H{"ok": true, "landing": landing, "redirect": "/" + landing})
}

// Logout drops the app session and clears the cookie.
func (s *Srv) Logout(c *gin.Context) {
	if ck, err := c.Cookie(app.AppSessionCookie); err == nil && ck != "" && s.AppSess != nil {
		_ = s.AppSess.Delete(c.Request.Context(), ck)
	}
	s.clearAppCookie(c.Writer)
	c.JSON(http.StatusOK, app.H{"ok": true})
}

func landingFor(admin bool) string {
	if admin {
		return "admin"
	}
	return "faculty"
}
