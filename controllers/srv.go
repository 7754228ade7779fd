package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"comlab_tool/app"
	"comlab_tool/auth"
	"comlab_tool/config"
	"comlab_tool/db"
	"comlab_tool/live"
	"comlab_tool/models"
	"comlab_tool/requests"
	"comlab_tool/session"
	"comlab_tool/stats"
	"comlab_tool/storage"
)

// Srv is the dependency set shared by every handler.
type Srv struct {
	WA       *webauthn.WebAuthn
	Repo     *db.Repo
	Sess     *session.Store
	AppSess  *session.AppSessionStore
	Cfg      config.Config
	Hub      *live.Hub
	Notifier live.Notifier
	Blobs    storage.Store
	Tokens   *auth.Issuer
	Stats    *stats.Service
	Prefs    *session.RangeStore
	Loc      *time.Location
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		WA:       a.WA,
		Repo:     a.Repo,
		Sess:     a.Ceremonies(),
		AppSess:  a.AppSessions(),
		Cfg:      a.Config,
		Hub:      a.Hub,
		Notifier: a.Notifier,
		Blobs:    a.Blobs,
		Tokens:   a.Tokens,
		Stats:    a.Stats,
		Prefs:    a.Prefs,
		Loc:      time.Local,
	}
}

func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.Cfg.SecureCookies(),
		MaxAge:   int(maxAge / time.Second),
	})
}

func (s *Srv) clearAppCookie(w http.ResponseWriter) { s.setAppCookie(w, "", -time.Second) }

// issueSession records the login and sets a fresh app session cookie.
func (s *Srv) issueSession(ctx context.Context, w http.ResponseWriter, userID, ip, ua string) error {
	if err := s.Repo.TouchUserLogin(ctx, userID, ip, ua); err != nil {
		log.Warn().Err(err).Str("user", userID).Msg("touch login")
	}
	id := uuid.NewString()
	if err := s.AppSess.Create(ctx, id, userID); err != nil {
		return err
	}
	s.setAppCookie(w, id, s.AppSess.TTL())
	return nil
}

// notify tells live subscribers that a request list changed.
func (s *Srv) notify(ctx context.Context, kind models.CatalogKind) {
	if s.Notifier == nil {
		return
	}
	topic := models.TopicBorrowList
	if kind == models.KindReport {
		topic = models.TopicReportList
	}
	s.Notifier.Notify(context.WithoutCancel(ctx), topic)
}

// fail maps domain errors onto status codes; anything unknown is a logged 500.
func fail(c *app.Ctx, err error, msg string) {
	var verr *requests.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, app.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": "not found"})
	case errors.Is(err, requests.ErrRemarksRequired),
		errors.Is(err, models.ErrUnknownStatus),
		errors.Is(err, stats.ErrBadRange),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrUnsupportedType),
		errors.Is(err, db.ErrCatalogKind):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, requests.ErrInvalidTransition),
		errors.Is(err, db.ErrRoomExists),
		errors.Is(err, db.ErrInviteUsed):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(msg)
		c.JSON(http.StatusInternalServerError, app.H{"error": msg})
	}
}

// waUser adapts a stored user to webauthn.User.
type waUser struct {
	user  models.User
	creds []webauthn.Credential
}

func (u *waUser) WebAuthnID() []byte                         { id, _ := uuid.Parse(u.user.ID); return id[:] }
func (u *waUser) WebAuthnName() string                       { return u.user.Username }
func (u *waUser) WebAuthnDisplayName() string                { return u.user.DisplayName }
func (u *waUser) WebAuthnIcon() string                       { return "" }
func (u *waUser) WebAuthnCredentials() []webauthn.Credential { return u.creds }

func toWaCred(c models.Credential) webauthn.Credential {
	return webauthn.Credential{
		ID:              c.CredentialID,
		PublicKey:       c.PublicKey,
		AttestationType: c.AttestationType,
		Authenticator: webauthn.Authenticator{
			AAGUID:       c.AAGUID,
			SignCount:    c.SignCount,
			CloneWarning: c.CloneWarning,
		},
		Flags: webauthn.CredentialFlags{
			BackupEligible: c.BackupEligible,
			BackupState:    c.BackupState,
		},
	}
}

func fromWaCred(userID string, cred *webauthn.Credential) *models.Credential {
	return &models.Credential{
		UserID:          userID,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		AttestationType: cred.AttestationType,
		AAGUID:          cred.Authenticator.AAGUID,
		SignCount:       cred.Authenticator.SignCount,
		CloneWarning:    cred.Authenticator.CloneWarning,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}
}

func (s *Srv) wrapUser(ctx context.Context, u *models.User) *waUser {
	cs, err := s.Repo.LoadUserCredentials(ctx, u.ID)
	if err != nil {
		log.Warn().Err(err).Str("user", u.ID).Msg("load credentials")
	}
	ws := make([]webauthn.Credential, 0, len(cs))
	for _, c := range cs {
		ws = append(ws, toWaCred(c))
	}
	return &waUser{user: *u, creds: ws}
}

func (s *Srv) loadWAUserByID(ctx context.Context, id string) (*waUser, error) {
	u, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.wrapUser(ctx, u), nil
}

func (s *Srv) loadWAUserByUsername(ctx context.Context, username string) (*waUser, error) {
	u, err := s.Repo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.wrapUser(ctx, u), nil
}
