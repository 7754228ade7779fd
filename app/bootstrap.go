package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"comlab_tool/config"
	"comlab_tool/db"
)

// NewInviteToken returns a random hex token for invite links.
func NewInviteToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// InviteLink is the registration URL sent to an invited user.
func InviteLink(webOrigin, token string) string {
	return fmt.Sprintf("%s/login?inviteToken=%s", webOrigin, token)
}

// BootstrapFirstAdmin issues an admin invite for BOOTSTRAP_ADMIN_EMAIL while
// no admin exists and logs the registration link.
func BootstrapFirstAdmin(ctx context.Context, cfg config.Config, repo *db.Repo) {
	if cfg.BootstrapEmail == "" {
		return
	}
	n, err := repo.CountAdmins(ctx)
	if err != nil {
		log.Error().Err(err).Msg("bootstrap: count admins")
		return
	}
	if n > 0 {
		return
	}
	token, err := NewInviteToken()
	if err != nil {
		log.Error().Err(err).Msg("bootstrap: token")
		return
	}
	if _, err := repo.CreateInvite(ctx, cfg.BootstrapEmail, token, true, time.Now().Add(24*time.Hour), "bootstrap"); err != nil {
		log.Error().Err(err).Msg("bootstrap invite failed")
		return
	}
	log.Info().Str("email", cfg.BootstrapEmail).Str("url", InviteLink(cfg.WebOrigin, token)).
		Msg("no admin found; open this URL to register the first admin")
}
