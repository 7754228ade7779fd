package controllers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"comlab_tool/app"
	"comlab_tool/requests"
	"comlab_tool/storage"
)

// storeImage saves the optional multipart image in field under prefix. It
// returns nil when the request carries no file.
func (s *Srv) storeImage(c *app.Ctx, field, prefix string) (*storage.Blob, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ct, err := storage.DetectType(f)
	if err != nil {
		return nil, err
	}
	if err := requests.ValidateImage(fh.Size, ct); err != nil {
		return nil, err
	}
	blob, err := s.Blobs.Put(c.Request.Context(), prefix, fh.Filename, f)
	if err != nil {
		return nil, err
	}
	return &blob, nil
}

// dropBlob removes a stored image, logging failures only.
func (s *Srv) dropBlob(c *app.Ctx, url string) {
	if url == "" {
		return
	}
	if err := s.Blobs.Delete(c.Request.Context(), s.Blobs.KeyFromURL(url)); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("delete blob")
	}
}
