package controllers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"comlab_tool/app"
	"comlab_tool/session"
	"comlab_tool/stats"
)

const statsUnavailable = "Unable to load statistics. Please try again later."

type StatsController struct{ *Srv }

func NewStatsController(s *Srv) *StatsController { return &StatsController{Srv: s} }

// rangeFor uses ?from=&to= when either is present, else the user's saved range.
func (sc *StatsController) rangeFor(c *gin.Context) (stats.Range, error) {
	from, hasFrom := c.GetQuery("from")
	to, hasTo := c.GetQuery("to")
	if !hasFrom && !hasTo && sc.Prefs != nil {
		saved, err := sc.Prefs.Get(c.Request.Context(), app.UserID(c))
		if err != nil {
			log.Warn().Err(err).Msg("load stats range")
		} else {
			from, to = saved.Start, saved.End
		}
	}
	return stats.ParseRange(from, to, sc.Loc)
}

func (sc *StatsController) dashboard(c *gin.Context) (stats.Dashboard, bool) {
	rg, err := sc.rangeFor(c)
	if err != nil {
		fail(c, err, "")
		return stats.Dashboard{}, false
	}
	d, err := sc.Stats.Dashboard(c.Request.Context(), rg)
	if err != nil {
		log.Error().Err(err).Msg("statistics unavailable")
		c.JSON(http.StatusServiceUnavailable, app.H{"error": statsUnavailable})
		return stats.Dashboard{}, false
	}
	return d, true
}

// Dashboard handles GET /api/stats.
func (sc *StatsController) Dashboard(c *gin.Context) {
	d, ok := sc.dashboard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, d)
}

// Export handles GET /api/admin/stats/export.pdf.
func (sc *StatsController) Export(c *gin.Context) {
	d, ok := sc.dashboard(c)
	if !ok {
		return
	}
	now := time.Now().In(sc.Loc)
	var buf bytes.Buffer
	if err := stats.WritePDF(&buf, d, now); err != nil {
		fail(c, err, "could not render report")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=lab-statistics-%s.pdf", now.Format("2006-01-02")))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

var errNoPrefs = errors.New("preferences are unavailable")

func (sc *StatsController) GetRange(c *gin.Context) {
	if sc.Prefs == nil {
		c.JSON(http.StatusServiceUnavailable, app.H{"error": errNoPrefs.Error()})
		return
	}
	r, err := sc.Prefs.Get(c.Request.Context(), app.UserID(c))
	if err != nil {
		fail(c, err, "could not load range")
		return
	}
	c.JSON(http.StatusOK, r)
}

// SaveRange handles PUT /api/stats/range {"start": "...", "end": "..."}.
func (sc *StatsController) SaveRange(c *gin.Context) {
	if sc.Prefs == nil {
		c.JSON(http.StatusServiceUnavailable, app.H{"error": errNoPrefs.Error()})
		return
	}
	var in session.StatsRange
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if _, err := stats.ParseRange(in.Start, in.End, sc.Loc); err != nil {
		fail(c, err, "")
		return
	}
	if err := sc.Prefs.Set(c.Request.Context(), app.UserID(c), in); err != nil {
		fail(c, err, "could not save range")
		return
	}
	c.JSON(http.StatusOK, in)
}

func (sc *StatsController) ClearRange(c *gin.Context) {
	if sc.Prefs == nil {
		c.JSON(http.StatusServiceUnavailable, app.H{"error": errNoPrefs.Error()})
		return
	}
	if err := sc.Prefs.Clear(c.Request.Context(), app.UserID(c)); err != nil {
		fail(c, err, "could not clear range")
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
