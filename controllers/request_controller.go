package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"comlab_tool/app"
	"comlab_tool/db"
	"comlab_tool/models"
	"comlab_tool/requests"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

func (rc *RequestController) requesterName(c *gin.Context) string {
	if u := app.CurrentUser(c); u != nil {
		return requests.ResolveDisplayName(u.FullName, u.DisplayName)
	}
	return requests.AnonymousName
}

// CreateBorrow handles POST /api/borrows (JSON or form).
func (rc *RequestController) CreateBorrow(c *gin.Context) {
	var in requests.BorrowInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	var item *models.CatalogItem
	if id := strings.TrimSpace(in.CatalogItemID); id != "" {
		it, err := rc.Repo.GetCatalogItem(c.Request.Context(), id)
		if err != nil {
			fail(c, err, "could not load catalog item")
			return
		}
		if it.Kind != models.KindBorrow {
			fail(c, db.ErrCatalogKind, "")
			return
		}
		avail, err := rc.Repo.CatalogAvailable(c.Request.Context(), it)
		if err != nil {
			fail(c, err, "could not load catalog item")
			return
		}
		if err := requests.CheckStock(avail); err != nil {
			fail(c, err, "")
			return
		}
		item = it
		if strings.TrimSpace(in.Equipment) == "" {
			in.Equipment = it.Name
		}
	}
	if err := requests.ValidateBorrow(in, time.Now().In(rc.Loc)); err != nil {
		fail(c, err, "")
		return
	}

	b := &models.BorrowRequest{
		Equipment:     strings.TrimSpace(in.Equipment),
		BorrowDate:    strings.TrimSpace(in.BorrowDate),
		ReturnDate:    strings.TrimSpace(in.ReturnDate),
		Purpose:       strings.TrimSpace(in.Purpose),
		RequesterID:   app.UserID(c),
		RequesterName: rc.requesterName(c),
	}
	if item != nil {
		b.CatalogItemID = &item.ID
		b.ImageURL = item.ImageURL
	}
	if err := rc.Repo.CreateBorrow(c.Request.Context(), b); err != nil {
		fail(c, err, "could not submit request")
		return
	}
	rc.notify(c.Request.Context(), models.KindBorrow)
	c.JSON(http.StatusCreated, b)
}

// CreateReport handles POST /api/reports (JSON, or multipart with an image).
func (rc *RequestController) CreateReport(c *gin.Context) {
	var in requests.ReportInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}

	var catalogID *string
	if id := strings.TrimSpace(in.CatalogItemID); id != "" {
		it, err := rc.Repo.GetCatalogItem(c.Request.Context(), id)
		if err != nil {
			fail(c, err, "could not load catalog item")
			return
		}
		if it.Kind != models.KindReport {
			fail(c, db.ErrCatalogKind, "")
			return
		}
		catalogID = &it.ID
		if strings.TrimSpace(in.Equipment) == "" {
			in.Equipment = it.Name
		}
	}
	if err := requests.ValidateReport(in); err != nil {
		fail(c, err, "")
		return
	}

	blob, err := rc.storeImage(c, "image", "reports")
	if err != nil {
		fail(c, err, "could not store image")
		return
	}

	rep := &models.ReportRequest{
		CatalogItemID: catalogID,
		Equipment:     strings.TrimSpace(in.Equipment),
		Issue:         strings.TrimSpace(in.Issue),
		Room:          strings.TrimSpace(in.Room),
		PC:            in.PC,
		RequesterID:   app.UserID(c),
		RequesterName: rc.requesterName(c),
	}
	if blob != nil {
		rep.ImageURL = blob.URL
	}
	if err := rc.Repo.CreateReport(c.Request.Context(), rep); err != nil {
		if blob != nil {
			rc.dropBlob(c, blob.URL)
		}
		fail(c, err, "could not submit report")
		return
	}
	rc.notify(c.Request.Context(), models.KindReport)
	c.JSON(http.StatusCreated, rep)
}

// viewFromQuery reads ?status=&from=&to= into a dashboard view.
func (rc *RequestController) viewFromQuery(c *gin.Context) (requests.ViewState, bool) {
	st, err := models.ParseFilterStatus(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return requests.ViewState{}, false
	}
	v := requests.ViewState{Status: st, From: c.Query("from"), To: c.Query("to")}
	if _, _, err := v.Bounds(rc.Loc); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "dates must use YYYY-MM-DD"})
		return requests.ViewState{}, false
	}
	return v, true
}

// scopeQuery limits faculty to their own requests unless all is set by an admin route.
func scopeQuery(c *gin.Context, all bool) db.RequestQuery {
	if all {
		return db.RequestQuery{}
	}
	return db.RequestQuery{RequesterID: app.UserID(c)}
}

func (rc *RequestController) listBorrows(c *gin.Context, all bool) {
	v, ok := rc.viewFromQuery(c)
	if !ok {
		return
	}
	rows, err := rc.Repo.ListBorrows(c.Request.Context(), scopeQuery(c, all))
	if err != nil {
		fail(c, err, "could not load requests")
		return
	}
	c.JSON(http.StatusOK, app.H{
		"view":   v,
		"items":  requests.Filter(rows, v, rc.Loc),
		"counts": requests.CountByStatus(rows),
	})
}

func (rc *RequestController) listReports(c *gin.Context, all bool) {
	v, ok := rc.viewFromQuery(c)
	if !ok {
		return
	}
	rows, err := rc.Repo.ListReports(c.Request.Context(), scopeQuery(c, all))
	if err != nil {
		fail(c, err, "could not load reports")
		return
	}
	c.JSON(http.StatusOK, app.H{
		"view":   v,
		"items":  requests.Filter(rows, v, rc.Loc),
		"counts": requests.CountByStatus(rows),
	})
}

func (rc *RequestController) MyBorrows(c *gin.Context)  { rc.listBorrows(c, false) }
func (rc *RequestController) MyReports(c *gin.Context)  { rc.listReports(c, false) }
func (rc *RequestController) AllBorrows(c *gin.Context) { rc.listBorrows(c, true) }
func (rc *RequestController) AllReports(c *gin.Context) { rc.listReports(c, true) }

// GetBorrow returns one borrow request to its owner or an admin.
func (rc *RequestController) GetBorrow(c *gin.Context) {
	b, err := rc.Repo.GetBorrow(c.Request.Context(), c.Param("id"))
	if err == nil && !app.IsAdmin(c) && b.RequesterID != app.UserID(c) {
		err = db.ErrNotFound
	}
	if err != nil {
		fail(c, err, "could not load request")
		return
	}
	c.JSON(http.StatusOK, b)
}

func (rc *RequestController) GetReport(c *gin.Context) {
	rep, err := rc.Repo.GetReport(c.Request.Context(), c.Param("id"))
	if err == nil && !app.IsAdmin(c) && rep.RequesterID != app.UserID(c) {
		err = db.ErrNotFound
	}
	if err != nil {
		fail(c, err, "could not load report")
		return
	}
	c.JSON(http.StatusOK, rep)
}

type statusInput struct {
	Status  string `json:"status" binding:"required"`
	Remarks string `json:"remarks"`
}

func bindStatus(c *gin.Context) (models.Status, string, bool) {
	var in statusInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return "", "", false
	}
	to, err := models.NormalizeStatus(in.Status)
	if err != nil {
		fail(c, err, "")
		return "", "", false
	}
	return to, in.Remarks, true
}

// SetBorrowStatus handles PATCH /api/admin/borrows/:id/status.
func (rc *RequestController) SetBorrowStatus(c *gin.Context) {
	to, remarks, ok := bindStatus(c)
	if !ok {
		return
	}
	b, err := rc.Repo.SetBorrowStatus(c.Request.Context(), c.Param("id"), to, remarks, app.Actor(c))
	if err != nil {
		fail(c, err, "could not update request")
		return
	}
	rc.notify(c.Request.Context(), models.KindBorrow)
	c.JSON(http.StatusOK, b)
}

// SetReportStatus handles PATCH /api/admin/reports/:id/status.
func (rc *RequestController) SetReportStatus(c *gin.Context) {
	to, remarks, ok := bindStatus(c)
	if !ok {
		return
	}
	rep, err := rc.Repo.SetReportStatus(c.Request.Context(), c.Param("id"), to, remarks, app.Actor(c))
	if err != nil {
		fail(c, err, "could not update report")
		return
	}
	rc.notify(c.Request.Context(), models.KindReport)
	c.JSON(http.StatusOK, rep)
}

func (rc *RequestController) history(c *gin.Context, kind models.CatalogKind) {
	logs, err := rc.Repo.StatusHistory(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		fail(c, err, "could not load history")
		return
	}
	c.JSON(http.StatusOK, app.H{"history": logs})
}

func (rc *RequestController) BorrowHistory(c *gin.Context) { rc.history(c, models.KindBorrow) }
func (rc *RequestController) ReportHistory(c *gin.Context) { rc.history(c, models.KindReport) }
