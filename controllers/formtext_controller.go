package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"comlab_tool/app"
	"comlab_tool/models"
)

type FormTextController struct{ *Srv }

func NewFormTextController(s *Srv) *FormTextController { return &FormTextController{Srv: s} }

func formParam(c *gin.Context) (string, bool) {
	switch f := c.Param("form"); f {
	case models.FormBorrow, models.FormReport:
		return f, true
	}
	c.JSON(http.StatusNotFound, app.H{"error": "unknown form"})
	return "", false
}

func (fc *FormTextController) Get(c *gin.Context) {
	form, ok := formParam(c)
	if !ok {
		return
	}
	ft, err := fc.Repo.GetFormText(c.Request.Context(), form)
	if err != nil {
		fail(c, err, "could not load form text")
		return
	}
	c.JSON(http.StatusOK, ft)
}

// Save handles PUT /api/admin/forms/:form; both texts are required.
func (fc *FormTextController) Save(c *gin.Context) {
	form, ok := formParam(c)
	if !ok {
		return
	}
	var in struct {
		NoticeText string `json:"noticeText"`
		TermsText  string `json:"termsText"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	in.NoticeText, in.TermsText = strings.TrimSpace(in.NoticeText), strings.TrimSpace(in.TermsText)
	if in.NoticeText == "" || in.TermsText == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "Notice text and terms text cannot be empty."})
		return
	}
	ft, err := fc.Repo.SaveFormText(c.Request.Context(), models.FormText{
		Form:       form,
		NoticeText: in.NoticeText,
		TermsText:  in.TermsText,
		UpdatedBy:  app.Actor(c).Username,
	})
	if err != nil {
		fail(c, err, "could not save form text")
		return
	}
	c.JSON(http.StatusOK, ft)
}
