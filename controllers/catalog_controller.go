package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"comlab_tool/app"
	"comlab_tool/db"
	"comlab_tool/models"
)

type CatalogController struct{ *Srv }

func NewCatalogController(s *Srv) *CatalogController { return &CatalogController{Srv: s} }

func catalogKind(c *gin.Context) (models.CatalogKind, bool) {
	kind, ok := models.ParseCatalogKind(c.Param("kind"))
	if !ok {
		c.JSON(http.StatusBadRequest, app.H{"error": "kind must be borrow or report"})
	}
	return kind, ok
}

type catalogForm struct {
	name     string
	quantity int
}

func readCatalogForm(c *gin.Context, kind models.CatalogKind) (catalogForm, bool) {
	f := catalogForm{name: strings.TrimSpace(c.PostForm("name"))}
	if f.name == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "name is required"})
		return f, false
	}
	if kind == models.KindBorrow {
		q, err := strconv.Atoi(strings.TrimSpace(c.PostForm("quantity")))
		if err != nil || q < 0 {
			c.JSON(http.StatusBadRequest, app.H{"error": "quantity must be a non-negative number"})
			return f, false
		}
		f.quantity = q
	}
	return f, true
}

// List handles GET /api/catalog/:kind.
func (cc *CatalogController) List(c *gin.Context) {
	kind, ok := catalogKind(c)
	if !ok {
		return
	}
	items, err := cc.Repo.ListCatalog(c.Request.Context(), kind)
	if err != nil {
		fail(c, err, "could not load catalog")
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items})
}

// Create handles the multipart POST /api/admin/catalog/:kind; image is required.
func (cc *CatalogController) Create(c *gin.Context) {
	kind, ok := catalogKind(c)
	if !ok {
		return
	}
	form, ok := readCatalogForm(c, kind)
	if !ok {
		return
	}
	blob, err := cc.storeImage(c, "image", "catalog/"+string(kind))
	if err != nil {
		fail(c, err, "could not store image")
		return
	}
	if blob == nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "image is required"})
		return
	}

	it := &models.CatalogItem{
		Kind:     kind,
		Name:     form.name,
		Quantity: form.quantity,
		ImageURL: blob.URL,
		ThumbURL: blob.ThumbURL,
	}
	if err := cc.Repo.CreateCatalogItem(c.Request.Context(), it); err != nil {
		cc.dropBlob(c, blob.URL)
		fail(c, err, "could not create item")
		return
	}
	c.JSON(http.StatusCreated, it)
}

// Update handles PUT /api/admin/catalog/:kind/:id. Without a new image the
// old one is kept.
func (cc *CatalogController) Update(c *gin.Context) {
	kind, ok := catalogKind(c)
	if !ok {
		return
	}
	form, ok := readCatalogForm(c, kind)
	if !ok {
		return
	}
	prev, err := cc.Repo.GetCatalogItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err, "could not load item")
		return
	}
	blob, err := cc.storeImage(c, "image", "catalog/"+string(kind))
	if err != nil {
		fail(c, err, "could not store image")
		return
	}

	patch := db.CatalogPatch{Name: form.name, Quantity: form.quantity}
	if blob != nil {
		patch.ImageURL, patch.ThumbURL = blob.URL, blob.ThumbURL
	}
	it, returned, err := cc.Repo.UpdateCatalogItem(c.Request.Context(), kind, prev.ID, patch, app.Actor(c))
	if err != nil {
		if blob != nil {
			cc.dropBlob(c, blob.URL)
		}
		fail(c, err, "could not update item")
		return
	}
	if blob != nil {
		cc.dropBlob(c, prev.ImageURL)
	}
	if len(returned) > 0 {
		cc.notify(c.Request.Context(), models.KindBorrow)
	}
	c.JSON(http.StatusOK, app.H{"item": it, "returned": returned})
}

// Delete removes an item and the requests filed against it.
func (cc *CatalogController) Delete(c *gin.Context) {
	kind, ok := catalogKind(c)
	if !ok {
		return
	}
	it, err := cc.Repo.DeleteCatalogItem(c.Request.Context(), kind, c.Param("id"))
	if err != nil {
		fail(c, err, "could not delete item")
		return
	}
	cc.dropBlob(c, it.ImageURL)
	cc.notify(c.Request.Context(), kind)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
