package controllers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"comlab_tool/app"
)

type RoomController struct{ *Srv }

func NewRoomController(s *Srv) *RoomController { return &RoomController{Srv: s} }

func (rc *RoomController) List(c *gin.Context) {
	rooms, err := rc.Repo.ListRooms(c.Request.Context())
	if err != nil {
		fail(c, err, "could not load rooms")
		return
	}
	c.JSON(http.StatusOK, app.H{"rooms": rooms})
}

func (rc *RoomController) PCs(c *gin.Context) {
	pcs, err := rc.Repo.ListPCs(c.Request.Context(), c.Param("room"))
	if err != nil {
		fail(c, err, "could not load pcs")
		return
	}
	c.JSON(http.StatusOK, app.H{"room": c.Param("room"), "pcs": pcs})
}

func pcParam(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("pc"))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "pc must be a positive number"})
		return 0, false
	}
	return n, true
}

// Records returns the approved-report history of one PC.
func (rc *RoomController) Records(c *gin.Context) {
	n, ok := pcParam(c)
	if !ok {
		return
	}
	recs, err := rc.Repo.ListPCRecords(c.Request.Context(), c.Param("room"), n)
	if err != nil {
		fail(c, err, "could not load pc records")
		return
	}
	c.JSON(http.StatusOK, app.H{"records": recs})
}

// ReportLink is the pre-filled report form URL for one PC.
func ReportLink(webOrigin, room string, pc int) string {
	q := url.Values{}
	q.Set("room", room)
	q.Set("pc", strconv.Itoa(pc))
	return strings.TrimRight(webOrigin, "/") + "/report?" + q.Encode()
}

// QR renders a PNG label that opens the report form for the PC.
func (rc *RoomController) QR(c *gin.Context) {
	n, ok := pcParam(c)
	if !ok {
		return
	}
	room := c.Param("room")
	if _, err := rc.Repo.GetPC(c.Request.Context(), room, n); err != nil {
		fail(c, err, "could not load pc")
		return
	}
	png, err := qrcode.Encode(ReportLink(rc.Cfg.WebOrigin, room, n), qrcode.Medium, 256)
	if err != nil {
		fail(c, err, "could not render qr code")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%s-pc%d.png", room, n))
	c.Data(http.StatusOK, "image/png", png)
}

// Create handles POST /api/admin/rooms {"room": "517", "pcCount": 40}.
func (rc *RoomController) Create(c *gin.Context) {
	var in struct {
		Room    string `json:"room" binding:"required"`
		PCCount int    `json:"pcCount"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.PCCount < 0 || in.PCCount > 500 {
		c.JSON(http.StatusBadRequest, app.H{"error": "pcCount must be between 0 and 500"})
		return
	}
	created, err := rc.Repo.AddRoom(c.Request.Context(), in.Room, in.PCCount)
	if err != nil {
		fail(c, err, "could not add room")
		return
	}
	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	c.JSON(code, app.H{"room": strings.TrimSpace(in.Room), "created": created, "pcCount": in.PCCount})
}
