package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"comlab_tool/app"
	"comlab_tool/controllers"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	s := controllers.GetSrv(a)
	users := controllers.GetUserController(s)
	invites := controllers.GetInviteController(s)
	catalog := controllers.NewCatalogController(s)
	reqs := controllers.NewRequestController(s)
	rooms := controllers.NewRoomController(s)
	forms := controllers.NewFormTextController(s)
	st := controllers.NewStatsController(s)
	lv := controllers.NewLiveController(s)

	authMW := app.AuthRequired(a)
	adminMW := app.AdminOnly()
	seenMW := app.TouchLastSeen(a, 5*time.Minute)
	throttle := a.Limiter.Throttle()

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })
	r.Static("/uploads", a.Config.UploadDir)

	wa := r.Group("/webauthn")
	{
		wa.POST("/register/begin", s.BeginRegistration)
		wa.POST("/register/finish", s.FinishRegistration)
		wa.POST("/login/begin", s.BeginLogin)
		wa.POST("/login/finish", s.FinishLogin)
		wa.POST("/logout", s.Logout)
		wa.GET("/whoami", authMW, seenMW, s.WhoAmI)
	}

	api := r.Group("/api", authMW, seenMW)
	{
		api.POST("/credentials/add/begin", s.BeginAddCredential)
		api.POST("/credentials/add/finish", s.FinishAddCredential)

		api.GET("/me", users.Me)
		api.PUT("/me/profile", users.UpdateProfile)

		api.GET("/catalog/:kind", catalog.List)
		api.GET("/forms/:form", forms.Get)

		api.GET("/rooms", rooms.List)
		api.GET("/rooms/:room/pcs", rooms.PCs)
		api.GET("/rooms/:room/pcs/:pc/records", rooms.Records)
		api.GET("/rooms/:room/pcs/:pc/qr.png", rooms.QR)

		api.POST("/borrows", throttle, reqs.CreateBorrow)
		api.GET("/borrows", reqs.MyBorrows)
		api.GET("/borrows/:id", reqs.GetBorrow)
		api.POST("/reports", throttle, reqs.CreateReport)
		api.GET("/reports", reqs.MyReports)
		api.GET("/reports/:id", reqs.GetReport)

		api.GET("/stats", st.Dashboard)
		api.GET("/stats/range", st.GetRange)
		api.PUT("/stats/range", st.SaveRange)
		api.DELETE("/stats/range", st.ClearRange)

		api.GET("/live/token", lv.Token)
		api.GET("/live/:topic", lv.Subscribe)
	}

	admin := api.Group("/admin", adminMW)
	{
		admin.POST("/invites", invites.CreateInvite)
		admin.GET("/invites", invites.ListInvites)
		admin.DELETE("/invites/:id", invites.DeleteInvite)

		admin.GET("/users", users.ListUsers)
		admin.GET("/users/:id", users.GetUser)
		admin.DELETE("/users/:id", users.DeleteUser)
		admin.PUT("/users/:id/admin", users.SetAdmin)

		admin.POST("/catalog/:kind", catalog.Create)
		admin.PUT("/catalog/:kind/:id", catalog.Update)
		admin.DELETE("/catalog/:kind/:id", catalog.Delete)

		admin.GET("/borrows", reqs.AllBorrows)
		admin.PATCH("/borrows/:id/status", reqs.SetBorrowStatus)
		admin.GET("/borrows/:id/history", reqs.BorrowHistory)
		admin.GET("/reports", reqs.AllReports)
		admin.PATCH("/reports/:id/status", reqs.SetReportStatus)
		admin.GET("/reports/:id/history", reqs.ReportHistory)

		admin.POST("/rooms", rooms.Create)
		admin.PUT("/forms/:form", forms.Save)

		admin.GET("/stats/export.pdf", st.Export)
	}
}
