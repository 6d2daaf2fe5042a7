package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/bytezen/bytezen-api/internal/middleware"
	"github.com/bytezen/bytezen-api/internal/models"
	"github.com/bytezen/bytezen-api/internal/service"
)

// RouterConfig controls route registration.
type RouterConfig struct {
	Prefix          string
	ByteLogsEnabled bool
	EventsEnabled   bool
	CodeExecEnabled bool
}

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth        *AuthHandler
	Student     *StudentHandler
	Course      *CourseHandler
	Enrollment  *EnrollmentHandler
	Attendance  *AttendanceHandler
	Content     *ContentHandler
	Leaderboard *LeaderboardHandler
	Event       *EventHandler
	Partner     *PartnerHandler
	Council     *CouncilHandler
	ByteLog     *ByteLogHandler
	CodeExec    *CodeExecHandler
	Metrics     *MetricsHandler

	AuthService *service.AuthService
}

// RegisterRoutes mounts the API route tree under cfg.Prefix.
//
// Catalog reads (courses, events, partners, council, bytelogs) are public
// with optional authentication so admins see drafts through the same
// endpoints. Everything that mutates state or exposes per-student data
// requires a JWT, with write access limited to ADMIN and SUPERADMIN.
func RegisterRoutes(r *gin.Engine, cfg RouterConfig, h Handlers) {
	if cfg.Prefix == "" {
		cfg.Prefix = "/api/v1"
	}

	authn := middleware.JWT(h.AuthService)
	optional := middleware.OptionalJWT(h.AuthService)
	admin := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)

	api := r.Group(cfg.Prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", authn, h.Auth.Logout)
		auth.POST("/change-password", authn, h.Auth.ChangePassword)
		auth.GET("/me", authn, h.Auth.Me)
	}

	courses := api.Group("/courses")
	{
		courses.GET("", optional, h.Course.List)
		courses.GET("/slug/:slug", optional, h.Course.GetBySlug)
		courses.GET("/:id", optional, h.Course.Get)
		courses.POST("", authn, admin, h.Course.Create)
		courses.PUT("/:id", authn, admin, h.Course.Update)
		courses.DELETE("/:id", authn, admin, h.Course.Delete)

		courses.GET("/:id/content", authn, h.Content.ListByCourse)

		courses.GET("/:id/leaderboard", authn, h.Leaderboard.Get)
		courses.POST("/:id/leaderboard/refresh", authn, admin, h.Leaderboard.Refresh)
		courses.GET("/:id/leaderboard/export", authn, admin, h.Leaderboard.Export)
	}

	content := api.Group("/content", authn)
	{
		content.GET("/:id", h.Content.Get)
		content.POST("", admin, h.Content.Create)
		content.PUT("/:id", admin, h.Content.Update)
		content.DELETE("/:id", admin, h.Content.Delete)
		content.POST("/:id/complete", h.Content.Complete)
	}

	students := api.Group("/students", authn)
	{
		students.GET("", admin, h.Student.List)
		students.GET("/:id", middleware.RBAC(string(models.RoleSuperAdmin), string(models.RoleAdmin), "SELF"), h.Student.Get)
		students.POST("", admin, h.Student.Create)
		students.PUT("/:id", admin, h.Student.Update)
		students.DELETE("/:id", admin, h.Student.Deactivate)
	}

	enrollments := api.Group("/enrollments", authn, admin)
	{
		enrollments.GET("", h.Enrollment.List)
		enrollments.POST("", h.Enrollment.Enroll)
		enrollments.POST("/:id/complete", h.Enrollment.Complete)
		enrollments.DELETE("/:id", h.Enrollment.Drop)
	}

	attendance := api.Group("/attendance", authn, admin)
	{
		attendance.GET("", h.Attendance.List)
		attendance.POST("/sessions", h.Attendance.CreateSession)
		attendance.GET("/sessions", h.Attendance.ListSessions)
		attendance.POST("/sessions/:id/mark", h.Attendance.Mark)
		attendance.POST("/sessions/:id/bulk", h.Attendance.BulkMark)
	}

	if cfg.EventsEnabled {
		events := api.Group("/events")
		{
			events.GET("", optional, h.Event.List)
			events.GET("/:id", optional, h.Event.Get)
			events.POST("", authn, admin, h.Event.Create)
			events.PUT("/:id", authn, admin, h.Event.Update)
			events.DELETE("/:id", authn, admin, h.Event.Delete)
		}
	}

	partners := api.Group("/partners")
	{
		partners.GET("", optional, h.Partner.List)
		partners.POST("", authn, admin, h.Partner.Create)
		partners.PUT("/:id", authn, admin, h.Partner.Update)
		partners.DELETE("/:id", authn, admin, h.Partner.Delete)
	}

	council := api.Group("/council")
	{
		council.GET("", optional, h.Council.List)
		council.POST("", authn, admin, h.Council.Create)
		council.PUT("/:id", authn, admin, h.Council.Update)
		council.DELETE("/:id", authn, admin, h.Council.Delete)
	}

	if cfg.ByteLogsEnabled {
		bytelogs := api.Group("/bytelogs")
		{
			bytelogs.GET("", optional, h.ByteLog.List)
			bytelogs.GET("/slug/:slug", optional, h.ByteLog.GetBySlug)
			// Cover downloads carry their own signed token, no session needed.
			bytelogs.GET("/covers/:token", h.ByteLog.DownloadCover)
			bytelogs.GET("/:id", optional, h.ByteLog.Get)
			bytelogs.POST("", authn, admin, h.ByteLog.Create)
			bytelogs.PUT("/:id", authn, admin, h.ByteLog.Update)
			bytelogs.DELETE("/:id", authn, admin, h.ByteLog.Delete)
			bytelogs.POST("/:id/cover", authn, admin, h.ByteLog.UploadCover)
		}
	}

	if cfg.CodeExecEnabled {
		api.POST("/code/execute", authn, h.CodeExec.Execute)
	}

	api.GET("/metrics", authn, admin, h.Metrics.Snapshot)
}
