package routes

import (
	"net/http"

	"gatepass/appointments"
	"gatepass/audit"
	"gatepass/auth"
	"gatepass/board"
	"gatepass/middleware"
	"gatepass/models"
	"gatepass/ratelim"
	"gatepass/suggestions"
	"gatepass/users"
	"gatepass/visitors"

	"github.com/julienschmidt/httprouter"
)

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/static/idpic/*filepath", http.Dir("static/idpic"))
}

func AddAuthRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/office-auth/login", rl.Limit(auth.OfficeLogin))
	router.POST("/api/office-auth/bootstrap-admin", rl.Limit(auth.BootstrapAdmin))
	router.POST("/api/visitor-auth/register", rl.Limit(auth.RegisterVisitorAccount))
	router.POST("/api/visitor-auth/login", rl.Limit(auth.LoginVisitorAccount))
	router.GET("/api/auth/session", middleware.Authenticate(auth.ValidateSession))
	router.POST("/api/auth/logout", middleware.Authenticate(auth.Logout))
}

func AddVisitorRoutes(router *httprouter.Router, h *visitors.Handlers, rl *ratelim.RateLimiter) {
	router.GET("/api/visitors", middleware.Authenticate(h.GetVisitors))
	router.GET("/api/visitors/:id", middleware.Authenticate(h.GetVisitor))
	router.POST("/api/visitors", rl.Limit(h.RegisterVisitor))
	router.PUT("/api/visitors/:id/time-in", middleware.Authenticate(h.TimeIn))
	router.PUT("/api/visitors/:id/time-out", middleware.Authenticate(h.TimeOut))
	router.PUT("/api/visitors/:id/start-processing", middleware.Authenticate(h.StartProcessing))
	router.PUT("/api/visitors/:id/office-processed", middleware.Authenticate(h.MarkProcessed))
	router.PUT("/api/visitors/:id/decision", middleware.Authenticate(h.Decide))
	router.PATCH("/api/visitors/:id/feedback", rl.Limit(h.SetFeedback))
	router.DELETE("/api/visitors/:id", middleware.RequireRole(h.DeleteVisitor, models.RoleAdmin, models.RoleSuperAdmin))
	router.GET("/api/visitors/:id/pass", middleware.Authenticate(h.PrintPass))
	router.POST("/api/visitors/:id/idphoto", rl.Limit(h.UploadIDPhoto))
}

func AddAppointmentRoutes(router *httprouter.Router, h *appointments.Handlers, rl *ratelim.RateLimiter) {
	router.GET("/api/appointments", middleware.Authenticate(h.GetAppointments))
	router.GET("/api/appointments/contact/:contactNumber", middleware.OptionalAuth(h.GetByContact))
	router.POST("/api/appointments", rl.Limit(h.CreateAppointment))
	router.PUT("/api/appointments/:id/time-in", middleware.Authenticate(h.TimeIn))
	router.PUT("/api/appointments/:id/time-out", middleware.Authenticate(h.TimeOut))
	router.PUT("/api/appointments/:id/start-processing", middleware.Authenticate(h.StartProcessing))
	router.PUT("/api/appointments/:id/office-processed", middleware.Authenticate(h.MarkProcessed))
	router.PUT("/api/appointments/:id/decision", middleware.Authenticate(h.Decide))
	router.PATCH("/api/appointments/contact/:contactNumber/feedback", rl.Limit(h.SetFeedback))
}

func AddUserRoutes(router *httprouter.Router) {
	router.GET("/api/users", middleware.RequireRole(users.GetUsers, models.RoleAdmin, models.RoleSuperAdmin))
	router.POST("/api/users", middleware.RequireRole(users.CreateUser, models.RoleAdmin, models.RoleSuperAdmin))
	router.PUT("/api/users/:id", middleware.RequireRole(users.UpdateUser, models.RoleAdmin, models.RoleSuperAdmin))
	router.PUT("/api/users/:id/toggle-status", middleware.RequireRole(users.ToggleUserStatus, models.RoleAdmin, models.RoleSuperAdmin))
}

func AddAuditRoutes(router *httprouter.Router) {
	router.GET("/api/audit", middleware.Authenticate(audit.GetAuditTrail))
}

func AddSuggestionRoutes(router *httprouter.Router, rl *ratelim.RateLimiter) {
	router.POST("/api/suggestions", rl.Limit(suggestions.CreateSuggestion))
	router.GET("/api/suggestions", middleware.Authenticate(suggestions.GetSuggestions))
}

func AddBoardRoutes(router *httprouter.Router, hub *board.Hub) {
	router.GET("/ws/board/:office", board.ServeWS(hub))
}
