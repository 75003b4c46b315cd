package main

import (
	"github.com/Nina932/nyx/internal/auth"
	"github.com/Nina932/nyx/internal/middleware"
	"github.com/Nina932/nyx/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, a *app) {
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS(a.cfg.Server.FrontendURL))

	r.GET("/health", a.healthHandler.Check)

	authRequired := middleware.AuthRequired(a.infra.verifier)
	audit := middleware.AuditLog(a.systemLogs)
	writers := middleware.RequireRoles(auth.RoleAdmin, auth.RoleManager)

	api := r.Group("/api", a.apiLimiter.Middleware())
	{
		api.GET("/health", a.healthHandler.Check)

		// Auth (public except /me)
		authGroup := api.Group("/auth", audit)
		{
			authGroup.POST("/register", a.authHandler.Register)
			authGroup.POST("/login", a.authHandler.Login)
			authGroup.GET("/config", a.authHandler.Config)
			authGroup.GET("/me", authRequired, a.authHandler.Me)
		}

		protected := api.Group("", authRequired)

		// AI proxy
		ai := protected.Group("/ai")
		{
			limited := ai.Group("", middleware.AIRateLimit(a.aiLimiter))
			limited.POST("/chat", a.aiHandler.Chat)
			limited.POST("/career-path", a.aiHandler.CareerPath)
			limited.POST("/skill-gap", a.aiHandler.SkillGap)
			limited.POST("/analyze-performance", a.aiHandler.AnalyzePerformance)
			limited.POST("/analyze-document", a.aiHandler.AnalyzeDocument)
			limited.POST("/policy-qa", a.aiHandler.PolicyQA)
			limited.POST("/simulation", a.aiHandler.Simulation)

			ai.GET("/usage", a.aiHandler.Usage)
			ai.GET("/usage/stats", middleware.AdminRequired(), a.aiHandler.UsageStats)
		}

		resources := protected.Group("", audit)
		{
			// Employees (write: admin, manager)
			resources.GET("/employees", a.employeeHandler.List)
			resources.GET("/employees/:id", a.employeeHandler.GetByID)
			resources.POST("/employees", writers, a.employeeHandler.Create)
			resources.PUT("/employees/:id", writers, a.employeeHandler.Update)
			resources.DELETE("/employees/:id", writers, a.employeeHandler.Delete)

			// Roles (write: admin, manager)
			resources.GET("/roles", a.roleHandler.List)
			resources.GET("/roles/:id", a.roleHandler.GetByID)
			resources.POST("/roles", writers, a.roleHandler.Create)
			resources.PUT("/roles/:id", writers, a.roleHandler.Update)
			resources.DELETE("/roles/:id", writers, a.roleHandler.Delete)

			// Policies (write: admin)
			resources.GET("/policies", a.policyHandler.List)
			resources.GET("/policies/:id", a.policyHandler.GetByID)
			resources.POST("/policies", middleware.AdminRequired(), a.policyHandler.Create)
			resources.PUT("/policies/:id", middleware.AdminRequired(), a.policyHandler.Update)
			resources.DELETE("/policies/:id", middleware.AdminRequired(), a.policyHandler.Delete)
		}

		admin := protected.Group("", middleware.AdminRequired(), audit)
		{
			admin.GET("/system-logs", a.systemLogHandler.List)
			admin.POST("/system-logs/cleanup", a.systemLogHandler.Cleanup)
		}
	}
}
