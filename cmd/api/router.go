package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blog-backend/internal/shared/middleware"
	"blog-backend/pkg/container"
)

// maxMultipartMemory - ảnh tối đa 5MB + form fields
const maxMultipartMemory = 8 << 20

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory
	router.RedirectTrailingSlash = true

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		c.HTTPMetrics.Handler(),
		middleware.OptionalAuth(c.UserService),
	)

	// Ops
	router.GET("/health", healthCheckHandler(c))
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{})))

	setupPostRoutes(router, c)
	setupAuthRoutes(router, c)
	setupAdminRoutes(router, c)

	return router
}

// ========================================
// POSTS
// ========================================

func setupPostRoutes(router *gin.Engine, c *container.Container) {
	h := c.PostHandler

	router.GET("/", h.Index)
	router.GET("/group/:slug/", h.GroupPosts)
	router.GET("/profile/:username/", h.Profile)
	router.GET("/posts/:post_id/", h.Detail)

	auth := router.Group("", middleware.RequireLogin())
	{
		auth.GET("/create/", h.CreateForm)
		auth.POST("/create/", h.Create)
		auth.GET("/posts/:post_id/edit/", h.EditForm)
		auth.POST("/posts/:post_id/edit/", h.Edit)
	}
}

// ========================================
// AUTH
// ========================================

func setupAuthRoutes(router *gin.Engine, c *container.Container) {
	h := c.UserHandler

	auth := router.Group("/auth")
	{
		auth.POST("/signup/", h.Signup)
		auth.POST("/login/", h.Login)
		auth.POST("/logout/", h.Logout)
	}
}

// ========================================
// ADMIN
// ========================================

func setupAdminRoutes(router *gin.Engine, c *container.Container) {
	admin := router.Group("/admin", middleware.AdminOnly())
	{
		groups := admin.Group("/groups")
		groups.GET("/", c.GroupHandler.List)
		groups.POST("/", c.GroupHandler.Create)
		groups.PUT("/:slug/", c.GroupHandler.Update)
		groups.DELETE("/:slug/", c.GroupHandler.Delete)

		admin.DELETE("/users/:username/", c.UserHandler.Delete)
		admin.GET("/posts/export", c.PostHandler.Export)
	}
}

func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checkCtx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
		defer cancel()

		status := c.HealthCheck(checkCtx)
		code := http.StatusOK
		for _, v := range status {
			if strings.HasPrefix(v, "unhealthy") {
				code = http.StatusServiceUnavailable
			}
		}

		ctx.JSON(code, gin.H{
			"status":  http.StatusText(code),
			"version": c.Config.App.Version,
			"checks":  status,
		})
	}
}
