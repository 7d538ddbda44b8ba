package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/eduline/homework-api/internal/config"
	"github.com/eduline/homework-api/internal/handler"
	"github.com/eduline/homework-api/internal/middleware"
	"github.com/eduline/homework-api/internal/models"
	"github.com/eduline/homework-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	AuthHandler       *handler.AuthHandler
	GroupHandler      *handler.GroupHandler
	TaskHandler       *handler.TaskHandler
	HomeworkHandler   *handler.HomeworkHandler
	TheoryHandler     *handler.TheoryHandler
	StatisticsHandler *handler.StatisticsHandler
	StudentHandler    *handler.StudentHandler
	JWTMiddleware     fiber.Handler
	AuthRateLimit     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	teacherOnly := middleware.RequireRole(models.RoleTeacher)
	studentOnly := middleware.RequireRole(models.RoleStudent)

	if deps.AuthHandler != nil {
		auth := api.Group("/auth")
		if deps.AuthRateLimit != nil {
			auth.Use(deps.AuthRateLimit)
		}
		deps.AuthHandler.Register(auth)
		deps.AuthHandler.RegisterProtected(api.Group("", jwtMiddleware))
	}

	if deps.GroupHandler != nil {
		groups := api.Group("/groups", jwtMiddleware, teacherOnly)
		deps.GroupHandler.Register(groups)
	}

	if deps.TaskHandler != nil {
		tasks := api.Group("/tasks", jwtMiddleware, teacherOnly)
		deps.TaskHandler.Register(tasks)
	}

	// Teacher and student routes share the /homework prefix, so the role
	// guards attach per route rather than as group middleware.
	if deps.HomeworkHandler != nil {
		homework := api.Group("/homework", jwtMiddleware)
		deps.HomeworkHandler.RegisterTeacher(homework, teacherOnly)
		deps.HomeworkHandler.RegisterStudent(homework, studentOnly)
	}

	if deps.TheoryHandler != nil {
		theory := api.Group("/theory", jwtMiddleware)
		deps.TheoryHandler.RegisterList(theory)
		deps.TheoryHandler.RegisterManage(theory, teacherOnly)
	}

	if deps.StatisticsHandler != nil {
		statistics := api.Group("/statistics", jwtMiddleware, teacherOnly)
		deps.StatisticsHandler.Register(statistics)
	}

	if deps.StudentHandler != nil {
		student := api.Group("/student", jwtMiddleware, studentOnly)
		deps.StudentHandler.Register(student)
	}
}
