package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/middleware"
	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/internal/service"
)

// Services groups everything the routes dispatch to.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	CourseLines   *service.CourseLineService
	Courses       *service.CourseService
	Requests      *service.RequestService
	Enrollments   *service.EnrollmentService
	Evaluations   *service.EvaluationService
	Grades        *service.GradeService
	Notifications *service.NotificationService
	Admin         *service.AdminService
	Exports       *service.ExportService
	Metrics       *service.MetricsService
	Hub           *service.ChangeHub
	Readiness     middleware.ReadinessProbe
}

// RouterConfig carries the HTTP-level settings.
type RouterConfig struct {
	APIPrefix          string
	AllowedOrigins     []string
	EventsWriteTimeout time.Duration
}

// Register mounts every route on r.
func Register(r *gin.Engine, svc Services, cfg RouterConfig, logger *zap.Logger) {
	health := NewHealthHandler(svc.Readiness, svc.Metrics)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)

	var (
		auth          = NewAuthHandler(svc.Auth)
		users         = NewUserHandler(svc.Users)
		lines         = NewCourseLineHandler(svc.CourseLines)
		courses       = NewCourseHandler(svc.Courses, svc.Enrollments, svc.Exports)
		requests      = NewRequestHandler(svc.Requests)
		enrollments   = NewEnrollmentHandler(svc.Enrollments)
		evaluations   = NewEvaluationHandler(svc.Evaluations)
		grades        = NewGradeHandler(svc.Grades)
		notifications = NewNotificationHandler(svc.Notifications)
		admin         = NewAdminHandler(svc.Admin)
		events        = NewEventsHandler(svc.Hub, cfg.AllowedOrigins, cfg.EventsWriteTimeout, logger)
	)

	const (
		student     = models.RoleStudent
		professor   = models.RoleProfessor
		coordinator = models.RoleCoordinator
	)
	staff := []models.UserRole{professor, coordinator}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.RequireReady(svc.Readiness))
	api.POST("/auth/login", auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(svc.Auth))

	secured.GET("/events", events.Stream)

	secured.GET("/users/professors", users.ListProfessors)
	secured.GET("/users/:id", middleware.RequireSelfOrRoles("id", staff...), users.Get)
	secured.GET("/users/:id/notifications", middleware.RequireSelfOrRoles("id", coordinator), notifications.ListForUser)
	secured.POST("/notifications", middleware.RequireRoles(staff...), notifications.Create)
	secured.POST("/notifications/:id/read", notifications.MarkRead)

	secured.GET("/course-lines", lines.List)
	secured.GET("/course-lines/:id", lines.Get)
	secured.POST("/course-lines", middleware.RequireRoles(coordinator), lines.Create)
	secured.PATCH("/course-lines/:id", middleware.RequireRoles(coordinator), lines.Update)
	secured.DELETE("/course-lines/:id", middleware.RequireRoles(coordinator), lines.Deactivate)

	secured.POST("/courses", middleware.RequireRoles(coordinator), courses.Create)
	secured.GET("/courses/:id", courses.Get)
	secured.GET("/courses/:id/students", middleware.RequireRoles(staff...), courses.Students)
	secured.GET("/courses/:id/roster", middleware.RequireRoles(staff...), courses.Roster)
	secured.GET("/courses/:id/evaluations", evaluations.ListForCourse)
	secured.GET("/professors/:id/courses", middleware.RequireSelfOrRoles("id", coordinator), courses.ListForProfessor)

	secured.POST("/requests", middleware.RequireRoles(student, coordinator), requests.Create)
	secured.GET("/requests", middleware.RequireRoles(coordinator), requests.ListAll)
	secured.POST("/requests/:id/approve", middleware.RequireRoles(coordinator), requests.Approve)
	secured.POST("/requests/:id/reject", middleware.RequireRoles(coordinator), requests.Reject)
	secured.POST("/requests/:id/cancel", middleware.RequireRoles(student, coordinator), requests.Cancel)
	secured.GET("/students/:id/requests", middleware.RequireSelfOrRoles("id", coordinator), requests.ListForStudent)

	secured.POST("/enrollments", middleware.RequireRoles(coordinator), enrollments.Create)
	secured.GET("/students/:id/enrollments", middleware.RequireSelfOrRoles("id", staff...), enrollments.ListForStudent)

	secured.POST("/evaluations", middleware.RequireRoles(staff...), evaluations.Create)
	secured.PATCH("/evaluations/:id", middleware.RequireRoles(staff...), evaluations.Update)
	secured.DELETE("/evaluations/:id", middleware.RequireRoles(staff...), evaluations.Delete)

	secured.POST("/grades", middleware.RequireRoles(staff...), grades.Record)
	secured.GET("/students/:id/courses/:courseId/grades", middleware.RequireSelfOrRoles("id", staff...), grades.ListForStudentCourse)
	secured.GET("/students/:id/courses/:courseId/final-grade", middleware.RequireSelfOrRoles("id", staff...), grades.FinalGrade)

	secured.POST("/admin/reset", middleware.RequireRoles(coordinator), admin.Reset)
	secured.GET("/admin/metrics", middleware.RequireRoles(coordinator), health.Summary)
}
