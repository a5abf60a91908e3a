package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/cws/attendance-system/docs" // swagger spec, generated by swag

	"github.com/cws/attendance-system/internal/api/handler"
	"github.com/cws/attendance-system/internal/api/middleware"
	"github.com/cws/attendance-system/internal/core/domain"
	"github.com/cws/attendance-system/internal/core/ports"
)

// Deps carries everything the router needs to register routes.
type Deps struct {
	Mongo       *mongo.Database
	Redis       *redis.Client
	JWTSecret   string
	Auth        ports.AuthService
	Users       ports.UserService
	Attendance  ports.AttendanceService
	Recognition ports.RecognitionService
	Log         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("attendance"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	attendanceHandler := handler.NewAttendanceHandler(deps.Attendance)
	recognitionHandler := handler.NewRecognitionHandler(deps.Recognition)

	authRequired := middleware.Auth(deps.JWTSecret)
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleStaff)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Worker callback (unauthenticated: the spawned worker holds no token) ---
	e.POST("/mark", recognitionHandler.Mark)

	// --- Authenticated API ---
	v1 := e.Group("/v1", authRequired)

	v1.POST("/recognition/start", recognitionHandler.Start, staffOnly)
	v1.POST("/recognition/stop", recognitionHandler.Stop, staffOnly)
	v1.GET("/recognition/status", recognitionHandler.Status, staffOnly)

	v1.GET("/attendance/today", attendanceHandler.Today)
	v1.GET("/attendance/history", attendanceHandler.History)
	v1.GET("/attendance/date/:date", attendanceHandler.ByDate, staffOnly)

	v1.GET("/users", userHandler.List, adminOnly)
	v1.PUT("/users/:email", userHandler.Update, adminOnly)
	v1.PUT("/users/:email/face", userHandler.UpdateFace, staffOnly)

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
