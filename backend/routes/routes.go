package routes

import (
	"log"

	"lms/backend/config"
	"lms/backend/controllers"
	"lms/backend/jobs"
	"lms/backend/mail"
	"lms/backend/middleware"
	"lms/backend/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps holds everything the handlers need.
type Deps struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Logger   *log.Logger
	Tokens   *services.TokenStore
	Payments *services.PaymentService
	Queue    *jobs.Queue
	Mailer   mail.Mailer
}

func SetupRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	// Auth routes
	authController := controllers.NewAuthController(deps.DB, deps.Cfg, deps.Tokens, deps.Logger)
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Post("/token/refresh", authController.Refresh)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(deps.DB, deps.Cfg)

	// User routes
	userController := controllers.NewUserController(deps.DB, deps.Cfg, deps.Logger)
	users := api.Group("/users", authMiddleware)
	users.Get("/", userController.ListUsers)
	users.Get("/:id", userController.GetUser)
	users.Patch("/:id", userController.UpdateUser)
	users.Delete("/:id", userController.DeleteUser)

	// Courses routes
	coursesController := controllers.NewCoursesController(deps.DB, deps.Cfg, deps.Queue, deps.Mailer, deps.Logger)
	courses := api.Group("/courses", authMiddleware)
	courses.Get("/", coursesController.ListCourses)
	courses.Post("/", coursesController.CreateCourse)
	courses.Get("/:id", coursesController.GetCourse)
	courses.Patch("/:id", coursesController.UpdateCourse)
	courses.Delete("/:id", coursesController.DeleteCourse)

	// Lessons routes
	lessonsController := controllers.NewLessonsController(deps.DB, deps.Cfg, deps.Logger)
	lessons := api.Group("/lessons", authMiddleware)
	lessons.Get("/", lessonsController.ListLessons)
	lessons.Post("/", lessonsController.CreateLesson)
	lessons.Get("/:id", lessonsController.GetLesson)
	lessons.Patch("/:id", lessonsController.UpdateLesson)
	lessons.Delete("/:id", lessonsController.DeleteLesson)

	// Subscription routes
	subscriptionController := controllers.NewSubscriptionController(deps.DB, deps.Cfg, deps.Logger)
	subscription := api.Group("/subscription", authMiddleware)
	subscription.Get("/", subscriptionController.ListSubscriptions)
	subscription.Post("/", subscriptionController.ToggleSubscription)

	// Payment routes
	paymentController := controllers.NewPaymentController(deps.DB, deps.Cfg, deps.Payments, deps.Logger)
	payment := api.Group("/payment", authMiddleware)
	payment.Get("/", paymentController.ListPayments)
	payment.Post("/", paymentController.CreatePayment)
}
