package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"

	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/randeeprajputr/webinar-backend/internal/config"
	"github.com/randeeprajputr/webinar-backend/internal/handler"
	"github.com/randeeprajputr/webinar-backend/internal/middleware"
	"github.com/randeeprajputr/webinar-backend/internal/repository"
	"github.com/randeeprajputr/webinar-backend/internal/service"
	"github.com/randeeprajputr/webinar-backend/pkg/database"
	"github.com/randeeprajputr/webinar-backend/pkg/email"
	"github.com/randeeprajputr/webinar-backend/pkg/logger"
	"github.com/randeeprajputr/webinar-backend/pkg/payment"
	"github.com/randeeprajputr/webinar-backend/pkg/utils"
	"go.uber.org/zap"
)

func main() {
	// Load .env if present; in production everything comes from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := logger.Init(cfg.Environment); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()
	zlog := logger.Get()

	// Database (runs migrations and seeds settings)
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	webinarRepo := repository.NewWebinarRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	couponRepo := repository.NewCouponRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)

	// Email service
	emailService := email.NewEmailService(cfg.Mail.APIKey, cfg.Mail.FromAddress, cfg.Mail.FromName, zlog)

	// Stripe service
	stripeService := payment.NewStripeService(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.FrontendURL)

	// Services
	authService := service.NewAuthService(userRepo)
	catalogService := service.NewCatalogService(webinarRepo, serviceRepo)
	couponService := service.NewCouponService(couponRepo)
	paymentService := service.NewPaymentService(
		registrationRepo,
		purchaseRepo,
		webinarRepo,
		serviceRepo,
		userRepo,
		settingsRepo,
		couponService,
		stripeService,
		emailService,
		zlog,
	)

	validator := utils.NewValidator()

	// Handlers
	authHandler := handler.NewAuthHandler(authService, validator)
	webinarHandler := handler.NewWebinarHandler(catalogService, paymentService)
	paymentHandler := handler.NewPaymentHandler(paymentService, stripeService, validator)
	couponHandler := handler.NewCouponHandler(couponService, validator)

	// Router
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(fiberlogger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	api := app.Group("/api")

	// Public routes
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	api.Get("/webinars", webinarHandler.GetWebinars)
	api.Get("/webinars/:id", webinarHandler.GetWebinar)
	api.Get("/services", webinarHandler.GetServices)

	// Stripe webhook (public)
	api.Post("/payments/webhook", paymentHandler.HandleStripeWebhook)

	// Protected routes
	api.Use(middleware.AuthMiddleware())
	{
		api.Post("/webinars/:id/register", webinarHandler.RegisterForWebinar)
		api.Post("/webinars/:id/notify", webinarHandler.NotifyAttendees)

		payments := api.Group("/payments")
		payments.Post("/checkout", paymentHandler.CreateServiceCheckout)
		payments.Post("/complete", paymentHandler.CompletePayment)

		api.Get("/purchases/history", paymentHandler.GetPurchaseHistory)

		invoices := api.Group("/invoices")
		invoices.Get("/registration/:registrationId", paymentHandler.GetRegistrationInvoice)
		invoices.Get("/purchase/:purchaseId", paymentHandler.GetPurchaseInvoice)

		coupons := api.Group("/coupons")
		coupons.Post("/validate", couponHandler.ValidateCoupon)
	}

	zlog.Info("starting server", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))
	log.Fatal(app.Listen(":" + cfg.Port))
}
