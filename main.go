package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"fluxmall/internal/handlers"
	"fluxmall/internal/middleware"
	"fluxmall/internal/models"
	"fluxmall/internal/repositories"
	"fluxmall/internal/services"
	"fluxmall/pkg/rabbitmq"

	"github.com/spf13/viper"
)

func main() {
	// --- Configuration ---
	// Set up Viper to read configuration from environment variables
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "")
	viper.SetDefault("JWT_SECRET", "dev_jwt_secret")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	databaseDSN := viper.GetString("DATABASE_DSN")
	jwtSecret := viper.GetString("JWT_SECRET")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// --- Initialize RabbitMQ Client ---
	// Optional: without a broker the checkout flow still completes, events
	// are just skipped.
	var mqClient *rabbitmq.Client
	if rabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close() // Ensure the connection is closed on exit
	} else {
		log.Println("RABBITMQ_URL not set, order events disabled")
	}

	// --- Initialize Repositories ---
	// With DATABASE_DSN the PostgreSQL repositories serve; without it the
	// in-memory ones do, seeded with demo products.
	var (
		productRepo   repositories.ProductRepository
		cartRepo      repositories.CartRepository
		inventoryRepo repositories.InventoryRepository
		orderRepo     repositories.OrderRepository
		memberRepo    repositories.MemberRepository
	)
	if databaseDSN != "" {
		db, err := gorm.Open(postgres.Open(databaseDSN), &gorm.Config{})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		err = db.AutoMigrate(
			&models.Member{},
			&models.Product{},
			&models.Cart{},
			&models.CartItem{},
			&models.Order{},
			&models.OrderItem{},
		)
		if err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
		cartRepo = repositories.NewGORMCartRepository(db)
		inventoryRepo = repositories.NewGORMInventoryRepository(db)
		orderRepo = repositories.NewGORMOrderRepository(db)
		memberRepo = repositories.NewGORMMemberRepository(db)
	} else {
		log.Println("DATABASE_DSN not set, using in-memory repositories")
		inMemProducts := repositories.NewMockProductRepository()
		productRepo = inMemProducts
		cartRepo = repositories.NewMockCartRepository()
		inventoryRepo = repositories.NewMockInventoryRepository(inMemProducts)
		orderRepo = repositories.NewMockOrderRepository()
		memberRepo = repositories.NewMockMemberRepository()
		seedProducts(productRepo)
	}

	// --- Initialize Services ---
	authService := services.NewAuthService(memberRepo, jwtSecret)
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	inventoryService := services.NewInventoryService(inventoryRepo)
	orderService := services.NewOrderService(orderRepo)
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	checkoutService := services.NewCheckoutService(cartService, inventoryService, orderService, productRepo, publisher)

	// --- Initialize Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(checkoutService, orderService)

	// --- Initialize Fiber App ---
	app := fiber.New()

	// --- Middleware ---
	app.Use(logger.New()) // Request logger

	// --- API Routes ---
	// Group routes under /api/v1
	apiV1 := app.Group("/api/v1")

	// Public routes: authentication and catalog browsing
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	// Protected routes: everything touching a member's cart or orders
	protectedRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	cartHandler.RegisterRoutes(protectedRoutes)
	orderHandler.RegisterRoutes(protectedRoutes)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start RabbitMQ Consumer in a Goroutine ---
	// Listens for order events published by the checkout flow.
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			messageHandler := func(msg amqp.Delivery) error {
				log.Printf("Received Order Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
				// Downstream work (confirmation mail, fulfilment) hooks in here.
				return nil // Return nil to acknowledge
			}
			if consumerErr := mqClient.ConsumeOrderEvents(messageHandler); consumerErr != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	// Shutdown Fiber app
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	// Close RabbitMQ connection is handled by defer in main
	log.Println("Server gracefully stopped")
}

// seedProducts populates the in-memory product repository with demo data so
// the server is usable without a database.
func seedProducts(repo repositories.ProductRepository) {
	products := []models.Product{
		{ID: "prod-1", Name: "Laptop", Description: "High performance laptop", Price: 1200000, Stock: 10, Status: models.ProductOnSale},
		{ID: "prod-2", Name: "Keyboard", Description: "Mechanical keyboard", Price: 75000, Stock: 25, Status: models.ProductOnSale},
		{ID: "prod-3", Name: "Mouse", Description: "Ergonomic wireless mouse", Price: 25000, Stock: 50, Status: models.ProductOnSale},
	}

	for i := range products {
		if err := repo.Create(&products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
		} else {
			log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
		}
	}
}
