package main

import (
	"log"

	"github.com/nxough-jxhn/daingGraderWeb/config"
	"github.com/nxough-jxhn/daingGraderWeb/handlers"
	"github.com/nxough-jxhn/daingGraderWeb/internal/audit"
	"github.com/nxough-jxhn/daingGraderWeb/internal/checkout"
	"github.com/nxough-jxhn/daingGraderWeb/internal/mailer"
	"github.com/nxough-jxhn/daingGraderWeb/internal/orderstate"
	"github.com/nxough-jxhn/daingGraderWeb/internal/payments"
	"github.com/nxough-jxhn/daingGraderWeb/internal/ws"
	"github.com/nxough-jxhn/daingGraderWeb/middleware"
	"github.com/nxough-jxhn/daingGraderWeb/models"
	"github.com/nxough-jxhn/daingGraderWeb/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Shared infrastructure.
	hub := ws.NewHub()
	go hub.Run()

	mail := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword, logger)
	gateway := payments.NewClient(cfg.PayMongoBaseURL, cfg.PayMongoSecretKey, logger)
	auditor := audit.NewLogger(db, logger)

	// Stores and domain engines.
	products := store.NewProducts(db)
	orders := store.NewOrders(db)
	carts := store.NewCarts(db)
	vouchers := store.NewVouchers(db)
	users := store.NewUsers(db)

	engine := &checkout.Engine{
		Products: products,
		Orders:   orders,
		Carts:    carts,
		Vouchers: vouchers,
		Gateway:  gateway,
		Mail:     mail,
		Events:   hub,
		Audit:    auditor,
		Log:      logger,
	}
	machine := &orderstate.Machine{
		Store: struct {
			*store.Orders
			*store.Products
		}{orders, products},
		Users:  users,
		Mail:   mail,
		Events: hub,
		Audit:  auditor,
		Log:    logger,
	}

	// Handlers.
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	productHandler := handlers.NewProductHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	orderHandler := handlers.NewOrderHandler(db, engine, machine, cfg.PaymentRedirect)
	voucherHandler := handlers.NewVoucherHandler(db)
	wishlistHandler := handlers.NewWishlistHandler(db)
	adminHandler := handlers.NewAdminHandler(db, machine, mail, auditor, logger)
	notificationHandler := handlers.NewNotificationHandler(hub)

	app := fiber.New(fiber.Config{
		AppName:      "DaingGrader Backend",
		ServerHeader: "DaingGrader Server/1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}
			return c.Status(code).JSON(models.ErrorResponse(msg))
		},
	})

	middleware.SetupMiddleware(app, cfg)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(models.SuccessResponse("API is healthy", nil, nil))
	})

	authed := middleware.Auth(db, cfg.JWTSecret, logger)
	sellerOnly := middleware.RequireRole(models.RoleSeller, models.RoleAdmin)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	api := app.Group("/api")

	// Public auth + catalog.
	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	catalog := api.Group("/catalog")
	catalog.Get("/categories", categoryHandler.GetCatalogCategories)
	catalog.Get("/products", productHandler.GetCatalogProducts)
	catalog.Get("/products/:id", productHandler.GetCatalogProduct)

	// Authenticated profile.
	me := api.Group("/me", authed)
	me.Get("/", userHandler.Me)
	me.Patch("/", userHandler.UpdateProfile)

	// Cart and checkout.
	cart := api.Group("/cart", authed)
	cart.Get("/", cartHandler.GetCart)
	cart.Post("/items", cartHandler.AddToCart)
	cart.Patch("/items/:id", cartHandler.UpdateCartItem)
	cart.Delete("/items/:id", cartHandler.RemoveCartItem)

	api.Post("/checkout", authed, orderHandler.Checkout)
	api.Post("/vouchers/validate", authed, voucherHandler.ValidateVoucher)

	// Buyer orders.
	ordersGroup := api.Group("/orders", authed)
	ordersGroup.Get("/", orderHandler.GetOrders)
	ordersGroup.Get("/:id", orderHandler.GetOrder)
	ordersGroup.Post("/:id/cancel", orderHandler.CancelOrder)
	ordersGroup.Post("/:id/delivered", orderHandler.MarkDelivered)

	// Wishlist.
	wishlist := api.Group("/wishlist", authed)
	wishlist.Get("/", wishlistHandler.GetWishlist)
	wishlist.Get("/:productId", wishlistHandler.CheckWishlist)
	wishlist.Post("/:productId", wishlistHandler.ToggleWishlist)

	// Seller surface.
	seller := api.Group("/seller", authed, sellerOnly)
	seller.Get("/categories", categoryHandler.GetCategories)
	seller.Post("/categories", categoryHandler.CreateCategory)
	seller.Patch("/categories/:id", categoryHandler.UpdateCategory)
	seller.Delete("/categories/:id", categoryHandler.DeleteCategory)

	seller.Get("/products", productHandler.GetSellerProducts)
	seller.Post("/products", productHandler.CreateProduct)
	seller.Patch("/products/:id", productHandler.UpdateProduct)
	seller.Post("/products/:id/disable", productHandler.DisableProduct)
	seller.Delete("/products/:id", productHandler.DeleteProduct)
	seller.Post("/products/:id/images", productHandler.AddProductImage)
	seller.Delete("/products/:id/images/:index", productHandler.RemoveProductImage)

	seller.Get("/orders", orderHandler.GetSellerOrders)
	seller.Patch("/orders/:id/status", orderHandler.UpdateOrderStatus)

	seller.Get("/vouchers", voucherHandler.GetVouchers)
	seller.Post("/vouchers", voucherHandler.CreateVoucher)
	seller.Patch("/vouchers/:id", voucherHandler.UpdateVoucher)
	seller.Delete("/vouchers/:id", voucherHandler.DeleteVoucher)

	// Admin surface.
	admin := api.Group("/admin", authed, adminOnly)
	admin.Get("/users", adminHandler.ListUsers)
	admin.Post("/users/:id/toggle-status", adminHandler.ToggleUserStatus)
	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Patch("/orders/:id/status", adminHandler.SetOrderStatus)
	admin.Post("/products/:id/toggle", adminHandler.ToggleProduct)
	admin.Post("/posts/:id/toggle", adminHandler.TogglePost)
	admin.Post("/comments/:id/toggle", adminHandler.ToggleComment)
	admin.Post("/scans/:id/toggle", adminHandler.ToggleScan)
	admin.Get("/audit-logs", adminHandler.ListAuditLogs)

	// Order event stream.
	app.Get("/ws/notifications",
		authed,
		notificationHandler.WebSocketUpgradeMiddleware,
		notificationHandler.Handler(),
	)

	middleware.SetupErrorHandler(app)

	log.Printf("Server starting on host %s in port %s", cfg.HOST, cfg.AppPort)
	if err := app.Listen(cfg.HOST + ":" + cfg.AppPort); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
