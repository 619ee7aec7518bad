package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-ordering/controllers"
	"github.com/yeremiapane/restaurant-ordering/kds"
	"github.com/yeremiapane/restaurant-ordering/middlewares"
	"github.com/yeremiapane/restaurant-ordering/ordering"
	"github.com/yeremiapane/restaurant-ordering/services"
	"github.com/yeremiapane/restaurant-ordering/utils"
)

// Deps is everything the HTTP layer needs, built once in main.
type Deps struct {
	DB           *gorm.DB
	Tokens       *utils.TokenManager
	Hub          *kds.Hub
	Tables       *services.TableDirectory
	Orders       *services.OrderStore
	Reservations *services.ReservationService
	Revenue      *services.RevenueService
	Sessions     services.SessionStore
	Submitter    *ordering.Submitter
	CORSOrigins  []string
	// RequestsPerMinute is the per-IP budget for the API; 0 disables limiting.
	RequestsPerMinute int
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(d.DB, d.Tokens)
	tableCtrl := controllers.NewTableController(d.Tables)
	categoryCtrl := controllers.NewMenuCategoryController(d.DB)
	menuCtrl := controllers.NewMenuController(d.DB)
	sessionCtrl := controllers.NewSessionController(d.DB, d.Sessions, d.Submitter, d.Tables)
	orderCtrl := controllers.NewOrderController(d.DB, d.Orders)
	reservationCtrl := controllers.NewReservationController(d.Reservations)
	notificationCtrl := controllers.NewNotificationController(d.DB)
	adminCtrl := controllers.NewAdminController(d.DB, d.Revenue, d.Tables)
	kdsCtrl := controllers.NewKDSController(d.Hub, nil)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// realtime feed for back-office screens
	r.GET("/ws", middlewares.WebSocketAuthMiddleware(d.Tokens), kdsCtrl.Subscribe)

	api := r.Group("/api")
	if d.RequestsPerMinute > 0 {
		api.Use(middlewares.NewRateLimiter(d.RequestsPerMinute, d.RequestsPerMinute).RateLimit())
	}

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	authRoutes := api.Group("/auth")
	authRoutes.Use(middlewares.NewStrictRateLimiter())
	{
		authRoutes.POST("/register", userCtrl.Register)
		authRoutes.POST("/login", userCtrl.Login)
	}

	api.GET("/categories", categoryCtrl.GetAllCategories)
	api.GET("/categories/:cat_id", categoryCtrl.GetCategoryByID)
	api.GET("/menu", menuCtrl.GetAllMenus)
	api.GET("/menu/:menu_id", menuCtrl.GetMenuByID)
	api.GET("/tables/available", tableCtrl.GetAvailableTables)
	api.GET("/tables/resolve", tableCtrl.ResolveQR)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware(d.Tokens))
	{
		auth.POST("/auth/logout", userCtrl.Logout)
		auth.GET("/profile", userCtrl.GetProfile)
		auth.GET("/dashboard", userCtrl.Dashboard)

		session := auth.Group("/session")
		session.Use(middlewares.NoStore())
		{
			session.GET("", sessionCtrl.GetSession)
			session.DELETE("", sessionCtrl.ResetSession)
			session.POST("/table", sessionCtrl.SelectTable)
			session.POST("/items", sessionCtrl.AddItem)
			session.PATCH("/items/:menu_id", sessionCtrl.UpdateItem)
			session.DELETE("/items/:menu_id", sessionCtrl.RemoveItem)
			session.POST("/order", sessionCtrl.PlaceOrder)

			payment := session.Group("/payment")
			payment.Use(middlewares.PaymentLogger())
			payment.POST("/success", sessionCtrl.PaymentSuccess)
			payment.POST("/error", sessionCtrl.PaymentError)
		}

		auth.GET("/orders", orderCtrl.MyOrders)
		auth.GET("/orders/:order_id", orderCtrl.GetOrderByID)

		auth.POST("/reservations", reservationCtrl.CreateReservation)
		auth.GET("/reservations", reservationCtrl.MyReservations)
		auth.PATCH("/reservations/:reservation_id/cancel", reservationCtrl.CancelReservation)
	}

	// STAFF
	staff := auth.Group("/staff")
	staff.Use(middlewares.StaffOnly())
	{
		staff.GET("/tables", tableCtrl.GetAllTables)
		staff.PATCH("/tables/:table_id/status", tableCtrl.UpdateTableStatus)
		staff.GET("/tables/:table_id/history", tableCtrl.GetTableHistory)
		staff.GET("/reservations", reservationCtrl.ReservationsByDate)
	}

	// BACK OFFICE (staff, chef, admin)
	backoffice := auth.Group("/backoffice")
	backoffice.Use(middlewares.BackOfficeOnly())
	{
		backoffice.GET("/orders", orderCtrl.GetAllOrders)
		backoffice.GET("/orders/:order_id", orderCtrl.GetOrderByID)
	}

	// CHEF
	kitchen := auth.Group("/kitchen")
	kitchen.Use(middlewares.ChefOnly())
	{
		kitchen.GET("/orders", orderCtrl.KitchenOrders)
		kitchen.PATCH("/orders/:order_id/preparation", orderCtrl.UpdatePreparation)
		kitchen.GET("/notifications", notificationCtrl.GetAllNotifications)
		kitchen.DELETE("/notifications/:notif_id", notificationCtrl.DeleteNotification)
	}

	// ADMIN
	admin := auth.Group("/admin")
	admin.Use(middlewares.AdminOnly())
	{
		admin.GET("/stats", adminCtrl.GetDashboardStats)
		admin.GET("/revenue", adminCtrl.GetRevenue)
		admin.GET("/revenue/chart.png", adminCtrl.GetRevenueChart)
		admin.GET("/payments/metrics", adminCtrl.GetPaymentMetrics)
		admin.GET("/orders/export.xlsx", adminCtrl.ExportOrders)

		admin.GET("/users", userCtrl.GetAllUsers)
		admin.POST("/users", userCtrl.CreateStaff)
		admin.PATCH("/users/:id/role", userCtrl.UpdateRole)

		admin.GET("/tables", tableCtrl.GetAllTables)
		admin.GET("/tables/:table_id", tableCtrl.GetTable)
		admin.POST("/tables", tableCtrl.CreateTable)
		admin.PUT("/tables/:table_id", tableCtrl.UpdateTable)
		admin.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
		admin.GET("/tables/:table_id/qr.png", adminCtrl.GetTableQRCode)
		admin.GET("/tables/qr-codes.pdf", adminCtrl.GetTableQRCodesPDF)

		admin.GET("/reservations", reservationCtrl.ReservationsByDate)

		admin.POST("/categories", categoryCtrl.CreateCategory)
		admin.PUT("/categories/:cat_id", categoryCtrl.UpdateCategory)
		admin.DELETE("/categories/:cat_id", categoryCtrl.DeleteCategory)

		admin.GET("/menu", menuCtrl.GetAllMenus)
		admin.POST("/menu", menuCtrl.CreateMenu)
		admin.PUT("/menu/:menu_id", menuCtrl.UpdateMenu)
		admin.PATCH("/menu/:menu_id/availability", menuCtrl.SetAvailability)
		admin.DELETE("/menu/:menu_id", menuCtrl.DeleteMenu)
	}

	return r
}
