package routes

import (
	"log/slog"
	"net/http"
	"time"

	"barberqueue-backend/config"
	"barberqueue-backend/controllers"
	"barberqueue-backend/services"
	"barberqueue-backend/store"
	"barberqueue-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Queue         *services.QueueService
	Catalog       *services.CatalogService
	Auth          *services.AuthService
	Reports       *services.ReportService
	Notifications *store.NotificationLogs
	Tokens        *utils.TokenManager
	Logger        *slog.Logger
	CORSOrigins   []string
	LoginPerMin   int
	SecureCookie  bool
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	origins := d.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r.Use(config.PerformanceLogger(logger))

	queueController := &controllers.QueueController{Queue: d.Queue}
	haircutController := &controllers.HaircutTypeController{Catalog: d.Catalog}
	statsController := &controllers.StatsController{Queue: d.Queue}
	authController := &controllers.AuthController{Auth: d.Auth, SecureCookie: d.SecureCookie}
	reportController := &controllers.ReportController{Reports: d.Reports, Location: d.Queue.Location()}
	notificationController := &controllers.NotificationController{Logs: d.Notifications}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/login", utils.NewRateLimiter(d.LoginPerMin).Middleware(), authController.Login)
		auth.POST("/logout", authController.Logout)
		auth.GET("/me", utils.AuthMiddleware(d.Tokens), authController.Me)
	}

	api := r.Group("/api")
	{
		api.GET("/haircut-types", haircutController.ListActive)

		queue := api.Group("/queue")
		{
			queue.GET("", queueController.List)
			queue.POST("", queueController.Add)
			queue.DELETE("", queueController.Clear)
			queue.GET("/:id", queueController.Get)
			queue.POST("/:id/start", queueController.Start)
			queue.POST("/:id/finish", queueController.Finish)
			queue.DELETE("/:id", queueController.Remove)
		}

		// Legacy enrollment endpoint
		api.POST("/add-client", queueController.AddClient)

		api.GET("/stats", statsController.Stats)
	}

	admin := api.Group("/admin")
	admin.Use(utils.AuthMiddleware(d.Tokens))
	{
		haircuts := admin.Group("/haircut-types")
		{
			haircuts.GET("", haircutController.ListAll)
			haircuts.POST("", haircutController.Create)
			haircuts.PUT("/:id", haircutController.Update)
			haircuts.DELETE("/:id", haircutController.Deactivate)
		}

		admin.GET("/stats", statsController.Dashboard)
		admin.GET("/appointments", statsController.Appointments)
		admin.GET("/notifications", notificationController.Recent)

		reports := admin.Group("/reports")
		{
			reports.GET("/daily", reportController.Daily)
			reports.GET("/daily.pdf", reportController.DailyPDF)
		}
	}

	return r
}

// PrintRoutes writes the route table to the logger at debug level.
func PrintRoutes(r *gin.Engine, logger *slog.Logger) {
	for _, route := range r.Routes() {
		logger.Debug("route", slog.String("method", route.Method), slog.String("path", route.Path))
	}
}
