// @title           ArgoCRM API
// @version         1.0
// @description     ArgoCRM Backend API - quotes, RFQs, companies, people, projects, registrations and follow-ups.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    https://crm.argotrading.example

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      https://crm.argotrading.example

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "argocrm/docs"
	"argocrm/handlers"
	"argocrm/models"
	"argocrm/services"
	"argocrm/storage"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://crm.argotrading.example",
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB()

	if err := gormDB.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.CompanyGorm{},
		&models.PersonGorm{},
		&models.ProjectGorm{},
		&models.CurrencyRateGorm{},
		&models.QuoteGorm{},
		&models.RfqGorm{},
		&models.RegistrationGorm{},
		&models.FollowUpGorm{},
	); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	cache := storage.NewCacheFromEnv()

	minioClient, err := storage.NewMinIOClient(
		os.Getenv("MINIO_ENDPOINT"),
		os.Getenv("MINIO_ACCESS_KEY"),
		os.Getenv("MINIO_SECRET_KEY"),
		os.Getenv("MINIO_BUCKET"),
		os.Getenv("MINIO_USE_SSL") == "true",
	)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	emailService := services.NewEmailServiceFromEnv()

	var fcmService *services.FCMService
	credentialsPath := os.Getenv("FCM_CREDENTIALS_PATH")
	if credentialsPath != "" {
		fcmService, err = services.NewFCMService(credentialsPath, db)
		if err != nil {
			log.Printf("Warning: Failed to initialize FCM service: %v. Push notifications will be disabled.", err)
			fcmService = nil
		} else {
			log.Println("FCM service initialized successfully")
		}
	}

	reminderService := services.NewReminderService(gormDB, emailService, fcmService)

	// Daily maintenance: clear stale sessions and send quote reminders.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err = c.AddFunc("30 7 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := storage.CleanupExpiredSessions(db); err != nil {
			logrus.Errorf("cron: session cleanup failed: %v", err)
		}
		reminderService.Run(ctx)
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}
	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== AUTH ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))

	// ==================== QUOTES ====================
	r.POST("/api/quotes", handlers.CreateQuoteHandler(gormDB, cache))
	r.GET("/api/quotes", handlers.GetQuotesHandler(gormDB, cache))
	r.GET("/api/quotes/metadata", handlers.GetQuoteMetadataHandler(gormDB, cache))
	r.GET("/api/quotes/:id", handlers.GetQuoteHandler(gormDB, cache))
	r.PUT("/api/quotes/:id", handlers.UpdateQuoteHandler(gormDB, cache))
	r.DELETE("/api/quotes/:id", handlers.DeleteQuoteHandler(gormDB, cache))
	r.GET("/api/quotes/:id/pdf", handlers.GenerateQuotePDF(gormDB))
	r.GET("/api/generate-qr/:id", handlers.GenerateQuoteQRCodeJPEG(gormDB))

	// ==================== RFQS ====================
	r.POST("/api/rfqs", handlers.CreateRfqHandler(gormDB, cache))
	r.GET("/api/rfqs", handlers.GetRfqsHandler(gormDB, cache))
	r.GET("/api/rfqs/:id", handlers.GetRfqHandler(gormDB, cache))
	r.PUT("/api/rfqs/:id", handlers.UpdateRfqHandler(gormDB, cache))
	r.POST("/api/rfqs/:id/receive", handlers.ReceiveRfqHandler(gormDB, cache))
	r.DELETE("/api/rfqs/:id", handlers.DeleteRfqHandler(gormDB, cache))

	// ==================== COMPANIES ====================
	r.POST("/api/companies", handlers.CreateCompanyHandler(gormDB, cache))
	r.GET("/api/companies", handlers.GetCompaniesHandler(gormDB, cache))
	r.GET("/api/companies/:id", handlers.GetCompanyHandler(gormDB, cache))
	r.PUT("/api/companies/:id", handlers.UpdateCompanyHandler(gormDB, cache))
	r.DELETE("/api/companies/:id", handlers.DeleteCompanyHandler(gormDB, cache))

	// ==================== PEOPLE ====================
	r.POST("/api/people", handlers.CreatePersonHandler(gormDB, cache))
	r.GET("/api/people", handlers.GetPeopleHandler(gormDB, cache))
	r.GET("/api/people/:id", handlers.GetPersonHandler(gormDB, cache))
	r.PUT("/api/people/:id", handlers.UpdatePersonHandler(gormDB, cache))
	r.DELETE("/api/people/:id", handlers.DeletePersonHandler(gormDB, cache))

	// ==================== PROJECTS ====================
	r.POST("/api/projects", handlers.CreateProjectHandler(gormDB, cache))
	r.GET("/api/projects", handlers.GetProjectsHandler(gormDB, cache))
	r.GET("/api/projects/:id", handlers.GetProjectHandler(gormDB, cache))
	r.PUT("/api/projects/:id", handlers.UpdateProjectHandler(gormDB, cache))
	r.DELETE("/api/projects/:id", handlers.DeleteProjectHandler(gormDB, cache))

	// ==================== REGISTRATIONS ====================
	r.POST("/api/registrations", handlers.CreateRegistrationHandler(gormDB, cache))
	r.GET("/api/registrations", handlers.GetRegistrationsHandler(gormDB, cache))
	r.GET("/api/registrations/:id", handlers.GetRegistrationHandler(gormDB, cache))
	r.PUT("/api/registrations/:id", handlers.UpdateRegistrationHandler(gormDB, cache))
	r.DELETE("/api/registrations/:id", handlers.DeleteRegistrationHandler(gormDB, cache))

	// ==================== FOLLOW-UPS ====================
	r.POST("/api/follow-ups", handlers.CreateFollowUpHandler(gormDB, cache))
	r.GET("/api/follow-ups", handlers.GetFollowUpsHandler(gormDB, cache))
	r.PUT("/api/follow-ups/:id", handlers.UpdateFollowUpHandler(gormDB, cache))
	r.DELETE("/api/follow-ups/:id", handlers.DeleteFollowUpHandler(gormDB, cache))

	// ==================== CURRENCIES ====================
	r.GET("/api/currency-rates", handlers.GetCurrencyRatesHandler(gormDB))
	r.PUT("/api/currency-rates", handlers.UpsertCurrencyRateHandler(gormDB, cache))
	r.DELETE("/api/currency-rates/:code", handlers.DeleteCurrencyRateHandler(gormDB, cache))

	// ==================== DASHBOARD & EXPORT ====================
	r.GET("/api/dashboard", handlers.GetDashboardHandler(gormDB, cache))
	r.GET("/api/export/quotes.csv", handlers.ExportQuotesCSV(gormDB))
	r.GET("/api/export/quotes.xlsx", handlers.ExportQuotesXLSX(gormDB))
	r.GET("/api/export/rfqs.csv", handlers.ExportRfqsCSV(gormDB))

	// ==================== FILES ====================
	r.POST("/api/upload", handlers.UploadFileHandler(minioClient))
	r.GET("/api/get-file", handlers.ServeFileHandler(minioClient))
	r.DELETE("/api/delete-file", handlers.DeleteFileHandler(minioClient))

	// ==================== SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil || portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT environment variable: %s", port)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(20 * time.Second):
		log.Println("Warning: cron jobs did not finish before shutdown timeout")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
