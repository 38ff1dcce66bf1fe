package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"clinical-records-backend/internal/config"
	"clinical-records-backend/internal/database"
	"clinical-records-backend/internal/handler"
	"clinical-records-backend/internal/logger"
	"clinical-records-backend/internal/mailer"
	"clinical-records-backend/internal/middleware"
	"clinical-records-backend/internal/models"
	"clinical-records-backend/internal/repository"
	"clinical-records-backend/internal/service"
	"clinical-records-backend/internal/session"
	"clinical-records-backend/internal/storage"
	"clinical-records-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	// 1. Logging and configuration
	logger.Init()
	cfg := config.LoadConfig()
	logger.Log.Info("Configuration loaded successfully")

	// 2. Session token manager
	tokens := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	// 3. Database connections
	db := database.Connect(cfg)

	var revoker session.Revoker
	if redisClient := database.ConnectRedis(cfg); redisClient != nil {
		revoker = session.NewRedisRevoker(redisClient)
	} else {
		logger.Log.Info("Redis not configured, using in-process session revocation")
		revoker = session.NewMemoryRevoker()
	}

	// 4. Attachment store
	var objectStore storage.ObjectStore
	var localStore *storage.LocalStore
	switch cfg.Storage.Backend {
	case "gcs":
		gcs, err := storage.NewGCSStore(context.Background(),
			cfg.Storage.GCSBucket, cfg.Storage.GCSAccessID, cfg.Storage.GCSPrivateKey,
			cfg.Storage.SignedURLTTL)
		if err != nil {
			logger.Log.WithError(err).Fatal("Failed to initialize GCS store")
		}
		objectStore = gcs
	default:
		localStore = storage.NewLocalStore(cfg.Storage.LocalDir, cfg.Server.BaseURL,
			cfg.Storage.URLSecret, cfg.Storage.SignedURLTTL)
		objectStore = localStore
	}

	// 5. Credential mail dispatcher
	var credMailer mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTP.Host != "" {
		credMailer = mailer.NewSMTPMailer(cfg.SMTP)
	}
	dispatcher := mailer.NewDispatcher(credMailer)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go dispatcher.Start(ctx)

	// 6. Repositories
	accountRepo := repository.NewAccountRepo(db)
	patientRepo := repository.NewPatientRepo(db)
	hospitalRepo := repository.NewHospitalRepo(db)
	recordRepo := repository.NewRecordRepo(db)
	auditRepo := repository.NewAuditRepo(db)

	// 7. Services
	authService := service.NewAuthService(accountRepo, auditRepo, tokens, revoker)
	patientService := service.NewPatientService(patientRepo, authService, auditRepo, dispatcher)
	hospitalService := service.NewHospitalService(hospitalRepo, authService, auditRepo, dispatcher)
	recordService := service.NewRecordService(recordRepo, patientRepo, objectStore, auditRepo)

	// 8. Setup Gin
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	r.Use(middleware.CORS(cfg))

	// 9. Handlers
	authHandler := handler.NewAuthHandler(authService, cfg)
	patientHandler := handler.NewPatientHandler(patientService)
	recordHandler := handler.NewRecordHandler(recordService, localStore)
	provisionHandler := handler.NewProvisionHandler(patientService, hospitalService)

	sessionAuth := middleware.SessionAuth(tokens, revoker)

	// 10. Routes
	r.GET("/health", func(c *gin.Context) {
		utils.SuccessResponse(c, gin.H{
			"status":  "healthy",
			"service": "clinical-records-backend",
		})
	})

	// Auth routes (public except user-type)
	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/authority", authHandler.Login(models.RoleAuthority))
		auth.POST("/hospital", authHandler.Login(models.RoleHospital))
		auth.POST("/patient", authHandler.Login(models.RolePatient))
		auth.GET("/user-type", sessionAuth, authHandler.UserType)
		auth.POST("/logout", authHandler.Logout)
	}

	// Raw attachment bytes, protected by the URL signature rather than a
	// session: signed URLs must work from plain <img>/<a> fetches.
	if localStore != nil {
		r.GET("/patient/file/raw/*objectKey", recordHandler.RawFile)
	}

	// Patient data routes (authenticated; patients confined to themselves)
	clinicalRead := middleware.RequireRole(models.RolePatient, models.RoleHospital)
	selfScope := middleware.PatientSelfScope()

	patient := r.Group("/patient")
	patient.Use(sessionAuth)
	{
		patient.GET("/:patientId/personalData",
			middleware.RequireRole(models.RolePatient, models.RoleHospital, models.RoleAuthority),
			selfScope,
			patientHandler.GetPersonalData)
		patient.GET("/:patientId/medicalData", clinicalRead, selfScope, patientHandler.GetMedicalData)
		patient.PUT("/:patientId/medicalData",
			middleware.RequireRole(models.RoleHospital, models.RoleAuthority),
			patientHandler.UpdateMedicalData)
		patient.GET("/:patientId/summary", clinicalRead, selfScope, patientHandler.GetSummary)
		patient.GET("/:patientId/records", clinicalRead, selfScope, recordHandler.ListRecords)
		patient.GET("/:patientId/records/recent", clinicalRead, selfScope, recordHandler.RecentRecords)
		patient.GET("/:patientId/records/bloodPressure", clinicalRead, selfScope, recordHandler.BloodPressure)
		patient.GET("/:patientId/records/:visitId", clinicalRead, selfScope, recordHandler.GetRecord)
		patient.GET("/file/:patientId/:key", clinicalRead, selfScope, recordHandler.GetFileURL)

		patient.POST("/:patientId/add-record",
			middleware.RequireRole(models.RoleHospital),
			recordHandler.AddRecord)
	}

	// Provisioning routes (authority only)
	users := r.Group("/users")
	users.Use(sessionAuth, middleware.RequireRole(models.RoleAuthority))
	{
		users.POST("/patient/new", provisionHandler.CreatePatient)
		users.PUT("/patient/:patientId", provisionHandler.UpdatePatient)
		users.POST("/hospital/new", provisionHandler.CreateHospital)
		users.GET("/hospital/:hospitalId", provisionHandler.GetHospital)
		users.PUT("/hospital/:hospitalId", provisionHandler.UpdateHospital)
	}

	// 11. Start server with graceful shutdown
	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Server starting")
		if err := r.Run(":" + cfg.Server.Port); err != nil {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Stop the mail dispatcher
	cancel()
	logger.Log.Info("Server exited")
}
