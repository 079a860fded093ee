package routes

import (
	"net/http"

	"clinic-backend/internal/handlers"
	"clinic-backend/internal/middleware"
	"clinic-backend/internal/policy"
	"clinic-backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Streams must not be buffered by the gzip writer.
var streamingPaths = []string{"/api/v1/events", "/api/v1/ws"}

// Deps is everything the router needs from the composition root.
type Deps struct {
	Handler     *handlers.Handler
	Resolver    middleware.ActorResolver
	Streams     Streams
	Limiter     *middleware.IPRateLimiter
	Metrics     *middleware.Metrics
	Gatherer    prometheus.Gatherer
	JWTSecret   string
	CORSOrigins []string
	UploadDir   string
	Log         zerolog.Logger
}

// Streams serves the live "data changed" feed.
type Streams interface {
	ServeSSE(c *gin.Context)
	ServeWS(c *gin.Context)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.ClinicHeader, "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Content-Disposition"},
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func SetupRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.Recovery(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler())
	}
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(corsConfig(d.CORSOrigins)))
	}
	r.Use(gzip.Gzip(gzip.BestSpeed, gzip.WithExcludedPaths(streamingPaths)))
	r.Use(middleware.RateLimitMiddleware(d.Limiter, d.Log))

	r.GET("/ping", func(c *gin.Context) {
		utils.APIResponse(c, http.StatusOK, true, "Server OK!", nil)
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}
	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}

	h := d.Handler
	api := r.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", h.Login)
			auth.POST("/bootstrap", h.Bootstrap)
			auth.POST("/forgot-password", h.ForgotPassword)
			auth.POST("/reset-password", h.ResetPassword)
		}

		// Called by the payment gateway; authenticated by signature.
		api.POST("/payments/notification", h.PaymentNotification)

		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(d.JWTSecret))
		protected.Use(middleware.ActingScope(d.Resolver))
		{
			protected.GET("/profile", h.GetProfile)
			protected.PUT("/profile", h.UpdateProfile)
			protected.POST("/profile/photo", h.UploadPhoto)

			if d.Streams != nil {
				protected.GET("/events", d.Streams.ServeSSE)
				protected.GET("/ws", d.Streams.ServeWS)
			}

			tenancy := protected.Group("/")
			tenancy.Use(middleware.RequirePermission(policy.PermManageTenancy))
			{
				tenancy.POST("/clinics", h.CreateClinic)
				tenancy.PUT("/clinics/:id", h.UpdateClinic)
				tenancy.DELETE("/clinics/:id", h.DeleteClinic)

				tenancy.GET("/users", h.ListUsers)
				tenancy.POST("/users", h.CreateUser)
				tenancy.PUT("/users/:id", h.UpdateUser)
				tenancy.DELETE("/users/:id", h.DeleteUser)
			}

			// Staff see their own clinic; owners see all of them.
			protected.GET("/clinics", middleware.RequirePermission(policy.PermViewStaff), h.ListClinics)
			protected.GET("/professionals", middleware.RequirePermission(policy.PermViewStaff), h.ListProfessionals)

			clinical := protected.Group("/")
			clinical.Use(middleware.RequirePermission(policy.PermClinicalData))
			{
				clinical.GET("/patients", h.ListPatients)
				clinical.POST("/patients", h.CreatePatient)
				clinical.GET("/patients/:id", h.GetPatient)
				clinical.PUT("/patients/:id", h.UpdatePatient)
				clinical.DELETE("/patients/:id", h.DeletePatient)

				clinical.GET("/procedures", h.ListProcedures)
				clinical.POST("/procedures", h.CreateProcedure)
				clinical.PUT("/procedures/:id", h.UpdateProcedure)
				clinical.DELETE("/procedures/:id", h.DeleteProcedure)

				clinical.GET("/appointments", h.ListAppointments)
				clinical.POST("/appointments", h.CreateAppointment)
				clinical.GET("/appointments/today", h.TodayAppointments)
				clinical.GET("/appointments/upcoming", h.UpcomingAppointments)
				clinical.GET("/appointments/check-date", h.CheckDate)
				clinical.PUT("/appointments/:id", h.UpdateAppointment)
				clinical.DELETE("/appointments/:id", h.DeleteAppointment)

				clinical.GET("/schedule/:professionalId/month", h.MonthSchedule)
				clinical.GET("/schedule/:professionalId/day", h.DaySchedule)

				clinical.GET("/reminders", h.ListReminders)
				clinical.POST("/reminders", h.CreateReminder)
			}

			financial := protected.Group("/financial")
			financial.Use(middleware.RequirePermission(policy.PermFinancial))
			{
				financial.GET("", h.ListFinancial)
				financial.POST("", h.CreateFinancial)
				financial.PUT("/:id", h.UpdateFinancial)
				financial.DELETE("/:id", h.DeleteFinancial)
				financial.POST("/:id/payment-link", h.CreatePaymentLink)
			}

			records := protected.Group("/records")
			records.Use(middleware.RequirePermission(policy.PermClinicalRecord))
			{
				records.GET("", h.ListRecords)
				records.POST("", h.CreateRecord)
				records.GET("/:id", h.GetRecord)
				records.PUT("/:id", h.UpdateRecord)
				records.DELETE("/:id", h.DeleteRecord)
			}

			reports := protected.Group("/reports")
			reports.Use(middleware.RequirePermission(policy.PermReports))
			{
				reports.GET("/summary", h.ReportSummary)
				reports.GET("/financial.xlsx", h.ExportFinancial)
				reports.GET("/ledger-drift", h.LedgerDrift)
			}
		}
	}
}
