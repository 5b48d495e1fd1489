package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/report-dashboard/internal/config"
	"github.com/cmlabs-hris/report-dashboard/internal/handler/http/middleware"
	"github.com/cmlabs-hris/report-dashboard/internal/handler/http/response"
	"github.com/cmlabs-hris/report-dashboard/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type Handlers struct {
	Auth       AuthHandler
	Lead       LeadHandler
	COE        COEHandler
	Attendance AttendanceHandler
	Upload     UploadHandler
}

func NewRouter(app config.AppConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(app.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "report-dashboard"),
		slog.String("version", "v1.0.0"),
		slog.String("env", app.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{app.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Post("/auth/logout", h.Auth.Logout)

			r.Route("/reports", func(r chi.Router) {
				r.Post("/leads", h.Lead.Preview)

				r.Route("/coe", func(r chi.Router) {
					r.Post("/expiry", h.COE.Expiry)
					r.Post("/expiry/download", h.COE.ExpiryDownload)
					r.Post("/sales", h.COE.Sales)
					r.Post("/sales/download", h.COE.SalesDownload)
				})

				r.Route("/attendance", func(r chi.Router) {
					r.Post("/", h.Attendance.Report)
					r.Post("/download", h.Attendance.Download)
					r.Post("/warnings", h.Attendance.Warnings)
				})
			})

			r.Route("/uploads", func(r chi.Router) {
				r.Get("/", h.Upload.List)
				r.Get("/{id}/file", h.Upload.Download)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})
	return r
}
