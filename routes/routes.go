package routes

import (
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/dastin1501/PPL-Referee/handlers"
	"github.com/dastin1501/PPL-Referee/middleware"
	"github.com/dastin1501/PPL-Referee/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options carries what SetupRoutes needs beyond the handlers.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	bracketHandler *handlers.BracketHandler,
	scheduleHandler *handlers.ScheduleHandler,
	wsHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// The websocket route stays outside the timeout and gzip wrappers,
	// which do not support connection hijacking.
	router.Get("/ws/tournaments/{tournamentID}", wsHandler.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	editors := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleClubAdmin)
	scorers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleClubAdmin, models.RoleReferee)

	router.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		r.Use(gziphandler.GzipHandler)

		r.Get("/matches", scheduleHandler.ListMatchesHandler)

		r.Route("/categories/{categoryID}", func(r chi.Router) {
			r.Get("/bracket", bracketHandler.GetCategoryBracketHandler)

			r.With(authenticate).Get("/submission", bracketHandler.GetSubmissionHandler)
			r.With(authenticate, scorers).Put("/groups/{groupID}/matches", bracketHandler.SaveGroupMatchesHandler)
			r.With(authenticate, scorers).Put("/elimination/{matchKey}", bracketHandler.SaveEliminationMatchHandler)
		})

		r.Route("/schedules/{date}", func(r chi.Router) {
			r.Get("/", scheduleHandler.GetScheduleHandler)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(editors)

				r.Put("/", scheduleHandler.SaveScheduleHandler)
				r.Post("/venues", scheduleHandler.AddVenueHandler)
				r.Delete("/venues/{venue}", scheduleHandler.RemoveVenueHandler)
				r.Post("/venues/{venue}/slots", scheduleHandler.AddSlotsHandler)
				r.Delete("/venues/{venue}/slots/{row}", scheduleHandler.RemoveSlotHandler)
				r.Put("/venues/{venue}/courts", scheduleHandler.SetCourtCountHandler)
				r.Put("/venues/{venue}/cells/{row}/{col}", scheduleHandler.SetCellHandler)
				r.Delete("/venues/{venue}/cells/{row}/{col}", scheduleHandler.ClearCellHandler)
			})
		})
	})
}
