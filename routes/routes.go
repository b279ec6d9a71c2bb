package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/valkyria/equestrian-club/handlers"
	"github.com/valkyria/equestrian-club/middleware"
)

// SetupRoutes собирает маршрутизатор. Аутентификация устанавливает личность;
// ролевые решения принимает services.Authorize внутри сервисов, поэтому
// защищённые группы используют только auth.Require.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	competitionHandler *handlers.CompetitionHandler,
	horseHandler *handlers.HorseHandler,
	resultHandler *handlers.ResultHandler,
	dashboardHandler *handlers.DashboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Публичные маршруты: списки состязаний и результатов, живая лента.
	router.Group(func(r chi.Router) {
		r.Get("/competitions", competitionHandler.List)
		r.Get("/competitions/{id}", competitionHandler.Get)
		r.Get("/results", resultHandler.List)
		r.Get("/results/{id}", resultHandler.Get)
		r.Get("/ws/feed", webSocketHandler.ServeFeed)
	})

	// Аутентификация. Регистрация видит актора (если он есть), чтобы
	// отклонить повторную регистрацию под сессией.
	router.Group(func(r chi.Router) {
		r.Use(auth.Optional)
		r.Post("/auth/register", authHandler.Register)
	})
	router.Post("/auth/login", authHandler.Login)

	// Всё остальное требует установленной личности.
	router.Group(func(r chi.Router) {
		r.Use(auth.Require)

		r.Post("/auth/logout", authHandler.Logout)

		r.Get("/dashboard", dashboardHandler.Show)
		r.Get("/dashboard/top-jockeys", dashboardHandler.TopJockeys)

		r.Get("/profile", userHandler.GetProfile)
		r.Put("/profile", userHandler.UpdateProfile)

		r.Get("/users/jockeys", userHandler.ListJockeys)
		r.Get("/users/owners", userHandler.ListOwners)

		r.Route("/horses", func(r chi.Router) {
			r.Get("/", horseHandler.List)
			r.Post("/", horseHandler.Create)
			r.Get("/{id}", horseHandler.Get)
			r.Put("/{id}", horseHandler.Update)
			r.Delete("/{id}", horseHandler.Delete)
			r.Put("/{id}/photo", horseHandler.UploadPhoto)
		})

		r.Post("/competitions", competitionHandler.Create)
		r.Put("/competitions/{id}", competitionHandler.Update)
		r.Delete("/competitions/{id}", competitionHandler.Delete)

		r.Post("/results", resultHandler.Create)
		r.Put("/results/{id}", resultHandler.Update)
		r.Delete("/results/{id}", resultHandler.Delete)
	})
}
