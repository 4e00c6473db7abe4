package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/quickform/quickform/app"
	"github.com/quickform/quickform/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app))

	return root
}

func apiRouter(app app.App) http.Handler {
	api := chi.NewRouter()

	// respondent surface
	api.Get(`/forms/{id:^\d+$}`, PublicGetFormById(app))
	api.Post(`/responses`, SubmitResponse(app))

	// owner surface
	api.Route("/admin", func(r chi.Router) {
		r.Use(middlewares.Authenticated(app.TokenSecret))

		// CRUD form
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get(`/forms/{id:^\d+$}`, GetFormById(app))
		r.Put(`/forms/{id:^\d+$}`, UpdateForm(app))
		r.Delete(`/forms/{id:^\d+$}`, DeleteForm(app))
		r.Patch(`/forms/{id:^\d+$}/toggle-publish`, TogglePublish(app))

		// collected responses
		r.Get(`/forms/{id:^\d+$}/responses`, ListResponses(app))
		r.Get(`/forms/{id:^\d+$}/responses/count`, CountResponses(app))
		r.Delete(`/forms/{id:^\d+$}/responses`, ClearResponses(app))
		r.Get(`/forms/{id:^\d+$}/responses/export`, ExportResponses(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
