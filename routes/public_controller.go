package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/quickform/quickform/app"
	"github.com/quickform/quickform/httpx"
	"github.com/quickform/quickform/log"
	"github.com/quickform/quickform/model"
	"github.com/quickform/quickform/store"
	"github.com/quickform/quickform/submit"
)

// PublicGetFormById serves a form definition to the respondent
// surface. Drafts are invisible here: an unpublished form 404s just
// like an unknown one.
func PublicGetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		formId, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
			return
		}

		form, err := app.Store.GetForm(r.Context(), formId)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, r, "public.get_form", formId)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_form", err)
			return
		}
		if !form.Published {
			httpx.LogNotFound(w, r, "public.get_form.unpublished", formId)
			return
		}

		// the public surface has no business with the owner
		form.UserID = ""

		render.JSON(w, r, map[string]any{
			"success": true,
			"form":    form,
		})
	}
}

type submitRequest struct {
	FormID    int               `json:"formId"`
	Responses []model.RawAnswer `json:"responses"`
}

// SubmitResponse takes a raw public submission, validates it against
// the owning form and persists the normalized record. Validation
// rejections map to 400/403/404; only infrastructure failures become
// 500s.
func SubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := submitRequest{}
		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if req.FormID <= 0 || req.Responses == nil {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
				"submit_response.bad_request", "Invalid request body (formId + responses[] required)")
			return
		}

		form, err := app.Store.GetForm(r.Context(), req.FormID)
		if errors.Is(err, store.ErrNotFound) {
			httpx.LogNotFound(w, r, "submit_response.get_form", req.FormID)
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_form", err)
			return
		}

		answers, err := submit.Validate(form, req.Responses)
		if err != nil {
			var missing *submit.MissingFieldsError
			switch {
			case errors.Is(err, submit.ErrNotAcceptingResponses):
				httpx.LogStatusMsg(w, r, http.StatusForbidden, log.DebugLevel,
					"submit_response.unpublished", "Form is not accepting responses")
			case errors.As(err, &missing):
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
					"submit_response.missing_required", "Missing required fields: %s",
					strings.Join(missing.Labels, ", "))
			case errors.Is(err, submit.ErrNoValidResponses):
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
					"submit_response.no_valid_responses", "No valid responses provided.")
			default:
				httpx.LogInternalError(w, r, "submit_response.validate", err)
			}
			return
		}

		response, err := app.Store.CreateResponse(r.Context(), req.FormID, answers)
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_response", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"success": true,
			"data":    response,
		})
	}
}
