package routes

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/quickform/quickform/app"
	"github.com/quickform/quickform/export"
	"github.com/quickform/quickform/httpx"
	"github.com/quickform/quickform/log"
	"github.com/quickform/quickform/model"
	"github.com/quickform/quickform/routes/middlewares"
	"github.com/quickform/quickform/store"
	"github.com/quickform/quickform/upload"
)

// ownedForm loads the form addressed by the URL and checks it belongs
// to the authenticated user. Somebody else's form 404s rather than
// 403s, so ids don't leak.
func ownedForm(app app.App, w http.ResponseWriter, r *http.Request) (*model.Form, bool) {
	formId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.get_url_param.id")
		return nil, false
	}

	form, err := app.Store.GetForm(r.Context(), formId)
	if errors.Is(err, store.ErrNotFound) {
		httpx.LogNotFound(w, r, "admin.get_form", formId)
		return nil, false
	}
	if err != nil {
		httpx.LogInternalError(w, r, "db.get_form", err)
		return nil, false
	}
	if form.UserID != middlewares.UserID(r) {
		httpx.LogNotFound(w, r, "admin.get_form.owner", formId)
		return nil, false
	}
	return form, true
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{}
		err := render.DecodeJSON(r.Body, &form)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if form.Title == "" {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
				"create_form.title", "Title is required")
			return
		}
		for _, f := range form.Fields {
			if f.Label == "" || !model.ValidFieldType(f.Type) {
				httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
					"create_form.fields", "Every field needs a label and a valid type")
				return
			}
		}
		form.UserID = middlewares.UserID(r)

		// externalize inline images before touching the DB, so a
		// failed upload leaves nothing half-written
		form.Cover, err = upload.Externalize(r.Context(), app.Uploader, form.Cover, "forms/cover")
		if err != nil {
			httpx.LogInternalError(w, r, "upload.cover", err)
			return
		}
		form.Logo, err = upload.Externalize(r.Context(), app.Uploader, form.Logo, "forms/logo")
		if err != nil {
			httpx.LogInternalError(w, r, "upload.logo", err)
			return
		}

		formId, err := app.Store.CreateForm(r.Context(), &form)
		if errors.Is(err, store.ErrDuplicateField) {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
				"db.insert_form.fields", "Field ids must be unique")
			return
		}
		if err != nil {
			httpx.LogInternalError(w, r, "db.insert_form", err)
			return
		}

		w.WriteHeader(http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"success": true,
			"formId":  formId,
		})
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.Store.ListFormsByOwner(r.Context(), middlewares.UserID(r))
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
			"forms":   forms,
		})
	}
}

func GetFormById(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
			"form":    form,
		})
	}
}

func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		patch := model.FormPatch{}
		err := render.DecodeJSON(r.Body, &patch)
		if err != nil {
			httpx.LogStatus(w, r, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if patch.Title != nil && *patch.Title == "" {
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
				"update_form.title", "Title is required")
			return
		}

		patch.Cover, err = upload.Externalize(r.Context(), app.Uploader, patch.Cover, "forms/cover")
		if err != nil {
			httpx.LogInternalError(w, r, "upload.cover", err)
			return
		}
		patch.Logo, err = upload.Externalize(r.Context(), app.Uploader, patch.Logo, "forms/logo")
		if err != nil {
			httpx.LogInternalError(w, r, "upload.logo", err)
			return
		}

		err = app.Store.UpdateForm(r.Context(), form.ID, patch)
		switch {
		case errors.Is(err, store.ErrConflict):
			httpx.LogStatus(w, r, http.StatusConflict, log.DebugLevel, "db.update_form.conflict")
			return
		case errors.Is(err, store.ErrDuplicateField):
			httpx.LogStatusMsg(w, r, http.StatusBadRequest, log.DebugLevel,
				"db.update_form.fields", "Field ids must be unique")
			return
		case err != nil:
			httpx.LogInternalError(w, r, "db.update_form", err)
			return
		}

		updated, err := app.Store.GetForm(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
			"form":    updated,
		})
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		err := app.Store.DeleteForm(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.delete_form", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
			"message": "Form deleted successfully",
		})
	}
}

func TogglePublish(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		published, publishedAt, err := app.Store.TogglePublish(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.toggle_publish", err)
			return
		}

		state := "unpublished"
		if published {
			state = "published"
		}
		render.JSON(w, r, map[string]any{
			"success":     true,
			"message":     "Form is now " + state,
			"published":   published,
			"publishedAt": publishedAt,
		})
	}
}

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		responses, err := app.Store.ListResponses(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
			"data":    responses,
		})
	}
}

func CountResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		count, err := app.Store.CountResponses(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.count_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
			"count":   count,
		})
	}
}

func ClearResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		deleted, err := app.Store.DeleteResponses(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.delete_responses", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"success": true,
			"message": "All responses deleted",
			"deleted": deleted,
		})
	}
}

func ExportResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r)
		if !ok {
			return
		}

		responses, err := app.Store.ListResponses(r.Context(), form.ID)
		if err != nil {
			httpx.LogInternalError(w, r, "db.get_responses", err)
			return
		}

		csv, err := export.CSV(responses)
		if err != nil {
			httpx.LogInternalError(w, r, "export.csv", err)
			return
		}

		w.Header().Set("content-type", "text/csv; charset=utf-8")
		w.Header().Set("content-disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
		_, err = w.Write(csv)
		if err != nil {
			log.Debugf("export.csv.write: %s", err)
		}
	}
}
