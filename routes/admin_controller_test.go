package routes_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickform/quickform/model"
	"github.com/quickform/quickform/routes"
	"github.com/quickform/quickform/routes/middlewares"
)

// adminRequest builds a request as it looks after the auth middleware:
// user id in context, form id bound as a route param.
func adminRequest(method, target, userID string, formID int, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("content-type", "application/json")
	req = req.WithContext(middlewares.WithUserID(req.Context(), userID))

	if formID > 0 {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", strconv.Itoa(formID))
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	return req
}

func TestCreateForm(t *testing.T) {
	a := testApp(t)

	req := adminRequest("POST", "/api/admin/forms", "u1", 0, strings.NewReader(`{
		"title": "Feedback",
		"description": "d",
		"fields": [
			{"label": "Name", "type": "text", "required": true},
			{"label": "Rating", "type": "dropdown", "options": ["1","2"]}
		]
	}`))
	w := httptest.NewRecorder()
	routes.CreateForm(a)(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := envelope(t, w)
	assert.Equal(t, true, body["success"])
	formID := int(body["formId"].(float64))

	form, err := a.Store.GetForm(context.Background(), formID)
	require.NoError(t, err)
	assert.Equal(t, "u1", form.UserID)
	require.Len(t, form.Fields, 2)
	assert.NotEmpty(t, form.Fields[0].ID)
}

func TestCreateFormRejectsBadFields(t *testing.T) {
	a := testApp(t)

	for name, body := range map[string]string{
		"missing title":  `{"fields":[]}`,
		"unlabeled":      `{"title":"t","fields":[{"type":"text"}]}`,
		"unknown type":   `{"title":"t","fields":[{"label":"x","type":"slider"}]}`,
		"malformed json": `{"title":`,
	} {
		req := adminRequest("POST", "/api/admin/forms", "u1", 0, strings.NewReader(body))
		w := httptest.NewRecorder()
		routes.CreateForm(a)(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}
}

func TestGetFormScopedToOwner(t *testing.T) {
	a := testApp(t)
	id := publishedForm(t, a) // owned by u1

	req := adminRequest("GET", "/api/admin/forms/1", "u2", id, nil)
	w := httptest.NewRecorder()
	routes.GetFormById(a)(w, req)

	// someone else's form is indistinguishable from a missing one
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTogglePublishEndpoint(t *testing.T) {
	a := testApp(t)

	formID, err := a.Store.CreateForm(context.Background(), &model.Form{UserID: "u1", Title: "My Form"})
	require.NoError(t, err)

	req := adminRequest("PATCH", "/api/admin/forms/1/toggle-publish", "u1", formID, nil)
	w := httptest.NewRecorder()
	routes.TogglePublish(a)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := envelope(t, w)
	assert.Equal(t, "Form is now published", body["message"])
	assert.Equal(t, true, body["published"])
	assert.Contains(t, body["publishedAt"], "/publishedForm/My-Form/")
}

func TestClearResponsesEndpoint(t *testing.T) {
	a := testApp(t)
	id := publishedForm(t, a)

	_, err := a.Store.CreateResponse(context.Background(), id, []model.FieldAnswer{
		{Label: "Name", Value: model.TextValue("Alice")},
	})
	require.NoError(t, err)

	req := adminRequest("DELETE", "/api/admin/forms/1/responses", "u1", id, nil)
	w := httptest.NewRecorder()
	routes.ClearResponses(a)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := envelope(t, w)
	assert.EqualValues(t, 1, body["deleted"])

	count, err := a.Store.CountResponses(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountResponsesEndpoint(t *testing.T) {
	a := testApp(t)
	id := publishedForm(t, a)

	req := adminRequest("GET", "/api/admin/forms/1/responses/count", "u1", id, nil)
	w := httptest.NewRecorder()
	routes.CountResponses(a)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := envelope(t, w)
	assert.EqualValues(t, 0, body["count"])
}

func TestExportResponsesEndpoint(t *testing.T) {
	a := testApp(t)
	id := publishedForm(t, a)

	_, err := a.Store.CreateResponse(context.Background(), id, []model.FieldAnswer{
		{Label: "Name", Value: model.TextValue("Alice")},
		{Label: "Age", Value: model.TextValue("30")},
	})
	require.NoError(t, err)

	req := adminRequest("GET", "/api/admin/forms/1/responses/export", "u1", id, nil)
	w := httptest.NewRecorder()
	routes.ExportResponses(a)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("content-type"), "text/csv")
	assert.Contains(t, w.Header().Get("content-disposition"), "form-responses-")
	assert.Contains(t, w.Header().Get("content-disposition"), ".csv")

	lines := strings.Split(strings.TrimRight(w.Body.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Submitted At,Name,Age", lines[0])
	assert.Contains(t, lines[1], "Alice")
}

func TestUpdateFormConflict(t *testing.T) {
	a := testApp(t)
	id := publishedForm(t, a)

	// first edit bumps the version
	req := adminRequest("PUT", "/api/admin/forms/1", "u1", id, strings.NewReader(`{"version":1,"title":"Edited"}`))
	w := httptest.NewRecorder()
	routes.UpdateForm(a)(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// a stale second edit loses
	req = adminRequest("PUT", "/api/admin/forms/1", "u1", id, strings.NewReader(`{"version":1,"title":"Stale"}`))
	w = httptest.NewRecorder()
	routes.UpdateForm(a)(w, req)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteFormEndpointCascades(t *testing.T) {
	a := testApp(t)
	id := publishedForm(t, a)
	_, err := a.Store.CreateResponse(context.Background(), id, []model.FieldAnswer{
		{Label: "Name", Value: model.TextValue("Alice")},
	})
	require.NoError(t, err)

	req := adminRequest("DELETE", "/api/admin/forms/1", "u1", id, nil)
	w := httptest.NewRecorder()
	routes.DeleteForm(a)(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	count, err := a.Store.CountResponses(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListFormsEndpoint(t *testing.T) {
	a := testApp(t)
	publishedForm(t, a)
	publishedForm(t, a)

	req := adminRequest("GET", "/api/admin/forms", "u1", 0, nil)
	w := httptest.NewRecorder()
	routes.ListForms(a)(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool         `json:"success"`
		Forms   []model.Form `json:"forms"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Forms, 2)
}
