package leads

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/leadflow/internal/tenancy"
	"github.com/wolfman30/leadflow/pkg/logging"
)

const (
	ownerA = "user-a"
	ownerB = "user-b"
)

func newTestRouter(t *testing.T) (*chi.Mux, *InMemoryRepository) {
	t.Helper()
	repo := NewInMemoryRepository()
	service := NewService(repo, nil, logging.Default())
	handler := NewHandler(service, logging.Default())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if user := req.Header.Get("X-Test-User"); user != "" {
				req = req.WithContext(tenancy.WithUserID(req.Context(), user))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/api/leads", handler.Routes)
	return r, repo
}

func doRequest(t *testing.T, h http.Handler, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func leadBody(email string, score int) map[string]any {
	return map[string]any{
		"first_name": "Ada",
		"last_name":  "Lovelace",
		"email":      email,
		"phone":      "5551234567",
		"company":    "Analytical Engines",
		"city":       "London",
		"state":      "Greater London",
		"source":     "website",
		"score":      score,
	}
}

type leadEnvelope struct {
	Success bool   `json:"success"`
	Data    Lead   `json:"data"`
	Message string `json:"message"`
}

func decodeLead(t *testing.T, w *httptest.ResponseRecorder) leadEnvelope {
	t.Helper()
	var env leadEnvelope
	require.NoError(t, json.NewDecoder(w.Body).Decode(&env))
	return env
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	msg, _ := body["message"].(string)
	return msg
}

func TestCreateLead_Success(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, leadBody("ADA@Example.com ", 42))
	require.Equal(t, http.StatusCreated, w.Code)

	env := decodeLead(t, w)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.Data.ID)
	assert.Equal(t, ownerA, env.Data.UserID)
	assert.Equal(t, "ada@example.com", env.Data.Email)
	assert.Equal(t, DefaultStatus, env.Data.Status)
	assert.Equal(t, 42, env.Data.Score)
	assert.Nil(t, env.Data.LastActivityAt)
}

func TestCreateLead_ValidationError(t *testing.T) {
	r, _ := newTestRouter(t)

	body := leadBody("ada@example.com", 10)
	body["first_name"] = "  "
	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "First name is required", decodeMessage(t, w))
}

func TestCreateLead_InvalidSource(t *testing.T) {
	r, _ := newTestRouter(t)

	body := leadBody("ada@example.com", 10)
	body["source"] = "carrier_pigeon"
	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeMessage(t, w), "Invalid source")
}

func TestCreateLead_DuplicateEmail(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, leadBody("ada@example.com", 10))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodPost, "/api/leads", ownerB, leadBody("ada@example.com", 20))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Email already exists", decodeMessage(t, w))
}

func TestCreateLead_InvalidBody(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewBufferString("{not json"))
	req.Header.Set("X-Test-User", ownerA)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeads_RequireOwner(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListLeads_FiltersAndPaginates(t *testing.T) {
	r, _ := newTestRouter(t)

	for i, score := range []int{10, 50, 90} {
		email := []string{"a@example.com", "b@example.com", "c@example.com"}[i]
		w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, leadBody(email, score))
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerB, leadBody("other@example.com", 99))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/leads?score_gt=40&page=2&limit=1", ownerA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListLeadsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 1, resp.Limit)
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 2, resp.TotalPages)
	require.Len(t, resp.Data, 1)
	assert.Greater(t, resp.Data[0].Score, 40)
	assert.Equal(t, ownerA, resp.Data[0].UserID)
}

func TestListLeads_DefaultsAndEmptyPage(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodGet, "/api/leads?page=abc&limit=-5", ownerA, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ListLeadsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 20, resp.Limit)
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, 0, resp.TotalPages)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestGetLead_OwnershipAndInvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, leadBody("ada@example.com", 10))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeLead(t, w).Data.ID

	w = doRequest(t, r, http.MethodGet, "/api/leads/"+id, ownerA, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decodeLead(t, w).Data.ID)

	w = doRequest(t, r, http.MethodGet, "/api/leads/"+id, ownerB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Lead not found", decodeMessage(t, w))

	w = doRequest(t, r, http.MethodGet, "/api/leads/not-a-uuid", ownerA, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateLead_StampsLastActivity(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, leadBody("ada@example.com", 10))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeLead(t, w).Data.ID

	w = doRequest(t, r, http.MethodPut, "/api/leads/"+id, ownerA, map[string]any{
		"status": "qualified",
		"score":  77,
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated := decodeLead(t, w).Data
	assert.Equal(t, "qualified", updated.Status)
	assert.Equal(t, 77, updated.Score)
	assert.Equal(t, "Ada", updated.FirstName)
	require.NotNil(t, updated.LastActivityAt)

	w = doRequest(t, r, http.MethodPut, "/api/leads/"+id, ownerA, map[string]any{"score": 101})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodPut, "/api/leads/"+id, ownerB, map[string]any{"score": 5})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteLead(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/api/leads", ownerA, leadBody("ada@example.com", 10))
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeLead(t, w).Data.ID

	w = doRequest(t, r, http.MethodDelete, "/api/leads/"+id, ownerB, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(t, r, http.MethodDelete, "/api/leads/"+id, ownerA, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lead deleted successfully", decodeMessage(t, w))

	w = doRequest(t, r, http.MethodGet, "/api/leads/"+id, ownerA, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
