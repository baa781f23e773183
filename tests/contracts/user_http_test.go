package contracts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	userApp "github.com/davicafu/knowledgenest/internal/user/application"
	userHttp "github.com/davicafu/knowledgenest/internal/user/infra/inbound/http"
	"github.com/davicafu/knowledgenest/tests/mocks"
)

// userHTTPResponse define el formato que esperamos en las respuestas JSON.
type userHTTPResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func newUserRouter(pub *mocks.MockPublisher) *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := mocks.NewInMemoryUserRepo()
	cache := mocks.NewDummyCache()
	service := userApp.NewUserService(repo, cache, pub, zap.NewNop())

	router := gin.New()
	userHttp.RegisterUserRoutes(router, userHttp.NewUserHandler(service))
	return router
}

func TestRegisterUser_HTTPContract(t *testing.T) {
	pub := &mocks.MockPublisher{}
	router := newUserRouter(pub)

	body, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "supersecret",
		"name":     "Test User",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp userHTTPResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, "test@example.com", resp.Email)
	assert.Equal(t, "Test User", resp.Name)

	// El hash de la contraseña nunca viaja en la respuesta.
	assert.NotContains(t, rec.Body.String(), "password_hash")
	assert.NotContains(t, rec.Body.String(), "supersecret")

	// Email duplicado -> 409
	req2 := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	assert.Equal(t, http.StatusConflict, rec2.Code)

	// Solo el alta correcta publicó evento.
	assert.Len(t, pub.Published, 1)
}

func TestRegisterUser_ValidationErrors(t *testing.T) {
	router := newUserRouter(&mocks.MockPublisher{})

	cases := []map[string]string{
		{"email": "not-an-email", "password": "supersecret"},
		{"email": "test@example.com", "password": "short"},
		{"password": "supersecret"},
	}
	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestGetUser_HTTPContract(t *testing.T) {
	router := newUserRouter(&mocks.MockPublisher{})

	body, _ := json.Marshal(map[string]string{
		"email":    "test@example.com",
		"password": "supersecret",
		"name":     "Test User",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Usuario existente
	req2 := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)

	assert.Equal(t, http.StatusOK, rec2.Code)

	var resp userHTTPResponse
	require.NoError(t, json.Unmarshal(rec2.Body.Bytes(), &resp))
	assert.Equal(t, "test@example.com", resp.Email)

	// Usuario inexistente -> 404
	req3 := httptest.NewRequest(http.MethodGet, "/users/99", nil)
	rec3 := httptest.NewRecorder()
	router.ServeHTTP(rec3, req3)

	assert.Equal(t, http.StatusNotFound, rec3.Code)
	assert.Contains(t, rec3.Body.String(), "user not found")
}
