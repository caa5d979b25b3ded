package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crosspay_back/models"
	"crosspay_back/pkg/apperr"
	"crosspay_back/pkg/service"
)

type fakeAuthService struct{}

func (fakeAuthService) Login(_ context.Context, user models.User) (models.User, error) {
	return user, nil
}

func (fakeAuthService) GetUser(_ context.Context, id int64) (models.User, error) {
	if id == 404 {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	return models.User{ID: id, Username: "alice"}, nil
}

// fakeRegistryService запоминает скоуп, с которым его позвали
type fakeRegistryService struct {
	lastScope models.Scope
}

func (f *fakeRegistryService) CreateSingleKey(_ context.Context, scope models.Scope, _ models.CreateChainWalletInput) (models.CreatedChainWallet, error) {
	f.lastScope = scope
	return models.CreatedChainWallet{}, nil
}

func (f *fakeRegistryService) CreateMultisig(_ context.Context, scope models.Scope, _ models.CreateMultisigInput) (models.ChainWallet, error) {
	f.lastScope = scope
	return models.ChainWallet{}, nil
}

func (f *fakeRegistryService) Get(_ context.Context, _ int64, scope models.Scope) (models.ChainWallet, error) {
	f.lastScope = scope
	return models.ChainWallet{}, nil
}

func (f *fakeRegistryService) List(_ context.Context, scope models.Scope) ([]models.ChainWallet, error) {
	f.lastScope = scope
	return nil, nil
}

func (f *fakeRegistryService) SetActive(_ context.Context, _ int64, scope models.Scope, _ bool) (models.ChainWallet, error) {
	f.lastScope = scope
	return models.ChainWallet{}, nil
}

func testRouter(registry *fakeRegistryService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(&service.Service{
		Authorization:       fakeAuthService{},
		ChainWalletRegistry: registry,
	})
	return h.InitRoute([]string{"http://localhost"})
}

func get(router *gin.Engine, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetMeRequiresIdentityHeader(t *testing.T) {
	router := testRouter(&fakeRegistryService{})

	assert.Equal(t, http.StatusUnauthorized, get(router, "/auth/me", nil).Code)
}

func TestGetMeUsesHeaderIdentity(t *testing.T) {
	router := testRouter(&fakeRegistryService{})

	// user_id в query не подменяет идентичность из заголовка
	resp := get(router, "/auth/me?user_id=999", map[string]string{"X-User-ID": "7"})
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		User models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.EqualValues(t, 7, body.User.ID)
}

func TestScopeIgnoresQueryTeam(t *testing.T) {
	registry := &fakeRegistryService{}
	router := testRouter(registry)

	// чужой team_id в query не расширяет скоуп
	resp := get(router, "/api/chain-wallets/?team_id=9", map[string]string{"X-User-ID": "1"})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, registry.lastScope.UserID)
	assert.Nil(t, registry.lastScope.TeamID)
}

func TestScopeFromTeamHeader(t *testing.T) {
	registry := &fakeRegistryService{}
	router := testRouter(registry)

	resp := get(router, "/api/chain-wallets/", map[string]string{"X-User-ID": "1", "X-Team-ID": "9"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NotNil(t, registry.lastScope.TeamID)
	assert.EqualValues(t, 9, *registry.lastScope.TeamID)
}
