package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"openmat-france/backend/internal/config"
	"openmat-france/backend/internal/domain/openmat"
	"openmat-france/backend/internal/geocode"
	apihttp "openmat-france/backend/internal/http"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	mats []openmat.OpenMat
	err  error
}

func (s *stubGateway) List(context.Context) ([]openmat.OpenMat, error) {
	return s.mats, s.err
}

func (s *stubGateway) Get(_ context.Context, id string) (*openmat.OpenMat, error) {
	for i := range s.mats {
		if s.mats[i].ID == id {
			return &s.mats[i], nil
		}
	}
	return nil, fmt.Errorf("%w: open mat %s", openmat.ErrNotFound, id)
}

func (s *stubGateway) Create(_ context.Context, m openmat.OpenMat) (*openmat.OpenMat, error) {
	return &m, nil
}

type stubMirror struct{ mats []openmat.OpenMat }

func (s *stubMirror) SaveOpenMats(_ context.Context, mats []openmat.OpenMat) error {
	s.mats = mats
	return nil
}

func (s *stubMirror) GetOpenMats(context.Context) ([]openmat.OpenMat, error) {
	return s.mats, nil
}

type stubSearcher struct{ items []geocode.Suggestion }

func (s *stubSearcher) Search(context.Context, string, int) ([]geocode.Suggestion, error) {
	return s.items, nil
}

func newTestRouter(gw *stubGateway) http.Handler {
	svc := openmat.NewService(gw, &stubMirror{}, zerolog.Nop())
	return apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:        config.Config{AllowedOrigins: []string{"*"}},
		Log:        zerolog.Nop(),
		OpenMatSvc: svc,
		Suggester:  geocode.NewSuggester(&stubSearcher{items: []geocode.Suggestion{{Label: "12 Rue de la Paix 75002 Paris"}}}),
	})
}

func parisMats(n int) []openmat.OpenMat {
	out := make([]openmat.OpenMat, n)
	for i := range out {
		out[i] = openmat.OpenMat{ID: fmt.Sprintf("m%d", i), ClubName: "Club", City: "Paris", Date: "2024-05-01"}
	}
	return out
}

func TestListOpenMatsPaginates(t *testing.T) {
	router := newTestRouter(&stubGateway{mats: parisMats(7)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/open-mats?city=Paris&page=2", nil))
	require.Equal(t, 200, rec.Code)

	var out struct {
		Items     []openmat.OpenMat `json:"items"`
		Page      int               `json:"page"`
		PageCount int               `json:"pageCount"`
		Total     int               `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Len(t, out.Items, 1)
	assert.Equal(t, 2, out.Page)
	assert.Equal(t, 2, out.PageCount)
	assert.Equal(t, 7, out.Total)
}

func TestListOpenMatsInvalidPageDefaultsToFirst(t *testing.T) {
	router := newTestRouter(&stubGateway{mats: parisMats(7)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/open-mats?page=banana", nil))
	require.Equal(t, 200, rec.Code)

	var out struct {
		Page  int `json:"page"`
		Items []openmat.OpenMat
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Page)
}

func TestGetOpenMatNotFound(t *testing.T) {
	router := newTestRouter(&stubGateway{mats: parisMats(1)})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/open-mats/ghost", nil))
	assert.Equal(t, 404, rec.Code)

	var out apihttp.APIError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Message, "not found")
}

func TestListOpenMatsServesMirrorWhenBackendDown(t *testing.T) {
	gw := &stubGateway{err: errors.New("backend down")}
	mirror := &stubMirror{mats: parisMats(2)}
	svc := openmat.NewService(gw, mirror, zerolog.Nop())
	router := apihttp.NewRouter(apihttp.RouterDeps{
		Log:        zerolog.Nop(),
		OpenMatSvc: svc,
		Suggester:  geocode.NewSuggester(&stubSearcher{}),
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/open-mats", nil))
	require.Equal(t, 200, rec.Code)

	var out struct {
		Items   []openmat.OpenMat `json:"items"`
		Offline bool              `json:"offline"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.Offline)
	assert.Len(t, out.Items, 2)
}

func TestGeocodeEndpoint(t *testing.T) {
	router := newTestRouter(&stubGateway{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/v1/geocode?q=12+rue+de+la+paix", nil))
	require.Equal(t, 200, rec.Code)

	var out struct {
		Items []geocode.Suggestion `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Items, 1)
	assert.Equal(t, "12 Rue de la Paix 75002 Paris", out.Items[0].Label)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(&stubGateway{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/v1/open-mats", nil))
	assert.Equal(t, 401, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(&stubGateway{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}
