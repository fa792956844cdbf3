package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/internal/backend"
	"github.com/Alturino/storefront/internal/common"
	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/listing/internal/service"
)

const secret = "secret"

type fakeFetcher struct {
	envelopes map[string]backend.Envelope
	err       error
	role      string
}

func (f *fakeFetcher) Role(context.Context) (string, error) {
	return f.role, nil
}

func (f *fakeFetcher) Get(_ context.Context, path string, _ url.Values) (backend.Envelope, error) {
	if f.err != nil {
		return backend.Envelope{}, f.err
	}
	return f.envelopes[path], nil
}

type listEnvelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       map[string]struct {
		Items        []json.RawMessage `json:"items"`
		Page         int               `json:"page"`
		TotalPages   int               `json:"totalPages"`
		TotalItems   int               `json:"totalItems"`
		ItemsPerPage int               `json:"itemsPerPage"`
		FilterKey    string            `json:"filterKey"`
	} `json:"data"`
}

func newRouter(f *fakeFetcher) *mux.Router {
	router := mux.NewRouter()
	AttachListingController(router, service.NewListingService(f, nil, time.Minute), secret, f)
	return router
}

func bearer(t *testing.T, role string) string {
	token, err := common.SignToken(secret, "user-1", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func get(t *testing.T, router http.Handler, path string, authorization string) (int, listEnvelope) {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(constants.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := listEnvelope{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func fixture() *fakeFetcher {
	productList := make([]backend.Product, 0, 23)
	for i := 1; i <= 23; i++ {
		productList = append(productList, backend.Product{ID: int64(i), Name: "p"})
	}
	return &fakeFetcher{envelopes: map[string]backend.Envelope{
		backend.PathProductGetAll:              {ProductList: productList},
		backend.PathProductGetByCategory + "2": {ProductList: productList[:3]},
		backend.PathCategoryGetAll:             {CategoryList: []backend.Category{{ID: 1, Name: "Mugs"}}},
		backend.PathOrderFilter: {OrderItemList: []backend.OrderItem{
			{ID: 1, Status: backend.OrderStatusPending},
			{ID: 2, Status: backend.OrderStatusShipped},
		}},
		backend.PathUserMyInfo: {User: &backend.User{OrderItemList: []backend.OrderItem{{ID: 9}}}},
	}}
}

func TestListingRoutes(t *testing.T) {
	router := newRouter(fixture())
	user := bearer(t, constants.RoleUser)
	admin := bearer(t, constants.RoleAdmin)

	tests := []struct {
		name               string
		path               string
		authorization      string
		expectedStatusCode int
		expectedData       string
		expectedPage       int
		expectedTotalItems int
		expectedFilterKey  string
	}{
		{
			name:               "given products page 3 should return last page",
			path:               "/products?page=3",
			expectedStatusCode: http.StatusOK,
			expectedData:       "products",
			expectedPage:       3,
			expectedTotalItems: 23,
		},
		{
			name:               "given category should list its products",
			path:               "/categories/2/products",
			expectedStatusCode: http.StatusOK,
			expectedData:       "products",
			expectedPage:       1,
			expectedTotalItems: 3,
			expectedFilterKey:  "category=2",
		},
		{
			name:               "given categories should list them",
			path:               "/categories",
			expectedStatusCode: http.StatusOK,
			expectedData:       "categories",
			expectedPage:       1,
			expectedTotalItems: 1,
		},
		{
			name:               "given admin should list orders by status",
			path:               "/admin/orders?status=shipped&page=4",
			authorization:      admin,
			expectedStatusCode: http.StatusOK,
			expectedData:       "orders",
			expectedPage:       1,
			expectedTotalItems: 1,
			expectedFilterKey:  "status=SHIPPED&searchStatus=",
		},
		{
			name:               "given admin should list products",
			path:               "/admin/products",
			authorization:      admin,
			expectedStatusCode: http.StatusOK,
			expectedData:       "products",
			expectedPage:       1,
			expectedTotalItems: 23,
		},
		{
			name:               "given user should list own orders",
			path:               "/users/me/orders",
			authorization:      user,
			expectedStatusCode: http.StatusOK,
			expectedData:       "orders",
			expectedPage:       1,
			expectedTotalItems: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, resp := get(t, router, test.path, test.authorization)

			require.Equal(t, test.expectedStatusCode, code)
			list, ok := resp.Data[test.expectedData]
			require.True(t, ok)
			assert.Equal(t, test.expectedPage, list.Page)
			assert.Equal(t, test.expectedTotalItems, list.TotalItems)
			assert.Equal(t, test.expectedFilterKey, list.FilterKey)
		})
	}
}

func TestAdminRoutesResolveRoleOfBackendTokens(t *testing.T) {
	token := bearer(t, "")

	tests := []struct {
		name               string
		role               string
		expectedStatusCode int
	}{
		{name: "given backend admin should list orders", role: constants.RoleAdmin, expectedStatusCode: http.StatusOK},
		{name: "given backend user should return forbidden", role: constants.RoleUser, expectedStatusCode: http.StatusForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := fixture()
			f.role = test.role

			code, resp := get(t, newRouter(f), "/admin/orders", token)

			assert.Equal(t, test.expectedStatusCode, code)
			assert.Equal(t, test.expectedStatusCode, resp.StatusCode)
		})
	}
}

func TestListingFailures(t *testing.T) {
	router := newRouter(fixture())
	user := bearer(t, constants.RoleUser)
	admin := bearer(t, constants.RoleAdmin)

	tests := []struct {
		name               string
		router             http.Handler
		path               string
		authorization      string
		expectedStatusCode int
	}{
		{name: "given non numeric page should return bad request", router: router, path: "/products?page=x", expectedStatusCode: http.StatusBadRequest},
		{name: "given negative page should return bad request", router: router, path: "/products?page=-1", expectedStatusCode: http.StatusBadRequest},
		{name: "given non numeric category should return bad request", router: router, path: "/categories/x/products", expectedStatusCode: http.StatusBadRequest},
		{name: "given unknown status should return bad request", router: router, path: "/admin/orders?status=lost", authorization: admin, expectedStatusCode: http.StatusBadRequest},
		{name: "given user on admin route should return forbidden", router: router, path: "/admin/orders", authorization: user, expectedStatusCode: http.StatusForbidden},
		{name: "given anonymous profile should return unauthorized", router: router, path: "/users/me/orders", expectedStatusCode: http.StatusUnauthorized},
		{
			name:               "given backend outage should return bad gateway",
			router:             newRouter(&fakeFetcher{err: &backend.Error{StatusCode: http.StatusServiceUnavailable, Message: "down"}}),
			path:               "/products",
			expectedStatusCode: http.StatusBadGateway,
		},
		{
			name:               "given backend rejection should pass its status through",
			router:             newRouter(&fakeFetcher{err: &backend.Error{StatusCode: http.StatusNotFound, Message: "no such category"}}),
			path:               "/categories/5/products",
			expectedStatusCode: http.StatusNotFound,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, resp := get(t, test.router, test.path, test.authorization)

			assert.Equal(t, test.expectedStatusCode, code)
			assert.Equal(t, test.expectedStatusCode, resp.StatusCode)
			assert.Equal(t, "failed", resp.Status)
		})
	}
}
