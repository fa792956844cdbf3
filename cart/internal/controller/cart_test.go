package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/storefront/cart/internal/mirror"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/backend"
	"github.com/Alturino/storefront/internal/common"
	"github.com/Alturino/storefront/internal/common/constants"
)

const secret = "secret"

type fakeBackend struct {
	envelope backend.Envelope
	err      error
	calls    int
}

func (f *fakeBackend) Post(context.Context, string, any) (backend.Envelope, error) {
	f.calls++
	return f.envelope, f.err
}

type envelope struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       struct {
		Cart struct {
			Items []struct {
				ID       response.ProductID `json:"id"`
				Quantity int                `json:"quantity"`
			} `json:"items"`
			TotalPrice    decimal.Decimal `json:"totalPrice"`
			TotalQuantity int             `json:"totalQuantity"`
		} `json:"cart"`
	} `json:"data"`
}

func newRouter(b *fakeBackend) *mux.Router {
	router := mux.NewRouter()
	AttachCartController(router, service.NewCartService(mirror.NewMemory(), "carts", b), secret)
	return router
}

func do(t *testing.T, router http.Handler, method string, path string, body string, header map[string]string) (int, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	resp := envelope{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestCartRoutes(t *testing.T) {
	router := newRouter(&fakeBackend{})
	base := "/carts/" + uuid.NewString()
	product := `{"id":1,"name":"Mug","price":10,"imageUrl":"mug.png","description":"a mug"}`

	code, resp := do(t, router, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data.Cart.Items)

	for i := 0; i < 3; i++ {
		code, resp = do(t, router, http.MethodPost, base+"/items", product, nil)
		require.Equal(t, http.StatusOK, code)
	}
	require.Len(t, resp.Data.Cart.Items, 1)
	assert.Equal(t, response.ProductID("1"), resp.Data.Cart.Items[0].ID)
	assert.Equal(t, 3, resp.Data.Cart.Items[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(resp.Data.Cart.TotalPrice))

	code, resp = do(t, router, http.MethodPost, base+"/items/increment", `{"id":"2","price":"1.5"}`, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, resp.Data.Cart.Items, 2)

	for i := 0; i < 3; i++ {
		code, resp = do(t, router, http.MethodPost, base+"/items/1/decrement", "", nil)
		require.Equal(t, http.StatusOK, code)
	}
	require.Len(t, resp.Data.Cart.Items, 1)
	assert.Equal(t, response.ProductID("2"), resp.Data.Cart.Items[0].ID)

	code, resp = do(t, router, http.MethodDelete, base+"/items/2", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data.Cart.Items)

	_, _ = do(t, router, http.MethodPost, base+"/items", product, nil)
	code, resp = do(t, router, http.MethodDelete, base, "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, resp.Data.Cart.Items)
}

func TestCartRoutesRejectInvalidInput(t *testing.T) {
	router := newRouter(&fakeBackend{})
	base := "/carts/" + uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{name: "given invalid session should return bad request", method: http.MethodGet, path: "/carts/not-a-uuid"},
		{name: "given malformed body should return bad request", method: http.MethodPost, path: base + "/items", body: `{"id":`},
		{name: "given missing id should return bad request", method: http.MethodPost, path: base + "/items", body: `{"name":"Mug","price":1}`},
		{name: "given negative price should return bad request", method: http.MethodPost, path: base + "/items/increment", body: `{"id":"1","price":-1}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, resp := do(t, router, test.method, test.path, test.body, nil)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, "failed", resp.Status)
		})
	}

	_, resp := do(t, router, http.MethodGet, base, "", nil)
	assert.Empty(t, resp.Data.Cart.Items)
}

func TestCheckoutRoute(t *testing.T) {
	token, err := common.SignToken(secret, "user-1", constants.RoleUser, time.Hour)
	require.NoError(t, err)
	auth := map[string]string{constants.HeaderAuthorization: "Bearer " + token}
	product := `{"id":1,"name":"Mug","price":10}`

	tests := []struct {
		name         string
		backend      *fakeBackend
		header       map[string]string
		fill         bool
		expectedCode int
		expectedMsg  string
		expectedLen  int
	}{
		{
			name:         "given no token should return unauthorized",
			backend:      &fakeBackend{},
			fill:         true,
			expectedCode: http.StatusUnauthorized,
			expectedLen:  1,
		},
		{
			name:         "given empty cart should return bad request",
			backend:      &fakeBackend{},
			header:       auth,
			expectedCode: http.StatusBadRequest,
			expectedMsg:  "cart is empty",
		},
		{
			name:         "given backend success should clear cart",
			backend:      &fakeBackend{envelope: backend.Envelope{Status: 200, Message: "Order was successfully placed"}},
			header:       auth,
			fill:         true,
			expectedCode: http.StatusOK,
			expectedMsg:  "Order was successfully placed",
			expectedLen:  0,
		},
		{
			name:         "given backend rejection should surface message and keep cart",
			backend:      &fakeBackend{err: &backend.Error{StatusCode: 404, Message: "Product Not Found"}},
			header:       auth,
			fill:         true,
			expectedCode: http.StatusNotFound,
			expectedMsg:  "Product Not Found",
			expectedLen:  1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router := newRouter(test.backend)
			base := "/carts/" + uuid.NewString()
			if test.fill {
				_, _ = do(t, router, http.MethodPost, base+"/items", product, nil)
			}

			code, resp := do(t, router, http.MethodPost, base+"/checkout", "", test.header)

			assert.Equal(t, test.expectedCode, code)
			if test.expectedMsg != "" {
				assert.Equal(t, test.expectedMsg, resp.Message)
			}
			_, cart := do(t, router, http.MethodGet, base, "", nil)
			assert.Len(t, cart.Data.Cart.Items, test.expectedLen)
		})
	}
}
