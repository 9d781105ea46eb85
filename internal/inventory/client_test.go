package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{ClientID: "id", ClientSecret: "secret"})
	assert.ErrorIs(t, err, ErrConfigInvalid)
	_, err = NewClient(Config{BaseURL: "https://shop.stoqflow.com"})
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestBasicAuth(t *testing.T) {
	assert.Equal(t, "aWQ6c2VjcmV0", BasicAuth("id", "secret"))
}

func TestClientRoutesAndAuth(t *testing.T) {
	var created ProductInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Basic aWQ6c2VjcmV0", r.Header.Get("Authorization"))
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/company":
			_, _ = w.Write([]byte(`{"_id":"c1","brands":[{"_id":"b1","shops":[{"_id":"s1"}]}]}`))
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/products":
			assert.Equal(t, "*", r.URL.Query().Get("fields"))
			if r.URL.Query().Get("sku") == "prodKnown" {
				_, _ = w.Write([]byte(`[{"_id":"p9","sku":"prodKnown"}]`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/products":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			_, _ = w.Write([]byte(`{"_id":"p10"}`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/v2/products/p10":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.String())
		}
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL + "/", ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	ctx := context.Background()

	company, err := client.GetCompany(ctx)
	require.NoError(t, err)
	require.Len(t, company.Brands, 1)
	assert.Equal(t, "s1", company.Brands[0].Shops[0].ID)

	found, err := client.FindProductBySKU(ctx, "prodKnown")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "p9", found.ID)

	missing, err := client.FindProductBySKU(ctx, "prodOther")
	require.NoError(t, err)
	assert.Nil(t, missing)

	price := 24.95
	id, err := client.CreateProduct(ctx, ProductInput{SKU: "prodNew", Name: "Boek", RetailPrice: &price, BrandID: "b1"})
	require.NoError(t, err)
	assert.Equal(t, "p10", id)
	assert.Equal(t, "basic", created.Type)

	require.NoError(t, client.SetCustomFields(ctx, "p10", []CustomField{{Key: "stripe_product_id", Value: "prod_New"}}))
}

func TestHTTPErrorMessages(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   string
	}{
		{http.StatusBadRequest, `{"message":"sku taken","error":"conflict"}`, "HTTP 400: sku taken"},
		{http.StatusUnauthorized, `{"error":"bad credentials"}`, "HTTP 401: bad credentials"},
		{http.StatusBadGateway, `upstream down`, "HTTP 502: upstream down"},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(tc.body))
		}))
		client, err := NewClient(Config{BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})
		require.NoError(t, err)
		err = client.UpdateProduct(context.Background(), "p1", ProductUpdate{Name: "x"})
		srv.Close()
		require.Error(t, err)
		assert.Equal(t, tc.want, err.Error())
		assert.False(t, errors.Is(err, ErrRateLimited))
	}
}

func TestRateLimitedIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"slow down"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret"})
	require.NoError(t, err)
	_, err = client.FindProductBySKU(context.Background(), "x")
	assert.ErrorIs(t, err, ErrRateLimited)
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
}
