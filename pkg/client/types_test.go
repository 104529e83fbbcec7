package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The SDK surface must be expressible with names exported from this
// package alone; a consumer cannot import the server's internal packages.
func TestSDKSurfaceUsesExportedTypes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok",
			"user":  User{ID: "u1", Username: "alice", Role: RoleCustomer},
		})
	})
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Product{{ID: "p1", Title: "Shirt"}})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := New(srv.URL, WithCartPath(filepath.Join(t.TempDir(), "cart.json")))
	require.NoError(t, err)

	var user *User
	user, err = c.Login(context.Background(), "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, user.Role)

	var products []Product
	products, err = c.Products(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, products, 1)

	var snap CartSnapshot
	snap, err = c.AddToCart(context.Background(), AddToCartRequest{ProductID: products[0].ID, Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalItems())
}
