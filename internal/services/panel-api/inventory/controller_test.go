package inventory

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NordCoder/netpanel/internal/domain/inventory"
	"github.com/NordCoder/netpanel/internal/repository/memory"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_List(t *testing.T) {
	repo := memory.NewInventoryRepo()
	for i := 1; i <= 5; i++ {
		repo.Add(inventory.Item{DeviceID: 1, Index: i, Class: "port", Name: "Gi0/" + string(rune('0'+i))})
	}
	mux := runtime.NewServeMux()
	require.NoError(t, NewServer(nil, repo).Register(mux))

	get := func(target string) inventory.Page {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		var page inventory.Page
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
		return page
	}

	page := get("/api/inventory")
	assert.Equal(t, 5, page.Total)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, "Gi0/1", page.Data[0].Name)

	page = get("/api/inventory?limit=2&offset=3")
	assert.Equal(t, 5, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, int64(4), page.Data[0].ID)

	page = get("/api/inventory?offset=10")
	assert.Equal(t, 5, page.Total)
	assert.Empty(t, page.Data)
}
