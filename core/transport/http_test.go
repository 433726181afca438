package transport_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"record-collection/core/collection"
	"record-collection/core/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRemote(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/records", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			_, _ = w.Write([]byte(`[{"id":1,"name":"a"},{"id":2,"name":"b"}]`))
		case http.MethodPost:
			var in map[string]any
			_ = json.NewDecoder(r.Body).Decode(&in)
			in["id"] = 10
			_ = json.NewEncoder(w).Encode(in)
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			_, _ = w.Write(body)
		}
	})
	mux.HandleFunc("/api/records/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"name":"a"}`))
	})
	mux.HandleFunc("/api/empty", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/api/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTP_Do(t *testing.T) {
	srv := newRemote(t)
	tr := transport.NewHTTP(srv.URL+"/api/", transport.WithAPIKey("secret"), transport.WithTimeout(2*time.Second))
	ctx := context.Background()

	t.Run("ReadCollection", func(t *testing.T) {
		resp, err := tr.Do(ctx, collection.Request{Method: collection.MethodRead, Target: "/records"})
		require.NoError(t, err)
		require.Len(t, resp.Records, 2)
		assert.Equal(t, "b", resp.Records[1]["name"])
	})

	t.Run("ReadSingle", func(t *testing.T) {
		resp, err := tr.Do(ctx, collection.Request{Method: collection.MethodRead, Target: "records/1"})
		require.NoError(t, err)
		require.Len(t, resp.Records, 1)
		assert.Equal(t, float64(1), resp.Records[0]["id"])
	})

	t.Run("Create", func(t *testing.T) {
		resp, err := tr.Do(ctx, collection.Request{
			Method:  collection.MethodCreate,
			Target:  "/records",
			Payload: []collection.Attributes{{"name": "new"}},
		})
		require.NoError(t, err)
		require.Len(t, resp.Records, 1)
		assert.Equal(t, float64(10), resp.Records[0]["id"])
		assert.Equal(t, "new", resp.Records[0]["name"])
	})

	t.Run("Update", func(t *testing.T) {
		resp, err := tr.Do(ctx, collection.Request{
			Method:  collection.MethodUpdate,
			Target:  "/records",
			Payload: []collection.Attributes{{"id": 1}, {"id": 2}},
		})
		require.NoError(t, err)
		assert.Len(t, resp.Records, 2)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		resp, err := tr.Do(ctx, collection.Request{Method: collection.MethodRead, Target: "/empty"})
		require.NoError(t, err)
		assert.Empty(t, resp.Records)
	})

	t.Run("ServerError", func(t *testing.T) {
		_, err := tr.Do(ctx, collection.Request{Method: collection.MethodRead, Target: "/broken"})
		var serr *transport.StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusInternalServerError, serr.Code)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		anon := transport.NewHTTP(srv.URL + "/api")
		_, err := anon.Do(ctx, collection.Request{Method: collection.MethodRead, Target: "/records"})
		var serr *transport.StatusError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, http.StatusUnauthorized, serr.Code)
	})

	t.Run("UnsupportedMethod", func(t *testing.T) {
		_, err := tr.Do(ctx, collection.Request{Method: "patch", Target: "/records"})
		assert.ErrorContains(t, err, "unsupported method")
	})
}

func TestHTTP_RateLimit(t *testing.T) {
	srv := newRemote(t)
	tr := transport.NewHTTP(srv.URL+"/api", transport.WithAPIKey("secret"), transport.WithRateLimit(0.001, 1))

	_, err := tr.Do(context.Background(), collection.Request{Method: collection.MethodRead, Target: "/records"})
	require.NoError(t, err, "burst allows the first call")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = tr.Do(ctx, collection.Request{Method: collection.MethodRead, Target: "/records"})
	assert.ErrorContains(t, err, "rate limiter")
}

func TestHTTP_CanceledContext(t *testing.T) {
	tr := transport.NewHTTP("http://127.0.0.1:1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Do(ctx, collection.Request{Method: collection.MethodRead, Target: "/records"})
	assert.ErrorIs(t, err, context.Canceled)
}
