package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Do_SendsAuthHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCSRFToken("csrf-1"), WithBearerToken("jwt-1"))
	body, err := c.Get(context.Background(), "/api/notifications")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[]}`, string(body))
	assert.Equal(t, "csrf-1", got.Get(HeaderCSRF))
	assert.Equal(t, "Bearer jwt-1", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_Do_OmitsUnsetCredentials(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	body, err := New(srv.URL).Delete(context.Background(), "/notifications/3", nil)
	require.NoError(t, err)
	assert.Nil(t, body)
	assert.Empty(t, got.Get(HeaderCSRF))
	assert.Empty(t, got.Get("Authorization"))
}

func TestClient_Do_EncodesPayloads(t *testing.T) {
	type seen struct {
		method, path, contentType, body string
	}
	var last seen
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		last = seen{r.Method, r.URL.Path, r.Header.Get("Content-Type"), string(b)}
		_, _ = w.Write([]byte(`{"statusText":"OK"}`))
	}))
	defer srv.Close()
	c := New(srv.URL + "/")

	_, err := c.Put(context.Background(), "/notifications", url.Values{"title": {"disk"}, "body": {"full"}})
	require.NoError(t, err)
	assert.Equal(t, seen{http.MethodPut, "/notifications", "application/x-www-form-urlencoded", "body=full&title=disk"}, last)

	_, err = c.Patch(context.Background(), "notifications/7/read", map[string]bool{"ok": true})
	require.NoError(t, err)
	assert.Equal(t, seen{http.MethodPatch, "/notifications/7/read", "application/json", `{"ok":true}`}, last)
}

func TestClient_Do_NonSuccessIsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"title":"required"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Put(context.Background(), "/notifications", url.Values{})
	require.Error(t, err)

	var he *HTTPError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)
	assert.JSONEq(t, `{"title":"required"}`, string(he.Body))

	status, ok := StatusOf(err)
	assert.True(t, ok)
	assert.Equal(t, 422, status)
	assert.True(t, IsStatus(err, 422))
}

func TestClient_Do_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := New(base).Get(context.Background(), "/api/notifications")
	require.Error(t, err)

	var te *TransportError
	assert.True(t, errors.As(err, &te))
	_, ok := StatusOf(err)
	assert.False(t, ok)
}

func TestClient_Do_RejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>login</html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Get(context.Background(), "/api/notifications")
	require.Error(t, err)
	_, isHTTP := StatusOf(err)
	assert.False(t, isHTTP)
}

func TestClient_Go_ResolvesFuture(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"total":5}`))
	}))
	defer srv.Close()

	f := New(srv.URL).Go(context.Background(), http.MethodGet, "/api/inventory", nil)
	select {
	case <-f.Done():
		t.Fatal("future resolved before the response")
	case <-time.After(20 * time.Millisecond):
	}
	close(release)

	body, err := f.Wait(context.Background())
	require.NoError(t, err)

	out, err := Decode[struct {
		Total int `json:"total"`
	}](body)
	require.NoError(t, err)
	assert.Equal(t, 5, out.Total)
}

func TestFuture_WaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := NewFuture(context.Background(), func(context.Context) (json.RawMessage, error) {
		<-block
		return nil, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
