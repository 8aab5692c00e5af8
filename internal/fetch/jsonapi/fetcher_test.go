package jsonapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatvat/chatvat/internal/domain"
	"github.com/chatvat/chatvat/internal/fetch/jsonapi"
)

func source(target string, headers map[string]string) domain.Source {
	return domain.Source{Kind: domain.KindJSONAPI, Target: target, Headers: headers}
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("flattens JSON payload into units", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"product": {"name": "Widget", "price": 9.5}}`))
		}))
		defer server.Close()

		f := jsonapi.NewFetcher()
		units, err := f.Fetch(context.Background(), source(server.URL, nil))

		require.NoError(t, err)
		require.Len(t, units, 2)
		assert.Equal(t, "product > name: Widget", units[0].Text)
		assert.Equal(t, "product > price: 9.5", units[1].Text)
		assert.Equal(t, server.URL, units[0].SourceTarget)
		assert.Equal(t, domain.KindJSONAPI, units[0].SourceKind)
	})

	t.Run("forwards configured headers", func(t *testing.T) {
		t.Parallel()

		var gotAuth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"ok": true}`))
		}))
		defer server.Close()

		f := jsonapi.NewFetcher()
		_, err := f.Fetch(context.Background(), source(server.URL, map[string]string{
			"Authorization": "Bearer secret",
		}))

		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", gotAuth)
	})

	t.Run("401 and 403 map to ErrAuthDenied", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
			}))

			f := jsonapi.NewFetcher()
			_, err := f.Fetch(context.Background(), source(server.URL, nil))

			assert.ErrorIs(t, err, domain.ErrAuthDenied, "status %d", status)
			server.Close()
		}
	})

	t.Run("other non-200 is a generic fetch error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		f := jsonapi.NewFetcher()
		_, err := f.Fetch(context.Background(), source(server.URL, nil))

		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrAuthDenied)
	})

	t.Run("empty payload maps to ErrEmptyResult", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"a": null, "b": "  "}`))
		}))
		defer server.Close()

		f := jsonapi.NewFetcher()
		_, err := f.Fetch(context.Background(), source(server.URL, nil))

		assert.ErrorIs(t, err, domain.ErrEmptyResult)
	})
}

func TestFlatten(t *testing.T) {
	t.Parallel()

	t.Run("arrays flatten under the parent prefix", func(t *testing.T) {
		t.Parallel()

		chunks := jsonapi.Flatten(map[string]any{
			"tags": []any{"a", "b"},
		})

		assert.Equal(t, []string{"tags: a", "tags: b"}, chunks)
	})

	t.Run("map keys are sorted for determinism", func(t *testing.T) {
		t.Parallel()

		in := map[string]any{"zebra": "z", "apple": "a", "mango": "m"}

		first := jsonapi.Flatten(in)
		second := jsonapi.Flatten(in)

		assert.Equal(t, []string{"apple: a", "mango: m", "zebra: z"}, first)
		assert.Equal(t, first, second)
	})

	t.Run("null and blank values are skipped", func(t *testing.T) {
		t.Parallel()

		chunks := jsonapi.Flatten(map[string]any{
			"empty":   "",
			"blank":   "   ",
			"nothing": nil,
			"kept":    "value",
		})

		assert.Equal(t, []string{"kept: value"}, chunks)
	})

	t.Run("booleans and numbers render as text", func(t *testing.T) {
		t.Parallel()

		chunks := jsonapi.Flatten(map[string]any{
			"active": true,
			"count":  float64(42),
		})

		assert.Equal(t, []string{"active: true", "count: 42"}, chunks)
	})
}
