package chi_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chatvat/chatvat/internal/db"
	"github.com/chatvat/chatvat/internal/domain"
	chiTransport "github.com/chatvat/chatvat/internal/transport/chi"
	chatuc "github.com/chatvat/chatvat/internal/usecase/chat"
	healthuc "github.com/chatvat/chatvat/internal/usecase/health"
)

type stubRetriever struct {
	hits []domain.Hit
	err  error
}

func (s *stubRetriever) Query(_ context.Context, _ string, _ int) ([]domain.Hit, error) {
	return s.hits, s.err
}

type stubCompleter struct {
	answer string
	err    error
}

func (s *stubCompleter) Complete(_ context.Context, _, _ string) (string, error) {
	return s.answer, s.err
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

type stubChecker struct{ err error }

func (s *stubChecker) HealthCheck(_ context.Context) error { return s.err }

func newTestServerWithLogger(retriever *stubRetriever, completer *stubCompleter, logger *zap.Logger) *httptest.Server {
	chat := chatuc.New(retriever, completer, "", 3)
	health := healthuc.New(&stubPinger{}, &stubChecker{})
	srv := chiTransport.NewServer(chat, health, logger)
	return httptest.NewServer(srv.Router())
}

func newTestServer(retriever *stubRetriever, completer *stubCompleter) *httptest.Server {
	return newTestServerWithLogger(retriever, completer, zap.NewNop())
}

func TestChatEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("answers a question", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(&stubRetriever{}, &stubCompleter{answer: "42"})
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/chat", "application/json",
			strings.NewReader(`{"message": "what is the answer?"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("rejects empty message", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(&stubRetriever{}, &stubCompleter{})
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/chat", "application/json", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(&stubRetriever{}, &stubCompleter{})
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/chat", "application/json", strings.NewReader(`{not json`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("maps provider failure to 502", func(t *testing.T) {
		t.Parallel()

		ts := newTestServer(&stubRetriever{}, &stubCompleter{err: domain.ErrProviderError})
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/chat", "application/json",
			strings.NewReader(`{"message": "hi"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})

	t.Run("maps store failure to 502", func(t *testing.T) {
		t.Parallel()

		// The error chain a Redis outage produces: repo-wrapped db.Error,
		// tagged ErrStoreUnavailable by the knowledge service.
		storeErr := fmt.Errorf("search: %w: %w",
			&db.Error{Op: db.OpSearch, Err: fmt.Errorf("connection refused")},
			domain.ErrStoreUnavailable)
		ts := newTestServer(&stubRetriever{err: storeErr}, &stubCompleter{})
		defer ts.Close()

		resp, err := http.Post(ts.URL+"/chat", "application/json",
			strings.NewReader(`{"message": "hi"}`))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestChatEndpoint_ErrorLogCarriesRequestID(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	ts := newTestServerWithLogger(
		&stubRetriever{}, &stubCompleter{err: domain.ErrProviderError}, zap.New(core))
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/chat", "application/json",
		strings.NewReader(`{"message": "hi"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.NotEmpty(t, fields["request_id"], "handler log should carry the request ID")
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	ts := newTestServer(&stubRetriever{}, &stubCompleter{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}
