package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warp/incentive-engine/incentive"
	"github.com/warp/incentive-engine/store"
	"github.com/warp/incentive-engine/store/memory"
)

var fixedNow = time.Date(2026, 3, 31, 18, 0, 0, 0, time.UTC)

// newTestAPI returns a handler on an in-memory store and its router.
func newTestAPI(t *testing.T) (*Handler, http.Handler) {
	t.Helper()
	st := memory.New(nil)
	t.Cleanup(func() { st.Close() })

	h := NewHandler(st, nil)
	h.now = func() time.Time { return fixedNow }
	require.NoError(t, h.LoadState(context.Background()))
	return h, NewRouter(h)
}

// do sends a request. A string body is sent as-is; anything else is
// encoded as JSON.
func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func loadScenario(t *testing.T, router http.Handler, id string) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: id})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// failingStore rejects every state save.
type failingStore struct {
	store.Store
}

var errDiskFull = errors.New("disk full")

func (failingStore) SaveState(context.Context, incentive.State) error {
	return errDiskFull
}
