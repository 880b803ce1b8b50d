package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/overflow/pkg/errors"
	"github.com/matzehuels/overflow/pkg/scenario"
)

// memCache is a Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func itemsJSON(n int, width float64) string {
	parts := make([]string, n)
	for i := range n {
		parts[i] = fmt.Sprintf(`{"id":"%d","width":%g}`, i, width)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestHealth(t *testing.T) {
	rec := do(t, New(), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestFit(t *testing.T) {
	srv := New(WithCache(newMemCache()))
	body := `{"capacity":200,"items":` + itemsJSON(8, 40) + `}`

	rec := do(t, srv, http.MethodPost, "/v1/fit", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("X-Cache") != "miss" {
		t.Errorf("X-Cache = %q, want miss", rec.Header().Get("X-Cache"))
	}
	etag := rec.Header().Get("ETag")
	res := decode[scenario.Result](t, rec)
	if diff := cmp.Diff([]string{"0", "1", "2", "3"}, res.Final.Visible); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}

	rec = do(t, srv, http.MethodPost, "/v1/fit", body)
	if rec.Header().Get("X-Cache") != "hit" {
		t.Errorf("second request X-Cache = %q, want hit", rec.Header().Get("X-Cache"))
	}
	if got := decode[scenario.Result](t, rec); got.Fingerprint != res.Fingerprint {
		t.Errorf("cached fingerprint %q != %q", got.Fingerprint, res.Fingerprint)
	}

	rec = do(t, srv, http.MethodPost, "/v1/fit", body, "If-None-Match", etag)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional request status = %d, want 304", rec.Code)
	}
}

func TestFitErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"Malformed", `{"capacity":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"UnknownField", `{"colour":"red"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"Invalid", `{"capacity":-1}`, http.StatusBadRequest, errors.ErrCodeInvalidScenario},
		{"DuplicateIDs", `{"capacity":10,"items":[{"id":"a"},{"id":"a"}]}`, http.StatusBadRequest, errors.ErrCodeInvalidScenario},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, New(), http.MethodPost, "/v1/fit", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decode[errorBody](t, rec); got.Code != tt.code {
				t.Errorf("code = %s, want %s", got.Code, tt.code)
			}
		})
	}
}

func TestScenarioCRUD(t *testing.T) {
	srv := New()

	list := decode[scenarioList](t, do(t, srv, http.MethodGet, "/v1/scenarios", ""))
	if len(list.Stored) != 0 || len(list.Builtin) != 7 {
		t.Fatalf("list = %+v", list)
	}

	body := `{"capacity":100,"direction":"start","items":` + itemsJSON(4, 40) + `}`
	if rec := do(t, srv, http.MethodPut, "/v1/scenarios/mine", body); rec.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", rec.Code, rec.Body)
	}
	if rec := do(t, srv, http.MethodPut, "/v1/scenarios/other", `{"name":"mine","capacity":1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("mismatched name status = %d", rec.Code)
	}

	got := decode[scenario.Scenario](t, do(t, srv, http.MethodGet, "/v1/scenarios/mine", ""))
	if got.Name != "mine" || got.Direction != "start" {
		t.Errorf("GET = %+v", got)
	}

	res := decode[scenario.Result](t, do(t, srv, http.MethodPost, "/v1/scenarios/mine/run", ""))
	if res.Scenario != "mine" {
		t.Errorf("run scenario name = %q", res.Scenario)
	}
	if diff := cmp.Diff([]string{"2", "3"}, res.Final.Visible); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}

	if rec := do(t, srv, http.MethodDelete, "/v1/scenarios/mine", ""); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	rec := do(t, srv, http.MethodDelete, "/v1/scenarios/mine", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d", rec.Code)
	}
	if got := decode[errorBody](t, rec); got.Code != errors.ErrCodeScenarioNotFound {
		t.Errorf("code = %s", got.Code)
	}
}

func TestBuiltinScenarioFallback(t *testing.T) {
	srv := New()
	res := decode[scenario.Result](t, do(t, srv, http.MethodPost, "/v1/scenarios/priority/run", ""))
	if diff := cmp.Diff([]string{"6", "4", "5", "7"}, res.Final.Visible); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}
	if rec := do(t, srv, http.MethodGet, "/v1/scenarios/nope", ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown scenario status = %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	srv := New()
	t.Cleanup(func() { _ = srv.Close() })

	rec := do(t, srv, http.MethodPost, "/v1/sessions", `{"capacity":200,"items":`+itemsJSON(8, 40)+`}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}
	st := decode[sessionState](t, rec)
	if diff := cmp.Diff([]string{"0", "1", "2", "3"}, st.Visible); diff != "" {
		t.Errorf("initial visible (-want +got):\n%s", diff)
	}
	if st.Notifications != 2 {
		t.Errorf("notifications = %d, want 2", st.Notifications)
	}
	base := "/v1/sessions/" + st.ID
	if srv.Sessions() != 1 {
		t.Errorf("Sessions() = %d", srv.Sessions())
	}

	st = decode[sessionState](t, do(t, srv, http.MethodPost, base+"/resize", `{"capacity":1000}`))
	if len(st.Hidden) != 0 || st.Capacity != 1000 {
		t.Errorf("after grow: %+v", st)
	}

	st = decode[sessionState](t, do(t, srv, http.MethodPost, base+"/items", `{"items":[{"id":"x","width":40}]}`))
	if len(st.Visible) != 9 {
		t.Errorf("after add: %d visible", len(st.Visible))
	}

	st = decode[sessionState](t, do(t, srv, http.MethodDelete, base+"/items/0", ""))
	if len(st.Visible) != 8 {
		t.Errorf("after remove: %d visible", len(st.Visible))
	}

	st = decode[sessionState](t, do(t, srv, http.MethodPost, base+"/resize", `{"capacity":200}`))
	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, st.Visible); diff != "" {
		t.Errorf("after shrink (-want +got):\n%s", diff)
	}

	if got := decode[sessionState](t, do(t, srv, http.MethodGet, base, "")); got.ID != st.ID {
		t.Errorf("GET id = %q", got.ID)
	}

	if rec := do(t, srv, http.MethodDelete, base, ""); rec.Code != http.StatusNoContent {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, base, ""); rec.Code != http.StatusNotFound {
		t.Errorf("GET after DELETE status = %d", rec.Code)
	}
	if srv.Sessions() != 0 {
		t.Errorf("Sessions() = %d after delete", srv.Sessions())
	}
}

func TestSessionKeepsReportedCapacity(t *testing.T) {
	srv := New()
	t.Cleanup(func() { _ = srv.Close() })

	st := decode[sessionState](t, do(t, srv, http.MethodPost, "/v1/sessions", `{"capacity":200,"items":`+itemsJSON(8, 40)+`}`))
	base := "/v1/sessions/" + st.ID
	do(t, srv, http.MethodPost, base+"/resize", `{"capacity":1000}`)

	tests := []struct {
		name        string
		method      string
		path        string
		body        string
		wantVisible int
	}{
		{"Add", http.MethodPost, base + "/items", `{"items":[{"id":"x","width":40}]}`, 9},
		{"Remove", http.MethodDelete, base + "/items/3", "", 8},
		{"Get", http.MethodGet, base, "", 8},
	}
	for _, tt := range tests {
		st := decode[sessionState](t, do(t, srv, tt.method, tt.path, tt.body))
		if len(st.Visible) != tt.wantVisible || len(st.Hidden) != 0 {
			t.Errorf("%s: visible %v hidden %v, want %d visible at capacity %v",
				tt.name, st.Visible, st.Hidden, tt.wantVisible, st.Capacity)
		}
	}
}

func TestServerCloseEndsSessions(t *testing.T) {
	srv := New()
	for range 2 {
		do(t, srv, http.MethodPost, "/v1/sessions", `{"capacity":100,"items":`+itemsJSON(3, 40)+`}`)
	}
	var loops []*session
	srv.sessions.Range(func(_ string, sess *session) bool {
		loops = append(loops, sess)
		return true
	})

	if err := srv.Close(); err != nil {
		t.Fatal(err)
	}
	if srv.Sessions() != 0 {
		t.Errorf("Sessions() = %d after Close", srv.Sessions())
	}
	for _, sess := range loops {
		select {
		case <-sess.loop.Done():
		case <-time.After(time.Second):
			t.Errorf("session %s loop still running", sess.id)
		}
	}
}

func TestSessionErrors(t *testing.T) {
	srv := New()
	t.Cleanup(func() { _ = srv.Close() })
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{"BadID", http.MethodGet, "/v1/sessions/not-a-uuid", "", http.StatusBadRequest},
		{"Unknown", http.MethodGet, "/v1/sessions/0b7a7f3c-3c1e-4d43-9f55-3f0a8a1f9e11", "", http.StatusNotFound},
		{"InvalidConfig", http.MethodPost, "/v1/sessions", `{"capacity":-5}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := do(t, srv, tt.method, tt.path, tt.body); rec.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
		})
	}

	st := decode[sessionState](t, do(t, srv, http.MethodPost, "/v1/sessions", `{"capacity":100}`))
	base := "/v1/sessions/" + st.ID
	if rec := do(t, srv, http.MethodPost, base+"/resize", `{"capacity":-1}`); rec.Code != http.StatusBadRequest {
		t.Errorf("negative resize status = %d", rec.Code)
	}
	if rec := do(t, srv, http.MethodPost, base+"/items", `{"items":[{"id":""}]}`); rec.Code != http.StatusBadRequest {
		t.Errorf("empty item id status = %d", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "overflow_test_total"}))
	srv := New(WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "overflow_test_total") {
		t.Errorf("metrics status = %d body = %s", rec.Code, rec.Body)
	}
	if rec := do(t, New(), http.MethodGet, "/metrics", ""); rec.Code != http.StatusNotFound {
		t.Errorf("metrics without WithMetrics status = %d", rec.Code)
	}
}
