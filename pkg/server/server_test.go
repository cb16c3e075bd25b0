package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/varint/pkg/observe"
)

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(Options{
		MaxBodyBytes: 64,
		Logger:       logger,
		Registerer:   reg,
		Gatherer:     reg,
		Observer:     observe.New(observe.WithRegistry(reg), observe.WithLogger(logger)),
	})
	return s, reg
}

func do(t *testing.T, h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error struct {
		Code   string `json:"code"`
		Offset *int   `json:"offset"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestEncode(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		kind string
		body string
		want []byte
	}{
		{"u16", "300", []byte{0xAC, 0x02}},
		{"u32", "0 1\n127\t128", []byte{0x00, 0x01, 0x7F, 0x80, 0x01}},
		{"i32", "-1 1 -150", []byte{0x01, 0x02, 0xAB, 0x02}},
		{"uint8", "255", []byte{0xFF, 0x01}},
		{"u64", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.body, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/encode/"+tt.kind, []byte(tt.body))
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
			assert.Equal(t, len(tt.want), rec.Body.Len())
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, rec.Body.Bytes())
			}
		})
	}
}

func TestEncodeInvalid(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/encode/u8", []byte("1 256"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "V004", decodeError(t, rec).Error.Code)

	rec = do(t, s, http.MethodPost, "/v1/encode/u8", []byte("abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/encode/u128", []byte("1"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "V003", decodeError(t, rec).Error.Code)
}

func TestEncodeBodyTooLarge(t *testing.T) {
	s, _ := newTestServer(t)
	rec := do(t, s, http.MethodPost, "/v1/encode/u8", []byte(strings.Repeat("1 ", 64)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestDecode(t *testing.T) {
	s, _ := newTestServer(t)

	body := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01, 0x00}
	rec := do(t, s, http.MethodPost, "/v1/decode/u64", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Large values are printed exactly.
	assert.JSONEq(t, `{"kind":"uint64","values":[18446744073709551615,0],"consumed":11}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/v1/decode/i32", []byte{0xAB, 0x02, 0x01})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"int32","values":[-150,-1],"consumed":3}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/v1/decode/u8", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"uint8","values":[],"consumed":0}`, rec.Body.String())
}

func TestDecodeMalformed(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name   string
		kind   string
		body   []byte
		code   string
		offset int
	}{
		{"overflow", "u8", []byte{0x01, 0x80, 0x02}, "V001", 1},
		{"truncated", "u32", []byte{0x05, 0xAC}, "V002", 1},
		{"too long", "i16", []byte{0x80, 0x80, 0x80, 0x01}, "V001", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/v1/decode/"+tt.kind, tt.body)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.NotContains(t, rec.Body.String(), "values")

			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Error.Code)
			require.NotNil(t, body.Error.Offset)
			assert.Equal(t, tt.offset, *body.Error.Offset)
		})
	}
}

func TestSize(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/v1/size/u32/300", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"uint32","value":300,"size":2}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/size/i64/-9223372036854775808", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"kind":"int64","value":-9223372036854775808,"size":10}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/size/u8/300", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics(t *testing.T) {
	s, reg := newTestServer(t)

	do(t, s, http.MethodPost, "/v1/decode/u16", []byte{0xAC, 0x02})
	do(t, s, http.MethodPost, "/v1/decode/u8", []byte{0x80, 0x02})

	assert.Equal(t, float64(1), testutil.ToFloat64(
		s.metrics.requests.WithLabelValues("/v1/decode/{kind}", http.MethodPost, "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		s.metrics.requests.WithLabelValues("/v1/decode/{kind}", http.MethodPost, "422")))

	n, err := testutil.GatherAndCount(reg, "varint_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec := do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `varint_values_total{kind="uint16",op="read",result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `varint_values_total{kind="uint8",op="read",result="overflow"} 1`)
}

func TestEncodeCountsBytes(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/v1/encode/u16", []byte("300 1"))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, "/v1/encode/u16", []byte("70000"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `varint_values_total{kind="uint16",op="write",result="ok"} 2`)
	assert.Contains(t, body, `varint_values_total{kind="uint16",op="write",result="invalid"} 1`)
	assert.Contains(t, body, `varint_bytes_total{op="write"} 3`)
}

func TestZeroOptionsTwice(t *testing.T) {
	// Each Server gets a private registry unless one is supplied.
	a := New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	b := New(Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})

	do(t, a, http.MethodGet, "/healthz", nil)
	do(t, b, http.MethodGet, "/healthz", nil)
	assert.Equal(t, float64(1), testutil.ToFloat64(
		a.metrics.requests.WithLabelValues("/healthz", http.MethodGet, "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		b.metrics.requests.WithLabelValues("/healthz", http.MethodGet, "200")))
}

func TestNoMetricsRouteWithoutGatherer(t *testing.T) {
	s := New(Options{
		Registerer: prometheus.NewRegistry(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	rec := do(t, s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeShutdown(t *testing.T) {
	s, _ := newTestServer(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
