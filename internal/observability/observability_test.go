package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/geocoder89/bookshelf/internal/actorctx"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestClassifyDBErr(t *testing.T) {
	assert.Equal(t, "unique_violation", classifyDBErr(&pgconn.PgError{Code: "23505"}))
	assert.Equal(t, "pg_42P01", classifyDBErr(&pgconn.PgError{Code: "42P01"}))
	assert.Equal(t, "timeout", classifyDBErr(context.DeadlineExceeded))
	assert.Equal(t, "connection", classifyDBErr(errors.New("failed to connect: connection refused")))
	assert.Equal(t, "unknown", classifyDBErr(errors.New("boom")))
}

func TestObserveDB(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	require.NoError(t, p.ObserveDB("books.get", func() error { return nil }))
	require.ErrorIs(t, p.ObserveDB("books.get", func() error { return pgx.ErrNoRows }), pgx.ErrNoRows)
	require.Error(t, p.ObserveDB("books.get", func() error { return &pgconn.PgError{Code: "23505"} }))

	assert.Equal(t, 1.0, testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("books.get", "unique_violation")))
	assert.Equal(t, 1, testutil.CollectAndCount(p.DbErrorsTotal), "a miss must not count as an error")
}

func TestNilPromIsSafe(t *testing.T) {
	var p *Prom

	called := false
	require.NoError(t, p.ObserveDB("op", func() error { called = true; return nil }))
	assert.True(t, called)

	p.ObserveCache("books_list", true)
	p.ObserveAuthFailure("login", "invalid_credentials")
}

func TestObserveCache(t *testing.T) {
	p := NewProm(prometheus.NewRegistry())

	p.ObserveCache("books_list", true)
	p.ObserveCache("books_list", false)
	p.ObserveCache("books_list", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(p.CacheLookups.WithLabelValues("books_list", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.CacheLookups.WithLabelValues("books_list", "miss")))
}

func TestLoggerAddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "bookshelf-api")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "hello")
	span.End()

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, span.SpanContext().TraceID().String(), rec["trace_id"])
	assert.NotEmpty(t, rec["span_id"])

	buf.Reset()
	log.Debug("hidden")
	assert.Empty(t, buf.String(), "debug should be filtered outside dev")
}

func TestLoggerAddsActorID(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev", "bookshelf-api")

	log.InfoContext(actorctx.WithUserID(context.Background(), "u-1"), "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "u-1", rec["actor_id"])
}

func TestLoggerCorrelatesRequest(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "prod", "bookshelf-api")

	ctx := actorctx.WithRequestID(context.Background(), "req-7")
	log.InfoContext(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-7", rec["request_id"])
	assert.Equal(t, "bookshelf-api", rec["service"])
	assert.Equal(t, "prod", rec["env"])
	assert.NotContains(t, rec, "actor_id")
}

func TestLoggerRedactsSecrets(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "dev", "bookshelf-api")

	log.Info("login",
		"email", "ann@x.com",
		"password", "hunter22",
		"Authorization", "Bearer abc.def.ghi",
		slog.Group("req", slog.String("token", "abc.def.ghi")),
	)

	out := buf.String()
	assert.NotContains(t, out, "hunter22")
	assert.NotContains(t, out, "abc.def.ghi")
	assert.Contains(t, out, "ann@x.com")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, redacted, rec["password"])
	assert.Equal(t, redacted, rec["req"].(map[string]any)["token"])
}

func TestSamplerFor(t *testing.T) {
	tests := []struct {
		ratio float64
		root  string
	}{
		{ratio: 1, root: "AlwaysOnSampler"},
		{ratio: 2, root: "AlwaysOnSampler"},
		{ratio: 0, root: "AlwaysOffSampler"},
		{ratio: 0.25, root: "TraceIDRatioBased{0.25}"},
	}

	for _, tt := range tests {
		desc := samplerFor(tt.ratio).Description()
		assert.True(t, strings.HasPrefix(desc, "ParentBased{root:"+tt.root), desc)
	}
}

func TestInitTracer_NoEndpointIsNoop(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracerConfig{ServiceName: "bookshelf-api"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
