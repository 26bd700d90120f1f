package telemetry_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.trai.ch/coman/internal/adapters/telemetry"
	"go.trai.ch/coman/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newProvider(r *mocks.MockRenderer) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(r)))
}

func TestBridge_ForwardsLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRenderer(ctrl)
	tp := newProvider(r)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	var rootID string
	gomock.InOrder(
		r.EXPECT().OnTaskStart(gomock.Any(), "", "install", gomock.Any()).
			Do(func(id, _, _ string, _ any) { rootID = id }),
		r.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), "resolve linux-64", gomock.Any()).
			Do(func(_, parent, _ string, _ any) { assert.Equal(t, rootID, parent) }),
		r.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Nil()),
		r.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Nil()),
	)

	ctx, root := tp.Tracer("test").Start(context.Background(), "install")
	_, child := tp.Tracer("test").Start(ctx, "resolve linux-64")
	child.End()
	root.End()
}

func TestBridge_ReportsFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRenderer(ctrl)
	tp := newProvider(r)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	r.EXPECT().OnTaskStart(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any())
	r.EXPECT().OnTaskComplete(gomock.Any(), gomock.Any(), gomock.Any()).
		Do(func(_ string, _ any, err error) {
			require.Error(t, err)
			assert.Equal(t, "dependencies could not be resolved", err.Error())
		})

	_, span := tp.Tracer("test").Start(context.Background(), "resolve")
	span.SetStatus(codes.Error, "dependencies could not be resolved")
	span.End()
}

func TestBridge_SkipsQuietSpans(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := mocks.NewMockRenderer(ctrl)
	tp := newProvider(r)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "read state",
		trace.WithAttributes(attribute.Bool(telemetry.QuietAttribute, true)))
	span.End()
}

func TestBridge_NilRenderer(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	span.End()

	b := telemetry.NewBridge(nil)
	assert.NoError(t, b.ForceFlush(context.Background()))
	assert.NoError(t, b.Shutdown(context.Background()))
}
