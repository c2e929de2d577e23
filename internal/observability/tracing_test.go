package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"

	"github.com/custodia-labs/figsync/internal/core/domain"
)

func TestInitTracing_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), domain.TracingConfig{})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestStartSpan_NoopProvider(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "test.span", attribute.String("file.id", "F1"))

	require.NotNil(t, ctx)
	require.NotNil(t, span)
	assert.NotPanics(t, func() { EndSpan(span, errors.New("boom")) })
}
