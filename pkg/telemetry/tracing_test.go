package telemetry

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracerProviderExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider("cxvoice", "test", "run-1", &buf)
	require.NoError(t, err)

	ctx, span := StartSpan(context.Background(), "step Agent accepts", AttrStep.String("Agent accepts"), AttrStepIndex.Int(4))
	AddEvent(ctx, "call.connected", AttrCallID.String("call-1"))
	RecordError(ctx, errors.New("accept button not visible"))
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "step Agent accepts")
	assert.Contains(t, out, "cxvoice.step.name")
	assert.Contains(t, out, "call.connected")
	assert.Contains(t, out, "accept button not visible")
	assert.Contains(t, out, "run-1")
}
