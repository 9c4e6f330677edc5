package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInterruptHandler(t *testing.T) {
	assert.NotNil(t, NewInterruptHandler(nil).writer)

	buf := &bytes.Buffer{}
	h := NewInterruptHandler(buf)
	assert.Same(t, buf, h.writer)
	assert.False(t, h.WasInterrupted())
}

func TestInterruptHandler_Interrupt(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewInterruptHandler(buf)
	h.operation = "Sync"

	h.interrupt()
	h.interrupt()

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("Sync interrupted.")))
}

func TestInterruptHandler_StopCancelsContext(t *testing.T) {
	h := NewInterruptHandler(&bytes.Buffer{})
	ctx := h.HandleInterrupts(context.Background(), "Projection")

	assert.NoError(t, ctx.Err())
	h.Stop()
	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.False(t, h.WasInterrupted())

	// Stopping twice is harmless.
	h.Stop()
}
