package ssedata

import (
	"context"
	"github.com/dhg/hub-backend/internal/sse"
)

type key struct{}

var sseDataKey key

// SSEData buffers messages produced while handling one request; middleware
// flushes the buffer to the hub after the handler returns, so events only go
// out for work that actually happened.
type SSEData struct {
	Messages []sse.SSEMessage
}

func WithSSEData(ctx context.Context) context.Context {
	data := &SSEData{
		Messages: make([]sse.SSEMessage, 0),
	}
	return context.WithValue(ctx, sseDataKey, data)
}

func GetSSEData(ctx context.Context) *SSEData {
	val := ctx.Value(sseDataKey)
	ssd, ok := val.(*SSEData)
	if !ok {
		return nil
	}
	return ssd
}

func (d *SSEData) AppendMessage(msg sse.SSEMessage) {
	d.Messages = append(d.Messages, msg)
}
