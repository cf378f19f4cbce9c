package delivery

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roomwatch/roomwatch-go/pkg/presence"
)

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterSink(&buf)

	require.NoError(t, s.Deliver(context.Background(), "general", "<@m1> alice is now in Lobby"))
	assert.Equal(t, "#general: <@m1> alice is now in Lobby\n", buf.String())

	assert.ErrorIs(t, s.Deliver(context.Background(), "", "x"), ErrNoDestination)
}

func TestInboxKeepsNewest(t *testing.T) {
	in := NewInbox(2)
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, in.Deliver(ctx, "c1", text))
	}
	require.NoError(t, in.Deliver(ctx, "c2", "other"))

	msgs := in.Messages("c1")
	require.Len(t, msgs, 2)
	assert.Equal(t, "two", msgs[0].Text)
	assert.Equal(t, "three", msgs[1].Text)
	assert.Len(t, in.All(), 2)

	drained := in.Drain("c1")
	assert.Len(t, drained, 2)
	assert.Empty(t, in.Messages("c1"))
}

type failingSink struct{ err error }

func (f failingSink) Deliver(context.Context, presence.DestinationID, string) error { return f.err }

func TestMultiSinkDeliversToAll(t *testing.T) {
	in := NewInbox(0)
	boom := errors.New("boom")
	m := NewMultiSink(failingSink{err: boom}, nil, in)

	err := m.Deliver(context.Background(), "c1", "hello")
	assert.ErrorIs(t, err, boom)
	assert.Len(t, in.Messages("c1"), 1)
}
