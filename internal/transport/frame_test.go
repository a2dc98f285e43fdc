package transport

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

func TestFrameMarshal(t *testing.T) {
	frame := &Frame{
		Type:    FrameData,
		From:    "xd-client-" + gofakeit.LetterN(6),
		To:      "xd-host-" + gofakeit.DigitN(6),
		Payload: []byte(`{"kind":"JOIN"}`),
	}

	payload, err := frame.Marshal()
	require.NoError(t, err)

	received, err := UnmarshalFrame(payload)
	require.NoError(t, err)
	require.Equal(t, frame, received)
	require.NoError(t, received.Err())

	_, err = UnmarshalFrame([]byte(`{"from":"a"}`))
	require.Error(t, err)
}

func TestFrameErr(t *testing.T) {
	frame := Frame{Type: FrameError, Payload: []byte(ErrPeerUnavailable.Error())}
	require.ErrorIs(t, frame.Err(), ErrPeerUnavailable)

	frame.Payload = []byte(ErrIdentifierTaken.Error())
	require.ErrorIs(t, frame.Err(), ErrIdentifierTaken)

	frame.Payload = []byte("boom")
	require.EqualError(t, frame.Err(), "boom")
}

func TestEventQueueOrder(t *testing.T) {
	queue := NewEventQueue()
	defer queue.Close()

	const count = 500
	for i := 0; i < count; i++ {
		queue.Push(Event{Type: EventData, Payload: []byte{byte(i % 256)}})
	}

	for i := 0; i < count; i++ {
		select {
		case event := <-queue.Events():
			require.Equal(t, byte(i%256), event.Payload[0])
		case <-time.After(time.Second):
			require.FailNow(t, "event not delivered")
		}
	}
}

func TestEventQueueClose(t *testing.T) {
	queue := NewEventQueue()
	queue.Close()
	queue.Close()
	queue.Push(Event{Type: EventOpen})

	select {
	case _, more := <-queue.Events():
		require.False(t, more)
	case <-time.After(time.Second):
		require.FailNow(t, "events channel not closed")
	}
}

func TestEventTypeString(t *testing.T) {
	require.Equal(t, "open", EventOpen.String())
	require.Equal(t, "data", EventData.String())
	require.Equal(t, "close", EventClose.String())
	require.Equal(t, "error", EventError.String())
	require.Equal(t, "unknown", EventType(42).String())
}
