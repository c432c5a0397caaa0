package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func event(t *testing.T, name string, projectID uint, payload string) []byte {
	t.Helper()
	msg := Message{Event: name, ProjectID: projectID}
	if payload != "" {
		msg.Payload = json.RawMessage(payload)
	}
	raw, err := json.Marshal(msg)
	require.NoError(t, err)
	return raw
}

func TestClientJoinAndRelay(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)
	b := newTestClient(hub)

	a.handle(event(t, EventJoinProject, 7, ""))
	b.handle(event(t, EventJoinProject, 7, ""))
	require.Equal(t, 2, hub.RoomSize(RoomName(7)))

	a.handle(event(t, EventTaskUpdated, 7, `{"storyId":3}`))

	raw := recvOrNil(b)
	require.NotNil(t, raw)
	var got Message
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventTaskUpdate, got.Event, "inbound taskUpdated is rebroadcast as taskUpdate")
	assert.Equal(t, uint(7), got.ProjectID)
	assert.JSONEq(t, `{"storyId":3}`, string(got.Payload))

	assert.Nil(t, recvOrNil(a), "sender must not hear its own update")
}

func TestClientLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)
	b := newTestClient(hub)

	a.handle(event(t, EventJoinProject, 1, ""))
	b.handle(event(t, EventJoinProject, 1, ""))
	b.handle(event(t, EventLeaveProject, 1, ""))

	a.handle(event(t, EventTaskUpdated, 1, `{}`))
	assert.Nil(t, recvOrNil(b))
}

func TestClientIgnoresMalformedAndUnknown(t *testing.T) {
	hub := NewHub()
	a := newTestClient(hub)
	b := newTestClient(hub)
	hub.Join(RoomName(1), a)
	hub.Join(RoomName(1), b)

	assert.NotPanics(t, func() {
		a.handle([]byte("{not json"))
		a.handle(event(t, "selfDestruct", 1, `{}`))
	})
	assert.Nil(t, recvOrNil(b))
}
