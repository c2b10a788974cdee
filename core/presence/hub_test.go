package presence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, socketID string, userID int64, username string) *Client {
	return NewClient(h, nil, socketID, userID, username)
}

// drainEvents empties a client's send buffer and returns the decoded
// messages.
func drainEvents(t *testing.T, c *Client) []Message {
	t.Helper()
	var msgs []Message
	for {
		select {
		case raw, ok := <-c.send:
			if !ok {
				return msgs
			}
			var msg Message
			require.NoError(t, json.Unmarshal(raw, &msg))
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func eventNames(msgs []Message) []string {
	names := make([]string, len(msgs))
	for i, m := range msgs {
		names[i] = m.Event
	}
	return names
}

func TestConnectAnnouncesPresence(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	bob := newTestClient(h, "s2", 2, "bob")

	h.Connect(alice)
	h.Connect(bob)

	// The first client saw its own roster, then bob's arrival.
	assert.Equal(t, []string{EvtUsersOnline, EvtUserOnline}, eventNames(drainEvents(t, alice)))

	// The joiner only gets the roster, not its own arrival.
	bobEvents := drainEvents(t, bob)
	require.Len(t, bobEvents, 1)
	assert.Equal(t, EvtUsersOnline, bobEvents[0].Event)

	users := h.OnlineUsers()
	assert.Len(t, users, 2)
}

func TestReconnectEvictsOldConnection(t *testing.T) {
	h := NewHub()
	first := newTestClient(h, "s1", 1, "alice")
	second := newTestClient(h, "s2", 1, "alice")

	h.Connect(first)
	h.Connect(second)

	require.Len(t, h.OnlineUsers(), 1)
	entry := h.Entry(1)
	require.NotNil(t, entry)
	assert.Equal(t, "s2", entry.SocketID)

	// The evicted client's send channel is closed.
	drainEvents(t, first)
	_, open := <-first.send
	assert.False(t, open)
}

func TestDisconnectStaleClientIgnored(t *testing.T) {
	h := NewHub()
	first := newTestClient(h, "s1", 1, "alice")
	second := newTestClient(h, "s2", 1, "alice")

	h.Connect(first)
	h.Connect(second)

	// The superseded connection's teardown must not remove the live one.
	h.Disconnect(first)

	entry := h.Entry(1)
	require.NotNil(t, entry)
	assert.Equal(t, "s2", entry.SocketID)
}

func TestDisconnectRemovesPresenceAndNotifies(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	bob := newTestClient(h, "s2", 2, "bob")

	h.Connect(alice)
	h.Connect(bob)
	drainEvents(t, alice)

	h.Disconnect(bob)

	assert.Nil(t, h.Entry(2))
	assert.Len(t, h.OnlineUsers(), 1)

	events := eventNames(drainEvents(t, alice))
	assert.Contains(t, events, EvtUserOffline)
}

func TestTrackPlayingAndPaused(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	h.Connect(alice)

	h.TrackPlaying(1, 42, "Da Funk", "Daft Punk")

	entry := h.Entry(1)
	require.NotNil(t, entry)
	assert.Equal(t, StatusListening, entry.Status)
	require.NotNil(t, entry.CurrentTrack)
	assert.Equal(t, int64(42), entry.CurrentTrack.TrackID)

	h.TrackPaused(1)

	entry = h.Entry(1)
	assert.Equal(t, StatusOnline, entry.Status)
	// Pausing keeps the last track around.
	require.NotNil(t, entry.CurrentTrack)
	assert.Equal(t, "Da Funk", entry.CurrentTrack.Title)
}

func TestTrackPlayingUnknownUserIsNoop(t *testing.T) {
	h := NewHub()
	h.TrackPlaying(99, 42, "Da Funk", "Daft Punk")
	assert.Nil(t, h.Entry(99))
}

func TestJoinAndLeaveRoom(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	bob := newTestClient(h, "s2", 2, "bob")

	h.Connect(alice)
	h.Connect(bob)

	h.JoinRoom(1, "7")
	h.JoinRoom(2, "7")

	assert.ElementsMatch(t, []int64{1, 2}, h.RoomMembers("7"))

	drainEvents(t, bob)
	h.LeaveRoom(1, "7")

	assert.Equal(t, []int64{2}, h.RoomMembers("7"))

	events := eventNames(drainEvents(t, bob))
	assert.Contains(t, events, EvtPlaylistUserLeft)
}

func TestEmptyRoomIsPruned(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	h.Connect(alice)

	h.JoinRoom(1, "7")
	require.NotNil(t, h.RoomMembers("7"))

	h.LeaveRoom(1, "7")
	assert.Nil(t, h.RoomMembers("7"))
}

func TestJoinerReceivesMemberList(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	bob := newTestClient(h, "s2", 2, "bob")

	h.Connect(alice)
	h.Connect(bob)
	h.JoinRoom(1, "7")

	drainEvents(t, bob)
	h.JoinRoom(2, "7")

	events := drainEvents(t, bob)
	require.NotEmpty(t, events)

	last := events[len(events)-1]
	require.Equal(t, EvtPlaylistUsers, last.Event)

	var data roomUsersData
	require.NoError(t, json.Unmarshal(last.Data, &data))
	assert.Equal(t, "7", data.PlaylistID)
	assert.ElementsMatch(t, []int64{1, 2}, data.Users)
}

func TestDisconnectLeavesRooms(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	bob := newTestClient(h, "s2", 2, "bob")

	h.Connect(alice)
	h.Connect(bob)
	h.JoinRoom(1, "7")
	h.JoinRoom(2, "7")

	drainEvents(t, bob)
	h.Disconnect(alice)

	assert.Equal(t, []int64{2}, h.RoomMembers("7"))

	events := eventNames(drainEvents(t, bob))
	assert.Contains(t, events, EvtPlaylistUserLeft)
	assert.Contains(t, events, EvtUserOffline)
}

func TestRoomBroadcastExcludesSender(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	bob := newTestClient(h, "s2", 2, "bob")

	h.Connect(alice)
	h.Connect(bob)
	h.JoinRoom(1, "7")
	h.JoinRoom(2, "7")

	drainEvents(t, alice)
	drainEvents(t, bob)

	h.TrackAddedInRoom(1, "alice", "7", json.RawMessage(`{"id":42}`))

	assert.Empty(t, drainEvents(t, alice))

	events := drainEvents(t, bob)
	require.Len(t, events, 1)
	assert.Equal(t, EvtPlaylistTrackAdded, events[0].Event)

	var data roomTrackAddedData
	require.NoError(t, json.Unmarshal(events[0].Data, &data))
	assert.Equal(t, "7", data.PlaylistID)
	assert.Equal(t, int64(1), data.AddedBy.UserID)
}

func TestLikeFanOutReachesEveryone(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	bob := newTestClient(h, "s2", 2, "bob")

	h.Connect(alice)
	h.Connect(bob)
	drainEvents(t, alice)
	drainEvents(t, bob)

	h.TrackLiked(1, "alice", 42)

	for _, c := range []*Client{alice, bob} {
		events := drainEvents(t, c)
		require.Len(t, events, 1)
		assert.Equal(t, EvtTrackLiked, events[0].Event)

		var data trackLikeData
		require.NoError(t, json.Unmarshal(events[0].Data, &data))
		assert.Equal(t, int64(42), data.TrackID)
		assert.Equal(t, "alice", data.Username)
	}
}

func TestHandleMessageDispatch(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "s1", 1, "alice")
	h.Connect(alice)

	payload, _ := json.Marshal(playingData{TrackID: 42, Title: "Da Funk", Artist: "Daft Punk"})
	h.handleMessage(alice, &Message{Event: EvtTrackPlaying, Data: payload})

	entry := h.Entry(1)
	require.NotNil(t, entry)
	assert.Equal(t, StatusListening, entry.Status)

	roomPayload, _ := json.Marshal(roomData{PlaylistID: "7"})
	h.handleMessage(alice, &Message{Event: EvtPlaylistJoin, Data: roomPayload})
	assert.Equal(t, []int64{1}, h.RoomMembers("7"))

	h.handleMessage(alice, &Message{Event: EvtPlaylistLeave, Data: roomPayload})
	assert.Nil(t, h.RoomMembers("7"))

	// Unknown events are ignored.
	h.handleMessage(alice, &Message{Event: "bogus"})
}
