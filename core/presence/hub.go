package presence

import (
	"encoding/json"
	"sync"
	"time"

	"EchoFM/logger"
)

const roomPrefix = "playlist:"

// Hub is the process-wide presence registry and room broadcaster. It maps
// each authenticated user to at most one live connection (last-write-wins)
// and maintains ad-hoc playlist rooms. All fan-out is fire-and-forget: a
// slow or disconnected peer never fails the triggering event.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]*Client         // userID -> live connection
	entries map[int64]*PresenceEntry  // userID -> presence state
	rooms   map[string]map[int64]bool // roomID -> member userIDs
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[int64]*Client),
		entries: make(map[int64]*PresenceEntry),
		rooms:   make(map[string]map[int64]bool),
	}
}

// Connect registers a client. A previous connection for the same user is
// evicted and closed; its room memberships carry over to the new socket.
// The new client receives the current online-user list, everyone else is
// told the user came online.
func (h *Hub) Connect(client *Client) {
	h.mu.Lock()
	if old, ok := h.clients[client.UserID]; ok && old != client {
		old.close()
		logger.Info("superseded stale connection",
			logger.Int64("user", client.UserID),
			logger.String("oldSocket", old.SocketID),
			logger.String("newSocket", client.SocketID))
	}
	h.clients[client.UserID] = client
	h.entries[client.UserID] = &PresenceEntry{
		UserID:      client.UserID,
		SocketID:    client.SocketID,
		Username:    client.Username,
		Status:      StatusOnline,
		ConnectedAt: time.Now(),
	}
	online := h.onlineUsersLocked()
	h.mu.Unlock()

	h.broadcast(EvtUserOnline, userRef{UserID: client.UserID, Username: client.Username}, client.UserID)
	h.sendTo(client, EvtUsersOnline, online)

	logger.Info("user connected",
		logger.Int64("user", client.UserID),
		logger.String("username", client.Username),
		logger.String("socket", client.SocketID))
}

// Disconnect removes a client from the registry and every room it belongs
// to, notifying room members and then everyone else. A client that was
// already superseded by a reconnect is ignored.
func (h *Hub) Disconnect(client *Client) {
	h.mu.Lock()
	current, ok := h.clients[client.UserID]
	if !ok || current != client {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.UserID)
	delete(h.entries, client.UserID)

	var left []string
	for roomID, members := range h.rooms {
		if members[client.UserID] {
			delete(members, client.UserID)
			left = append(left, roomID)
			if len(members) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
	h.mu.Unlock()

	client.close()

	for _, roomID := range left {
		h.broadcastRoom(roomID, EvtPlaylistUserLeft, roomMemberData{
			UserID:     client.UserID,
			PlaylistID: playlistID(roomID),
		}, client.UserID)
	}
	h.broadcast(EvtUserOffline, map[string]int64{"userId": client.UserID}, client.UserID)

	logger.Info("user disconnected",
		logger.Int64("user", client.UserID),
		logger.String("socket", client.SocketID))
}

// TrackPlaying marks the user as listening to the given track and tells
// every connection, the sender included.
func (h *Hub) TrackPlaying(userID, trackID int64, title, artist string) {
	track := TrackRef{TrackID: trackID, Title: title, Artist: artist}

	h.mu.Lock()
	entry, ok := h.entries[userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	entry.CurrentTrack = &track
	entry.Status = StatusListening
	username := entry.Username
	h.mu.Unlock()

	h.broadcast(EvtUserListening, listeningData{
		UserID:   userID,
		Username: username,
		Track:    track,
	}, 0)
}

// TrackPaused marks the user as merely online again. The current track is
// left in place.
func (h *Hub) TrackPaused(userID int64) {
	h.mu.Lock()
	entry, ok := h.entries[userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	entry.Status = StatusOnline
	h.mu.Unlock()

	h.broadcast(EvtUserPaused, map[string]int64{"userId": userID}, 0)
}

// TrackLiked fans the like out to every connection. Nothing is persisted
// here; storage belongs to the favorites API.
func (h *Hub) TrackLiked(userID int64, username string, trackID int64) {
	h.broadcast(EvtTrackLiked, trackLikeData{TrackID: trackID, UserID: userID, Username: username}, 0)
}

// TrackUnliked fans the unlike out to every connection.
func (h *Hub) TrackUnliked(userID int64, username string, trackID int64) {
	h.broadcast(EvtTrackUnliked, trackLikeData{TrackID: trackID, UserID: userID, Username: username}, 0)
}

// JoinRoom adds the user to a playlist room, creating it on first join.
// Existing members learn about the joiner; the joiner gets the current
// membership list.
func (h *Hub) JoinRoom(userID int64, playlistIDStr string) {
	roomID := roomPrefix + playlistIDStr

	h.mu.Lock()
	client, ok := h.clients[userID]
	if !ok {
		h.mu.Unlock()
		return
	}
	username := client.Username
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[int64]bool)
	}
	h.rooms[roomID][userID] = true
	members := make([]int64, 0, len(h.rooms[roomID]))
	for id := range h.rooms[roomID] {
		members = append(members, id)
	}
	h.mu.Unlock()

	h.broadcastRoom(roomID, EvtPlaylistUserJoined, roomMemberData{
		UserID:     userID,
		Username:   username,
		PlaylistID: playlistIDStr,
	}, userID)
	h.sendTo(client, EvtPlaylistUsers, roomUsersData{PlaylistID: playlistIDStr, Users: members})
}

// LeaveRoom removes the user from a playlist room. The room is pruned when
// its last member leaves.
func (h *Hub) LeaveRoom(userID int64, playlistIDStr string) {
	roomID := roomPrefix + playlistIDStr

	h.mu.Lock()
	members, ok := h.rooms[roomID]
	if ok {
		delete(members, userID)
		if len(members) == 0 {
			delete(h.rooms, roomID)
		}
	}
	h.mu.Unlock()
	if !ok {
		return
	}

	h.broadcastRoom(roomID, EvtPlaylistUserLeft, roomMemberData{
		UserID:     userID,
		PlaylistID: playlistIDStr,
	}, userID)
}

// TrackAddedInRoom tells the other room members a track was added to the
// shared playlist.
func (h *Hub) TrackAddedInRoom(userID int64, username, playlistIDStr string, track json.RawMessage) {
	h.broadcastRoom(roomPrefix+playlistIDStr, EvtPlaylistTrackAdded, roomTrackAddedData{
		PlaylistID: playlistIDStr,
		Track:      track,
		AddedBy:    userRef{UserID: userID, Username: username},
	}, userID)
}

// TrackRemovedInRoom tells the other room members a track was removed from
// the shared playlist.
func (h *Hub) TrackRemovedInRoom(userID int64, username, playlistIDStr string, trackID int64) {
	h.broadcastRoom(roomPrefix+playlistIDStr, EvtPlaylistTrackRemoved, roomTrackRemovedData{
		PlaylistID: playlistIDStr,
		TrackID:    trackID,
		RemovedBy:  userRef{UserID: userID, Username: username},
	}, userID)
}

// OnlineUsers returns a snapshot of every presence entry.
func (h *Hub) OnlineUsers() []*PresenceEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.onlineUsersLocked()
}

func (h *Hub) onlineUsersLocked() []*PresenceEntry {
	users := make([]*PresenceEntry, 0, len(h.entries))
	for _, entry := range h.entries {
		copied := *entry
		users = append(users, &copied)
	}
	return users
}

// Entry returns the presence entry for a user, or nil.
func (h *Hub) Entry(userID int64) *PresenceEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, ok := h.entries[userID]
	if !ok {
		return nil
	}
	copied := *entry
	return &copied
}

// RoomMembers returns the member userIDs of a room, or nil when the room
// does not exist.
func (h *Hub) RoomMembers(playlistIDStr string) []int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members, ok := h.rooms[roomPrefix+playlistIDStr]
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// handleMessage dispatches one inbound client event.
func (h *Hub) handleMessage(client *Client, msg *Message) {
	switch msg.Event {
	case EvtTrackPlaying:
		var data playingData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			logger.Warn("invalid track:playing payload", logger.ErrorField(err))
			return
		}
		h.TrackPlaying(client.UserID, data.TrackID, data.Title, data.Artist)

	case EvtTrackPaused:
		h.TrackPaused(client.UserID)

	case EvtTrackLike:
		var data likeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		h.TrackLiked(client.UserID, client.Username, data.TrackID)

	case EvtTrackUnlike:
		var data likeData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return
		}
		h.TrackUnliked(client.UserID, client.Username, data.TrackID)

	case EvtPlaylistJoin:
		var data roomData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.PlaylistID == "" {
			return
		}
		h.JoinRoom(client.UserID, data.PlaylistID)

	case EvtPlaylistLeave:
		var data roomData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.PlaylistID == "" {
			return
		}
		h.LeaveRoom(client.UserID, data.PlaylistID)

	case EvtPlaylistTrackAdded:
		var data roomTrackData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.PlaylistID == "" {
			return
		}
		h.TrackAddedInRoom(client.UserID, client.Username, data.PlaylistID, data.Track)

	case EvtPlaylistTrackRemoved:
		var data roomTrackData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.PlaylistID == "" {
			return
		}
		h.TrackRemovedInRoom(client.UserID, client.Username, data.PlaylistID, data.TrackID)

	default:
		logger.Debug("unknown client event", logger.String("event", msg.Event))
	}
}

// broadcast sends an event to every connection, excluding one user when
// excludeUserID is non-zero.
func (h *Hub) broadcast(event string, data interface{}, excludeUserID int64) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		logger.Error("failed to encode event", logger.String("event", event), logger.ErrorField(err))
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for userID, client := range h.clients {
		if excludeUserID != 0 && userID == excludeUserID {
			continue
		}
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.trySend(payload)
	}
}

// broadcastRoom sends an event to every member of a room except the
// excluded user.
func (h *Hub) broadcastRoom(roomID, event string, data interface{}, excludeUserID int64) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		logger.Error("failed to encode event", logger.String("event", event), logger.ErrorField(err))
		return
	}

	h.mu.RLock()
	var targets []*Client
	for userID := range h.rooms[roomID] {
		if excludeUserID != 0 && userID == excludeUserID {
			continue
		}
		if client, ok := h.clients[userID]; ok {
			targets = append(targets, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range targets {
		client.trySend(payload)
	}
}

// sendTo sends an event to a single client.
func (h *Hub) sendTo(client *Client, event string, data interface{}) {
	payload, err := encodeEvent(event, data)
	if err != nil {
		logger.Error("failed to encode event", logger.String("event", event), logger.ErrorField(err))
		return
	}
	client.trySend(payload)
}

func playlistID(roomID string) string {
	return roomID[len(roomPrefix):]
}
