package presence

import (
	"encoding/json"
	"time"
)

// Outbound event names. These are the wire contract with the client.
const (
	EvtUserOnline           = "user:online"
	EvtUsersOnline          = "users:online"
	EvtUserListening        = "user:listening"
	EvtUserPaused           = "user:paused"
	EvtUserOffline          = "user:offline"
	EvtTrackLiked           = "track:liked"
	EvtTrackUnliked         = "track:unliked"
	EvtPlaylistUserJoined   = "playlist:user-joined"
	EvtPlaylistUsers        = "playlist:users"
	EvtPlaylistUserLeft     = "playlist:user-left"
	EvtPlaylistTrackAdded   = "playlist:track-added"
	EvtPlaylistTrackRemoved = "playlist:track-removed"
)

// Inbound event names.
const (
	EvtTrackPlaying  = "track:playing"
	EvtTrackPaused   = "track:paused"
	EvtTrackLike     = "track:like"
	EvtTrackUnlike   = "track:unlike"
	EvtPlaylistJoin  = "playlist:join"
	EvtPlaylistLeave = "playlist:leave"
)

// Message is the envelope for both directions.
type Message struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// encodeEvent marshals an outbound event with the current timestamp.
func encodeEvent(event string, data interface{}) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{
		Event:     event,
		Data:      payload,
		Timestamp: time.Now().UnixMilli(),
	})
}

// TrackRef identifies the track a user is currently listening to.
type TrackRef struct {
	TrackID int64  `json:"trackId"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
}

// PresenceEntry is the live state of one connected user session.
type PresenceEntry struct {
	UserID       int64     `json:"userId"`
	SocketID     string    `json:"socketId"`
	Username     string    `json:"username"`
	CurrentTrack *TrackRef `json:"currentTrack"`
	Status       string    `json:"status"` // online, listening
	ConnectedAt  time.Time `json:"connectedAt"`
}

const (
	StatusOnline    = "online"
	StatusListening = "listening"
)

// Inbound payloads.

type playingData struct {
	TrackID int64  `json:"trackId"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
}

type likeData struct {
	TrackID int64 `json:"trackId"`
}

type roomData struct {
	PlaylistID string `json:"playlistId"`
}

type roomTrackData struct {
	PlaylistID string          `json:"playlistId"`
	TrackID    int64           `json:"trackId,omitempty"`
	Track      json.RawMessage `json:"track,omitempty"`
}

// Outbound payloads.

type userRef struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type listeningData struct {
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	Track    TrackRef `json:"track"`
}

type trackLikeData struct {
	TrackID  int64  `json:"trackId"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

type roomMemberData struct {
	UserID     int64  `json:"userId"`
	Username   string `json:"username,omitempty"`
	PlaylistID string `json:"playlistId"`
}

type roomUsersData struct {
	PlaylistID string  `json:"playlistId"`
	Users      []int64 `json:"users"`
}

type roomTrackAddedData struct {
	PlaylistID string          `json:"playlistId"`
	Track      json.RawMessage `json:"track"`
	AddedBy    userRef         `json:"addedBy"`
}

type roomTrackRemovedData struct {
	PlaylistID string `json:"playlistId"`
	TrackID    int64  `json:"trackId"`
	RemovedBy  userRef `json:"removedBy"`
}
