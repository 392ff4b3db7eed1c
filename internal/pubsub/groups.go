package pubsub

// Canonical group names. Room groups carry chat traffic, user groups reach
// every live connection of one user, webrtc groups carry signaling only.

func RoomGroup(roomID string) string { return "room_" + roomID }

func UserGroup(userID string) string { return "user_" + userID }

func WebRTCGroup(roomID string) string { return "webrtc_" + roomID }
