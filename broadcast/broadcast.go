// broadcast/broadcast.go
package broadcast

import (
	"errors"

	"github.com/wfunc/geoguess/room"
	"github.com/wfunc/geoguess/session"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrSessionNotFound = errors.New("session not found")
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomID string, msgID uint16, data []byte) error
	SendToPlayer(sessionID string, msgID uint16, data []byte) error
}

// RoomBroadcaster 基于房间成员名单向各会话扇出事件
type RoomBroadcaster struct {
	roomManager    *room.Manager
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{sessionManager: sessionManager}
}

// SetRoomManager wires the room manager after construction; the broadcaster
// is created first because the room manager needs it as a dependency.
func (b *RoomBroadcaster) SetRoomManager(roomManager *room.Manager) {
	b.roomManager = roomManager
}

func (b *RoomBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	r, exists := b.roomManager.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	update := r.Snapshot()
	for _, p := range update.Players {
		sess, ok := b.sessionManager.Get(p.ID)
		if !ok {
			// 暂时断线的玩家仍在名单里，跳过即可
			continue
		}
		if err := sess.Send(msgID, 0, data); err != nil {
			// 发送失败交由该连接的读循环处理清理
			continue
		}
	}

	return nil
}

func (b *RoomBroadcaster) SendToPlayer(sessionID string, msgID uint16, data []byte) error {
	sess, ok := b.sessionManager.Get(sessionID)
	if !ok {
		return ErrSessionNotFound
	}
	return sess.Send(msgID, 0, data)
}
