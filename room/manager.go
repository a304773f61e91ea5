// room/manager.go
package room

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wfunc/geoguess/logger"
	"github.com/wfunc/geoguess/models"
	"github.com/wfunc/geoguess/network"
	"github.com/wfunc/geoguess/timer"
)

// RoundObserver receives the outcome of every completed round, off the
// room-mutation path.
type RoundObserver func(roomID string, spawnIndex int, results []models.PlayerResult, duration time.Duration)

// Manager 管理所有房间：创建、查找、销毁与全部房间操作
type Manager struct {
	rooms       map[string]*Room
	mutex       sync.RWMutex
	timers      *timer.Manager
	broadcaster Broadcaster
	onRoundEnd  RoundObserver
}

// NewManager 创建一个新的房间管理器
func NewManager(broadcaster Broadcaster, timers *timer.Manager) *Manager {
	return &Manager{
		rooms:       make(map[string]*Room),
		timers:      timers,
		broadcaster: broadcaster,
	}
}

// SetRoundObserver registers the hook invoked after each round_ended
// broadcast. Must be set before the server starts accepting connections.
func (m *Manager) SetRoundObserver(fn RoundObserver) {
	m.onRoundEnd = fn
}

// CreateRoom 创建新房间并把创建者作为唯一玩家与房主加入
func (m *Manager) CreateRoom(sessionID, name string, settings models.Settings) *Room {
	if name == "" {
		name = "Host"
	}

	m.mutex.Lock()
	id := m.generateRoomID()
	r := newRoom(id, settings)
	m.rooms[id] = r
	m.mutex.Unlock()

	r.mutex.Lock()
	p := newPlayer(sessionID, name, hostColor)
	r.Players[sessionID] = p
	r.HostID = sessionID
	update := r.snapshotLocked()
	r.mutex.Unlock()

	m.broadcast(id, network.MsgTypeRoomUpdate, update)
	return r
}

// generateRoomID returns a fresh 4-digit id, collision-checked against live
// rooms. Caller holds m.mutex.
func (m *Manager) generateRoomID() string {
	for {
		id := fmt.Sprintf("%d", rand.Intn(9000)+1000)
		if _, exists := m.rooms[id]; !exists {
			return id
		}
	}
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	r, exists := m.rooms[id]
	return r, exists
}

// RemoveRoom 从管理器中移除一个房间并取消其全部定时器
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	r, exists := m.rooms[id]
	if exists {
		delete(m.rooms, id)
	}
	m.mutex.Unlock()

	if !exists {
		return
	}

	r.mutex.Lock()
	m.cancelTimersLocked(r)
	r.mutex.Unlock()
}

// Count 当前活跃房间数
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// RoomIDs returns the ids of all live rooms.
func (m *Manager) RoomIDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	return ids
}

// JoinRoom 把一个会话作为新玩家加入房间
func (m *Manager) JoinRoom(roomID, sessionID, name string) error {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}
	if name == "" {
		name = "Player"
	}

	r.mutex.Lock()
	p := newPlayer(sessionID, name, paletteColor(len(r.Players)))
	r.Players[sessionID] = p
	update := r.snapshotLocked()
	r.mutex.Unlock()

	m.broadcast(roomID, network.MsgTypeRoomUpdate, update)
	return nil
}

// LeaveRoom 显式离开：立即移除并广播
func (m *Manager) LeaveRoom(roomID, sessionID string) {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return
	}

	r.mutex.Lock()
	delete(r.Players, sessionID)
	if r.HostID == sessionID {
		r.HostID = ChooseNewHost(r.Players, sessionID)
	}
	empty := len(r.Players) == 0
	update := r.snapshotLocked()
	r.mutex.Unlock()

	if empty {
		m.RemoveRoom(roomID)
		return
	}
	m.broadcast(roomID, network.MsgTypeRoomUpdate, update)
}

// Kick 房主将目标玩家移出房间，被移除者单独收到 kicked 信号
func (m *Manager) Kick(roomID, requesterID, targetID string) error {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	r.mutex.Lock()
	if r.HostID != requesterID {
		r.mutex.Unlock()
		return ErrForbidden
	}
	if _, ok := r.Players[targetID]; !ok {
		r.mutex.Unlock()
		return ErrPlayerNotFound
	}
	delete(r.Players, targetID)
	update := r.snapshotLocked()
	r.mutex.Unlock()

	if err := m.broadcaster.SendToPlayer(targetID, network.MsgTypeKicked, nil); err != nil {
		logger.Log.Warnf("Failed to notify kicked player %s: %v", targetID, err)
	}
	m.broadcast(roomID, network.MsgTypeRoomUpdate, update)
	return nil
}

// ToggleTeam 房主切换目标玩家的队伍
func (m *Manager) ToggleTeam(roomID, requesterID, targetID string) error {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	r.mutex.Lock()
	if r.HostID != requesterID {
		r.mutex.Unlock()
		return ErrForbidden
	}
	p, ok := r.Players[targetID]
	if !ok {
		r.mutex.Unlock()
		return ErrPlayerNotFound
	}
	if p.Team == TeamRed {
		p.Team = TeamBlue
	} else {
		p.Team = TeamRed
	}
	update := r.snapshotLocked()
	r.mutex.Unlock()

	m.broadcast(roomID, network.MsgTypeRoomUpdate, update)
	return nil
}

// HandleDisconnecting 连接断开的第一阶段：标记离线并在需要时移交房主。
// 玩家条目保留，等待 HandleDisconnect 做最终清理。
func (m *Manager) HandleDisconnecting(sessionID string) {
	for _, r := range m.snapshotRooms() {
		r.mutex.Lock()
		p, ok := r.Players[sessionID]
		if !ok {
			r.mutex.Unlock()
			continue
		}
		p.Connected = false
		if r.HostID == sessionID {
			r.HostID = ChooseNewHost(r.Players, sessionID)
		}
		update := r.snapshotLocked()
		roomID := r.ID
		r.mutex.Unlock()

		m.broadcast(roomID, network.MsgTypeRoomUpdate, update)
	}
}

// HandleDisconnect 连接断开的第二阶段：彻底移除玩家并销毁空房间
func (m *Manager) HandleDisconnect(sessionID string) {
	for _, r := range m.snapshotRooms() {
		r.mutex.Lock()
		if _, ok := r.Players[sessionID]; !ok {
			r.mutex.Unlock()
			continue
		}
		delete(r.Players, sessionID)
		if r.HostID == sessionID {
			r.HostID = ChooseNewHost(r.Players, sessionID)
		}
		empty := len(r.Players) == 0
		roomID := r.ID
		r.mutex.Unlock()

		if empty {
			m.RemoveRoom(roomID)
			logger.Log.Infof("Room %s destroyed, last player %s disconnected", roomID, sessionID)
		}
	}
}

func (m *Manager) snapshotRooms() []*Room {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// cancelTimersLocked disarms the round and countdown timers. Caller holds
// r.mutex. Safe when nothing is armed.
func (m *Manager) cancelTimersLocked(r *Room) {
	if r.roundTimer != 0 {
		m.timers.Cancel(r.roundTimer)
		r.roundTimer = 0
	}
	if r.countdownTimer != 0 {
		m.timers.Cancel(r.countdownTimer)
		r.countdownTimer = 0
	}
}

// broadcast marshals the payload and fans it out to the room. A nil payload
// sends an empty body (round_ready, kicked).
func (m *Manager) broadcast(roomID string, msgID uint16, payload interface{}) {
	var data []byte
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			logger.Log.Errorf("Failed to marshal broadcast %d for room %s: %v", msgID, roomID, err)
			return
		}
	}
	if err := m.broadcaster.BroadcastToRoom(roomID, msgID, data); err != nil {
		logger.Log.Warnf("Broadcast %d to room %s failed: %v", msgID, roomID, err)
	}
}
