// room/room.go
package room

import (
	"sort"
	"sync"
	"time"

	"github.com/wfunc/geoguess/models"
	"github.com/wfunc/geoguess/state"
)

// SpawnIndexBound 出生点游标的模数上界
const SpawnIndexBound = 100000

// Room 是一局游戏会话的核心结构。所有字段由 mutex 保护，
// Manager 在持锁期间完成整次变更，不在锁内做任何网络 I/O。
type Room struct {
	ID         string
	HostID     string
	Settings   models.Settings
	Players    map[string]*Player // sessionID -> player
	SpawnIndex int
	Machine    *state.Machine
	CreatedAt  time.Time

	// 每类最多一个待触发的定时器，0 表示未布防
	roundTimer     int64
	countdownTimer int64
	roundStarted   time.Time

	mutex sync.Mutex
}

func newRoom(id string, settings models.Settings) *Room {
	return &Room{
		ID:        id,
		Settings:  settings,
		Players:   make(map[string]*Player),
		Machine:   state.NewMachine(state.StatusWaiting),
		CreatedAt: time.Now(),
	}
}

// Status returns the current round status.
func (r *Room) Status() state.Status {
	return r.Machine.Current()
}

// GetPlayer 获取单个玩家
func (r *Room) GetPlayer(sessionID string) (*Player, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	player, exists := r.Players[sessionID]
	return player, exists
}

// PlayerCount returns the current number of players (connected or not).
func (r *Room) PlayerCount() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.Players)
}

// CurrentSpawnIndex returns the room's spawn cursor.
func (r *Room) CurrentSpawnIndex() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.SpawnIndex
}

// Host returns the current host session id, empty when the room is empty.
func (r *Room) Host() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.HostID
}

// Snapshot 构建当前房间状态的广播载荷
func (r *Room) Snapshot() models.RoomUpdate {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.snapshotLocked()
}

// snapshotLocked builds the room_update payload. Caller holds r.mutex.
func (r *Room) snapshotLocked() models.RoomUpdate {
	players := make([]models.PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.info())
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })

	return models.RoomUpdate{
		Players:  players,
		HostID:   r.HostID,
		Settings: r.Settings,
	}
}

// resultsLocked builds the round_ended results. Caller holds r.mutex.
func (r *Room) resultsLocked() []models.PlayerResult {
	results := make([]models.PlayerResult, 0, len(r.Players))
	for _, p := range r.Players {
		results = append(results, p.result())
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

// allGuessedLocked reports whether every current player has submitted a
// guess this round. Caller holds r.mutex.
func (r *Room) allGuessedLocked() bool {
	for _, p := range r.Players {
		if p.LastGuess == nil {
			return false
		}
	}
	return len(r.Players) > 0
}

// ChooseNewHost picks the replacement host after the current host leaves:
// the lexicographically smallest remaining session id, or empty when the
// room would be empty. Deterministic so failover is unit-testable.
func ChooseNewHost(players map[string]*Player, leaving string) string {
	next := ""
	for id := range players {
		if id == leaving {
			continue
		}
		if next == "" || id < next {
			next = id
		}
	}
	return next
}
