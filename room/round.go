// room/round.go
package room

import (
	"time"

	"github.com/wfunc/geoguess/logger"
	"github.com/wfunc/geoguess/models"
	"github.com/wfunc/geoguess/network"
	"github.com/wfunc/geoguess/state"
)

// StartRound 房主开始新回合
func (m *Manager) StartRound(roomID, requesterID string, spawnIndex int) error {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	r.mutex.Lock()
	if r.HostID != requesterID {
		r.mutex.Unlock()
		return ErrForbidden
	}

	r.Machine.Set(state.StatusPlaying)
	r.SpawnIndex = ((spawnIndex % SpawnIndexBound) + SpawnIndexBound) % SpawnIndexBound
	for _, p := range r.Players {
		p.resetRound()
	}
	r.roundStarted = time.Now()

	// 同类定时器先取消再布防，任何时刻每类至多一个
	m.cancelTimersLocked(r)
	if r.Settings.TimeLimit > 0 {
		r.roundTimer = m.timers.Schedule(time.Duration(r.Settings.TimeLimit)*time.Second, func() {
			m.EndRound(roomID)
		})
	}

	started := models.RoundStarted{SpawnIndex: r.SpawnIndex, Settings: r.Settings}
	r.mutex.Unlock()

	logger.Log.Infof("Room %s round started, spawn index %d", roomID, started.SpawnIndex)
	m.broadcast(roomID, network.MsgTypeRoundStarted, started)
	return nil
}

// SubmitGuess 记录一次推测。坐标不广播，回合结束前对其他玩家保密
func (m *Manager) SubmitGuess(roomID, sessionID string, lat, lng float64, clientTime int64) error {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	r.mutex.Lock()
	p, ok := r.Players[sessionID]
	if !ok {
		r.mutex.Unlock()
		return ErrPlayerNotFound
	}
	if r.Machine.Current() != state.StatusPlaying {
		r.mutex.Unlock()
		return ErrNotPlaying
	}
	if p.SubmitCount >= MaxGuesses {
		r.mutex.Unlock()
		return ErrAttemptsExhausted
	}

	p.SubmitCount++
	if clientTime == 0 {
		clientTime = time.Now().UnixMilli()
	}
	p.LastGuess = &models.Guess{Lat: lat, Lng: lng, Time: clientTime}

	guessed := models.PlayerGuessed{
		PlayerID:    p.ID,
		Name:        p.Name,
		Color:       p.Color,
		SubmitCount: p.SubmitCount,
	}

	// 首次推测布防共享倒计时，对整个房间生效
	var countdown *models.CountdownStarted
	if r.Settings.GuessCountdown > 0 && r.countdownTimer == 0 {
		duration := r.Settings.GuessCountdown
		r.countdownTimer = m.timers.Schedule(time.Duration(duration)*time.Second, func() {
			m.EndRound(roomID)
		})
		countdown = &models.CountdownStarted{Duration: duration}
	}

	allGuessed := r.allGuessedLocked()
	r.mutex.Unlock()

	m.broadcast(roomID, network.MsgTypePlayerGuessed, guessed)
	if countdown != nil {
		m.broadcast(roomID, network.MsgTypeCountdownStarted, countdown)
	}
	if allGuessed {
		m.EndRound(roomID)
	}
	return nil
}

// EndRound 结束回合并广播结果。幂等：定时器与“全员已提交”可能竞争触发，
// playing -> ended 的原子转换保证 round_ended 恰好发出一次。
// 房间可能已在定时器布防之后被销毁，此处先确认存在。
func (m *Manager) EndRound(roomID string) {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return
	}

	r.mutex.Lock()
	m.cancelTimersLocked(r)
	if !r.Machine.TryTransition(state.StatusPlaying, state.StatusEnded) {
		r.mutex.Unlock()
		return
	}

	results := r.resultsLocked()
	ended := models.RoundEnded{Results: results, SpawnIndex: r.SpawnIndex}
	spawnIndex := r.SpawnIndex
	duration := time.Since(r.roundStarted)
	r.mutex.Unlock()

	logger.Log.Infof("Room %s round ended, %d results", roomID, len(results))
	m.broadcast(roomID, network.MsgTypeRoundEnded, ended)

	if m.onRoundEnd != nil {
		go m.onRoundEnd(roomID, spawnIndex, results, duration)
	}
}

// NextRound 房主推进到下一回合的等待状态
func (m *Manager) NextRound(roomID, requesterID string) error {
	r, exists := m.GetRoom(roomID)
	if !exists {
		return ErrRoomNotFound
	}

	r.mutex.Lock()
	if r.HostID != requesterID {
		r.mutex.Unlock()
		return ErrForbidden
	}

	r.SpawnIndex = (r.SpawnIndex + 1) % SpawnIndexBound
	r.Machine.Set(state.StatusWaiting)
	m.cancelTimersLocked(r)
	for _, p := range r.Players {
		p.resetRound()
	}
	r.mutex.Unlock()

	m.broadcast(roomID, network.MsgTypeRoundReady, nil)
	return nil
}
