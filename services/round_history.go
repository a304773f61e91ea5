// services/round_history.go
package services

import (
	"time"

	"github.com/wfunc/geoguess/game"
	"github.com/wfunc/geoguess/logger"
	"github.com/wfunc/geoguess/models"
	"github.com/wfunc/geoguess/persistence"
	"github.com/wfunc/geoguess/spawn"
)

// RoundHistoryService 把结束的回合结果计分后写入存储。
// 它挂在房间管理器的回合观察者上，永远不回到房间的变更路径。
type RoundHistoryService struct {
	store  persistence.RoundStore
	spawns spawn.Provider
}

func NewRoundHistoryService(store persistence.RoundStore, spawns spawn.Provider) *RoundHistoryService {
	return &RoundHistoryService{store: store, spawns: spawns}
}

// HandleRoundEnded matches room.RoundObserver.
func (s *RoundHistoryService) HandleRoundEnded(roomID string, spawnIndex int, results []models.PlayerResult, duration time.Duration) {
	record := &models.RoundRecord{
		RoomID:     roomID,
		SpawnIndex: spawnIndex,
		Results:    s.scoreResults(spawnIndex, results),
		Duration:   int(duration.Seconds()),
	}

	if err := s.store.SaveRoundRecord(record); err != nil {
		logger.Log.Errorf("Failed to save round record for room %s: %v", roomID, err)
		return
	}
	logger.Log.Infof("Saved round record for room %s, spawn index %d", roomID, spawnIndex)
}

// scoreResults enriches raw results with distance and score against the
// spawn coordinate. Guessless players keep zero values.
func (s *RoundHistoryService) scoreResults(spawnIndex int, results []models.PlayerResult) []models.ScoredResult {
	scored := make([]models.ScoredResult, 0, len(results))

	loc, err := s.spawns.At(spawnIndex)
	if err != nil {
		logger.Log.Warnf("No spawn location for index %d: %v", spawnIndex, err)
		for _, r := range results {
			scored = append(scored, models.ScoredResult{PlayerResult: r})
		}
		return scored
	}

	for _, r := range results {
		entry := models.ScoredResult{PlayerResult: r}
		if r.LastGuess != nil {
			entry.DistanceKm = game.DistanceKm(r.LastGuess.Lat, r.LastGuess.Lng, loc.Lat, loc.Lng)
			entry.Score = game.Score(entry.DistanceKm)
		}
		scored = append(scored, entry)
	}
	return scored
}
