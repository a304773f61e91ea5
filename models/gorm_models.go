// models/gorm_models.go
package models

import (
	"gorm.io/gorm"
)

// GormRoundRecord 回合记录模型
type GormRoundRecord struct {
	gorm.Model
	RoomID     string                 `gorm:"index;not null"`
	SpawnIndex int                    `gorm:"not null"`
	Results    map[string]interface{} `gorm:"type:jsonb;not null"`
	Duration   int                    `gorm:"default:0"` // 回合时长(秒)
}

// ScoredResult 带评分的玩家结果（用于回合记录）
type ScoredResult struct {
	PlayerResult
	DistanceKm float64 `json:"distanceKm"`
	Score      int     `json:"score"`
}

// RoundRecord 回合记录（与存储实现无关的形式）
type RoundRecord struct {
	RoomID     string         `json:"room_id"`
	SpawnIndex int            `json:"spawn_index"`
	Results    []ScoredResult `json:"results"`
	Duration   int            `json:"duration"`
}
