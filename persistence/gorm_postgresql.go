// persistence/gorm_postgresql.go
package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/wfunc/geoguess/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormPostgreSQL 基于 GORM 的回合历史存储实现
type GormPostgreSQL struct {
	db *gorm.DB
}

// NewGormPostgreSQL 创建 GORM PostgreSQL 存储
func NewGormPostgreSQL(host string, port int, user, password, dbname string) (*GormPostgreSQL, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// 自动迁移表结构
	if err := db.AutoMigrate(&models.GormRoundRecord{}); err != nil {
		return nil, err
	}

	return &GormPostgreSQL{db: db}, nil
}

func (g *GormPostgreSQL) SaveRoundRecord(record *models.RoundRecord) error {
	// jsonb 列按玩家ID建键
	results := make(map[string]interface{}, len(record.Results))
	for _, res := range record.Results {
		results[res.ID] = res
	}

	row := models.GormRoundRecord{
		RoomID:     record.RoomID,
		SpawnIndex: record.SpawnIndex,
		Results:    results,
		Duration:   record.Duration,
	}
	return g.db.Create(&row).Error
}

func (g *GormPostgreSQL) LoadRoundRecords(roomID string, limit int) ([]models.RoundRecord, error) {
	var rows []models.GormRoundRecord
	err := g.db.Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	records := make([]models.RoundRecord, 0, len(rows))
	for _, row := range rows {
		record := models.RoundRecord{
			RoomID:     row.RoomID,
			SpawnIndex: row.SpawnIndex,
			Duration:   row.Duration,
		}
		for _, raw := range row.Results {
			data, err := json.Marshal(raw)
			if err != nil {
				continue
			}
			var res models.ScoredResult
			if err := json.Unmarshal(data, &res); err == nil {
				record.Results = append(record.Results, res)
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func (g *GormPostgreSQL) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
