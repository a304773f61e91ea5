// persistence/postgresql.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/wfunc/geoguess/models"
)

// PostgreSQL 基于 database/sql 的回合历史存储实现
type PostgreSQL struct {
	db *sql.DB
}

// NewPostgreSQL 创建 PostgreSQL 数据库连接
func NewPostgreSQL(host string, port int, user, password, dbname string) (*PostgreSQL, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	// 设置连接池参数
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// 初始化表结构
	if err := initTables(db); err != nil {
		return nil, err
	}

	return &PostgreSQL{db: db}, nil
}

// initTables 初始化数据库表结构
func initTables(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS round_records (
            id SERIAL PRIMARY KEY,
            room_id VARCHAR(16) NOT NULL,
            spawn_index INTEGER NOT NULL,
            results JSONB NOT NULL,
            duration INTEGER NOT NULL DEFAULT 0,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_round_records_room_id ON round_records(room_id)
    `)
	return err
}

func (p *PostgreSQL) SaveRoundRecord(record *models.RoundRecord) error {
	results, err := json.Marshal(record.Results)
	if err != nil {
		return err
	}

	_, err = p.db.Exec(`
        INSERT INTO round_records (room_id, spawn_index, results, duration)
        VALUES ($1, $2, $3, $4)
    `, record.RoomID, record.SpawnIndex, results, record.Duration)
	return err
}

func (p *PostgreSQL) LoadRoundRecords(roomID string, limit int) ([]models.RoundRecord, error) {
	rows, err := p.db.Query(`
        SELECT room_id, spawn_index, results, duration
        FROM round_records
        WHERE room_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, roomID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.RoundRecord
	for rows.Next() {
		var record models.RoundRecord
		var results []byte
		if err := rows.Scan(&record.RoomID, &record.SpawnIndex, &results, &record.Duration); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(results, &record.Results); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (p *PostgreSQL) Close() error {
	return p.db.Close()
}
