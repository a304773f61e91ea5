// persistence/interface.go
package persistence

import (
	"fmt"

	"github.com/wfunc/geoguess/models"
)

// RoundStore 回合历史存储接口
type RoundStore interface {
	SaveRoundRecord(record *models.RoundRecord) error
	LoadRoundRecords(roomID string, limit int) ([]models.RoundRecord, error)
	Close() error
}

// 错误定义
var (
	ErrRecordNotFound = fmt.Errorf("record not found")
)
