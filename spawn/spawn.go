// spawn/spawn.go
package spawn

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

var ErrNoSpawns = errors.New("spawn list is empty")

// Location 一个出生点：坐标加街景元数据。内容不做校验，原样透传
type Location struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Pano    string  `json:"pano"`
	Heading float64 `json:"heading"`
	Pitch   float64 `json:"pitch"`
}

// Provider resolves a spawn index into a location.
type Provider interface {
	At(index int) (Location, error)
	Len() int
}

// List 从 JSON 文件加载的有序出生点序列
type List struct {
	locations []Location
	mutex     sync.RWMutex
}

func Load(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var locations []Location
	if err := json.Unmarshal(data, &locations); err != nil {
		return nil, err
	}

	return &List{locations: locations}, nil
}

// At returns the location at index mod length.
func (l *List) At(index int) (Location, error) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	if len(l.locations) == 0 {
		return Location{}, ErrNoSpawns
	}
	if index < 0 {
		index = -index
	}
	return l.locations[index%len(l.locations)], nil
}

func (l *List) Len() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()
	return len(l.locations)
}
