// models/models.go
package models

// Settings 房间设置：限时与倒计时（秒，-1 表示禁用）
type Settings struct {
	TimeLimit      int `json:"timeLimit"`
	GuessCountdown int `json:"guessCountdown"`
}

// Guess 单次推测。Time 是客户端上报的毫秒时间戳
type Guess struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Time int64   `json:"time"`
}

// PlayerInfo 房间快照中的玩家条目
type PlayerInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	Connected   bool   `json:"connected"`
	SubmitCount int    `json:"submitCount"`
	Excluded    bool   `json:"excluded"`
	Team        string `json:"team"`
}

// PlayerResult round_ended 的单个玩家结果
type PlayerResult struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	LastGuess   *Guess `json:"lastGuess"`
	Excluded    bool   `json:"excluded"`
	SubmitCount int    `json:"submitCount"`
	Team        string `json:"team"`
}

// --- 请求载荷 ---

type CreateRoomRequest struct {
	Name     string   `json:"name"`
	Settings Settings `json:"settings"`
}

type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type LeaveRoomRequest struct {
	RoomID string `json:"roomId"`
}

type KickPlayerRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type ToggleTeamRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

type StartRoundRequest struct {
	RoomID     string `json:"roomId"`
	SpawnIndex int    `json:"spawnIndex"`
}

type SubmitGuessRequest struct {
	RoomID string  `json:"roomId"`
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Time   int64   `json:"time"`
}

type NextRoundRequest struct {
	RoomID string `json:"roomId"`
}

// Ack 请求的应答。RoomID 仅在 create_room 成功时填充
type Ack struct {
	OK     bool   `json:"ok"`
	Msg    string `json:"msg,omitempty"`
	RoomID string `json:"roomId,omitempty"`
}

// --- 广播事件载荷 ---

type RoomUpdate struct {
	Players  []PlayerInfo `json:"players"`
	HostID   string       `json:"hostId"`
	Settings Settings     `json:"settings"`
}

type RoundStarted struct {
	SpawnIndex int      `json:"spawnIndex"`
	Settings   Settings `json:"settings"`
}

type PlayerGuessed struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	SubmitCount int    `json:"submitCount"`
}

type CountdownStarted struct {
	Duration int `json:"duration"`
}

type RoundEnded struct {
	Results    []PlayerResult `json:"results"`
	SpawnIndex int            `json:"spawnIndex"`
}
