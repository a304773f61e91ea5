package room

import (
	"encoding/json"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/wfunc/geoguess/logger"
	"github.com/wfunc/geoguess/models"
	"github.com/wfunc/geoguess/network"
	"github.com/wfunc/geoguess/timer"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type broadcastCall struct {
	RoomID string
	MsgID  uint16
	Data   []byte
}

type directCall struct {
	SessionID string
	MsgID     uint16
}

// MockBroadcaster is a test double for the Broadcaster interface that
// records every fan-out and direct send.
type MockBroadcaster struct {
	mutex      sync.Mutex
	broadcasts []broadcastCall
	directs    []directCall
}

func (b *MockBroadcaster) BroadcastToRoom(roomID string, msgID uint16, data []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.broadcasts = append(b.broadcasts, broadcastCall{RoomID: roomID, MsgID: msgID, Data: data})
	return nil
}

func (b *MockBroadcaster) SendToPlayer(sessionID string, msgID uint16, data []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.directs = append(b.directs, directCall{SessionID: sessionID, MsgID: msgID})
	return nil
}

func (b *MockBroadcaster) count(msgID uint16) int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	n := 0
	for _, c := range b.broadcasts {
		if c.MsgID == msgID {
			n++
		}
	}
	return n
}

func (b *MockBroadcaster) last(msgID uint16) ([]byte, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for i := len(b.broadcasts) - 1; i >= 0; i-- {
		if b.broadcasts[i].MsgID == msgID {
			return b.broadcasts[i].Data, true
		}
	}
	return nil, false
}

func newTestManager() (*Manager, *MockBroadcaster) {
	b := &MockBroadcaster{}
	return NewManager(b, timer.NewManager()), b
}

func TestManager_CreateRoom(t *testing.T) {
	manager, broadcaster := newTestManager()

	r := manager.CreateRoom("host_session", "Alice", models.Settings{TimeLimit: -1, GuessCountdown: -1})
	if r == nil {
		t.Fatal("CreateRoom should not return nil")
	}

	if !regexp.MustCompile(`^\d{4}$`).MatchString(r.ID) {
		t.Errorf("Expected a 4-digit numeric room id, got %q", r.ID)
	}

	if r.PlayerCount() != 1 {
		t.Errorf("Expected the creator to be the sole player, got %d players", r.PlayerCount())
	}
	if r.Host() != "host_session" {
		t.Errorf("Expected the creator to be host, got %q", r.Host())
	}

	p, ok := r.GetPlayer("host_session")
	if !ok {
		t.Fatal("Creator should be in the player map")
	}
	if p.Team != TeamRed && p.Team != TeamBlue {
		t.Errorf("Expected a team assignment, got %q", p.Team)
	}

	retrieved, exists := manager.GetRoom(r.ID)
	if !exists || retrieved != r {
		t.Error("GetRoom should return the created room instance")
	}

	if broadcaster.count(network.MsgTypeRoomUpdate) != 1 {
		t.Errorf("Expected one room_update broadcast, got %d", broadcaster.count(network.MsgTypeRoomUpdate))
	}
}

func TestManager_JoinRoom(t *testing.T) {
	manager, _ := newTestManager()

	r := manager.CreateRoom("host_session", "Alice", models.Settings{TimeLimit: -1, GuessCountdown: -1})
	if err := manager.JoinRoom(r.ID, "guest_session", "B"); err != nil {
		t.Fatalf("JoinRoom failed: %v", err)
	}

	if r.PlayerCount() != 2 {
		t.Fatalf("Expected 2 players after join, got %d", r.PlayerCount())
	}

	host, _ := r.GetPlayer("host_session")
	guest, ok := r.GetPlayer("guest_session")
	if !ok {
		t.Fatal("Joined player should be in the player map")
	}
	if guest.Name != "B" {
		t.Errorf("Expected name B, got %q", guest.Name)
	}
	if guest.Color == host.Color {
		t.Error("Expected the joiner's color to differ from the host's")
	}
	if guest.Team != TeamRed && guest.Team != TeamBlue {
		t.Errorf("Expected a team assignment, got %q", guest.Team)
	}
}

func TestManager_JoinRoom_NotFound(t *testing.T) {
	manager, _ := newTestManager()

	if err := manager.JoinRoom("0000", "guest_session", "B"); err != ErrRoomNotFound {
		t.Errorf("Expected ErrRoomNotFound, got %v", err)
	}
}

func TestManager_Kick(t *testing.T) {
	manager, broadcaster := newTestManager()

	r := manager.CreateRoom("host_session", "Alice", models.Settings{TimeLimit: -1, GuessCountdown: -1})
	manager.JoinRoom(r.ID, "guest_session", "B")

	// Non-host may not kick.
	if err := manager.Kick(r.ID, "guest_session", "host_session"); err != ErrForbidden {
		t.Errorf("Expected ErrForbidden for a non-host kick, got %v", err)
	}

	// Unknown target.
	if err := manager.Kick(r.ID, "host_session", "nobody"); err != ErrPlayerNotFound {
		t.Errorf("Expected ErrPlayerNotFound, got %v", err)
	}

	if err := manager.Kick(r.ID, "host_session", "guest_session"); err != nil {
		t.Fatalf("Kick failed: %v", err)
	}
	if _, ok := r.GetPlayer("guest_session"); ok {
		t.Error("Kicked player should be removed from the room")
	}

	broadcaster.mutex.Lock()
	defer broadcaster.mutex.Unlock()
	found := false
	for _, d := range broadcaster.directs {
		if d.SessionID == "guest_session" && d.MsgID == network.MsgTypeKicked {
			found = true
		}
	}
	if !found {
		t.Error("Expected the kicked signal to be sent to the removed player only")
	}
}

func TestManager_ToggleTeam(t *testing.T) {
	manager, _ := newTestManager()

	r := manager.CreateRoom("host_session", "Alice", models.Settings{TimeLimit: -1, GuessCountdown: -1})
	manager.JoinRoom(r.ID, "guest_session", "B")

	if err := manager.ToggleTeam(r.ID, "guest_session", "host_session"); err != ErrForbidden {
		t.Errorf("Expected ErrForbidden for a non-host toggle, got %v", err)
	}

	guest, _ := r.GetPlayer("guest_session")
	before := guest.Team
	if err := manager.ToggleTeam(r.ID, "host_session", "guest_session"); err != nil {
		t.Fatalf("ToggleTeam failed: %v", err)
	}
	guest, _ = r.GetPlayer("guest_session")
	if guest.Team == before {
		t.Errorf("Expected team to flip from %q", before)
	}
}

func TestManager_LeaveRoom_DestroysEmptyRoom(t *testing.T) {
	manager, _ := newTestManager()

	r := manager.CreateRoom("host_session", "Alice", models.Settings{TimeLimit: -1, GuessCountdown: -1})
	manager.LeaveRoom(r.ID, "host_session")

	if _, exists := manager.GetRoom(r.ID); exists {
		t.Error("Expected the room to be destroyed once its last player left")
	}
	if manager.Count() != 0 {
		t.Errorf("Expected 0 live rooms, got %d", manager.Count())
	}
}

func TestManager_HostFailoverOnDisconnect(t *testing.T) {
	manager, _ := newTestManager()

	r := manager.CreateRoom("host_session", "Alice", models.Settings{TimeLimit: -1, GuessCountdown: -1})
	manager.JoinRoom(r.ID, "guest_session", "B")

	manager.HandleDisconnecting("host_session")

	host, ok := r.GetPlayer("host_session")
	if !ok {
		t.Fatal("Transiently disconnected player should remain in the room")
	}
	if host.Connected {
		t.Error("Expected the disconnecting player to be marked disconnected")
	}
	if r.Host() != "guest_session" {
		t.Errorf("Expected host to fail over to the remaining member, got %q", r.Host())
	}

	manager.HandleDisconnect("host_session")
	if _, ok := r.GetPlayer("host_session"); ok {
		t.Error("Expected full teardown to remove the player entirely")
	}
	if _, exists := manager.GetRoom(r.ID); !exists {
		t.Error("Room with a remaining player should survive teardown of another")
	}

	manager.HandleDisconnecting("guest_session")
	manager.HandleDisconnect("guest_session")
	if _, exists := manager.GetRoom(r.ID); exists {
		t.Error("Expected the room to be destroyed once empty")
	}
}

func TestChooseNewHost(t *testing.T) {
	players := map[string]*Player{
		"c": {ID: "c"},
		"a": {ID: "a"},
		"b": {ID: "b"},
	}

	if got := ChooseNewHost(players, "a"); got != "b" {
		t.Errorf("Expected b, got %q", got)
	}
	if got := ChooseNewHost(players, "z"); got != "a" {
		t.Errorf("Expected a, got %q", got)
	}

	solo := map[string]*Player{"a": {ID: "a"}}
	if got := ChooseNewHost(solo, "a"); got != "" {
		t.Errorf("Expected no host for an emptying room, got %q", got)
	}
}

func TestRoomUpdatePayload(t *testing.T) {
	manager, broadcaster := newTestManager()

	r := manager.CreateRoom("host_session", "Alice", models.Settings{TimeLimit: 60, GuessCountdown: 15})
	manager.JoinRoom(r.ID, "guest_session", "B")

	data, ok := broadcaster.last(network.MsgTypeRoomUpdate)
	if !ok {
		t.Fatal("Expected a room_update broadcast")
	}

	var update models.RoomUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		t.Fatalf("Failed to unmarshal room_update: %v", err)
	}
	if len(update.Players) != 2 {
		t.Errorf("Expected 2 players in the snapshot, got %d", len(update.Players))
	}
	if update.HostID != "host_session" {
		t.Errorf("Expected hostId host_session, got %q", update.HostID)
	}
	if update.Settings.TimeLimit != 60 || update.Settings.GuessCountdown != 15 {
		t.Errorf("Expected settings to round-trip, got %+v", update.Settings)
	}
}
