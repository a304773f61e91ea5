package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wfunc/geoguess/broadcast"
	"github.com/wfunc/geoguess/logger"
	"github.com/wfunc/geoguess/models"
	"github.com/wfunc/geoguess/monitor"
	"github.com/wfunc/geoguess/network"
	"github.com/wfunc/geoguess/room"
	geoguess_rpc "github.com/wfunc/geoguess/rpc"
	"github.com/wfunc/geoguess/session"
	"github.com/wfunc/geoguess/timer"
)

type GameServer struct {
	addr           string
	upgrader       websocket.Upgrader
	roomManager    *room.Manager
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	timers         *timer.Manager
	monitor        *monitor.Monitor
	rpcServer      *geoguess_rpc.Server
	shutdownChan   chan struct{}
}

func NewGameServer(addr, rpcAddr string, mon *monitor.Monitor, observer room.RoundObserver) *GameServer {
	s := &GameServer{
		addr:           addr,
		sessionManager: session.NewManager(),
		timers:         timer.NewManager(),
		monitor:        mon,
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	// 初始化广播器与房间管理器（广播器先建，房间管理器依赖它）
	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)
	s.roomManager = room.NewManager(s.broadcaster, s.timers)
	s.broadcaster.SetRoomManager(s.roomManager)

	s.roomManager.SetRoundObserver(func(roomID string, spawnIndex int, results []models.PlayerResult, duration time.Duration) {
		s.monitor.ObserveRoundDuration(duration)
		if observer != nil {
			observer(roomID, spawnIndex, results, duration)
		}
	})

	// 初始化RPC服务器
	rpcServer, err := geoguess_rpc.NewServer(rpcAddr)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	// 注册RPC服务
	adminService := geoguess_rpc.NewAdminService(s.roomManager)
	rpc.Register(adminService)

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()

	http.HandleFunc("/ws", s.handleWebSocket)
	logger.Log.Infof("Game server listening on %s", s.addr)
	return http.ListenAndServe(s.addr, nil)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.rpcServer.Stop()
}

func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn)
}

func (s *GameServer) handleConnection(conn *websocket.Conn) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()

	logger.Log.Infof("New connection from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())

	defer func() {
		logger.Log.Infof("Connection closed from %s, session ID: %s", wsConn.RemoteAddr(), sess.GetID())
		// 两阶段断线：先标记离线并移交房主，再做最终移除与空房清理
		s.roomManager.HandleDisconnecting(sess.GetID())
		s.roomManager.HandleDisconnect(sess.GetID())
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.monitor.SetActiveRooms(s.roomManager.Count())
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.handlePacket(sess, packet)
		}
	}
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	s.monitor.IncMessagesReceived()

	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeCreateRoom:
		s.handleCreateRoom(sess, packet)
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess, packet)
	case network.MsgTypeKickPlayer:
		s.handleKickPlayer(sess, packet)
	case network.MsgTypeToggleTeam:
		s.handleToggleTeam(sess, packet)
	case network.MsgTypeStartRound:
		s.handleStartRound(sess, packet)
	case network.MsgTypeSubmitGuess:
		s.handleSubmitGuess(sess, packet)
	case network.MsgTypeNextRound:
		s.handleNextRound(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// ack answers a request packet, echoing its sequence number.
func (s *GameServer) ack(sess *session.Session, packet *network.Packet, ack models.Ack) {
	data, err := json.Marshal(ack)
	if err != nil {
		logger.Log.Errorf("Failed to marshal ack for message %d: %v", packet.MsgID, err)
		return
	}
	if err := sess.Send(packet.MsgID, packet.Seq, data); err != nil {
		logger.Log.Warnf("Failed to send ack to session %s: %v", sess.GetID(), err)
	}
}

func (s *GameServer) ackError(sess *session.Session, packet *network.Packet, err error) {
	s.ack(sess, packet, models.Ack{OK: false, Msg: err.Error()})
}

func (s *GameServer) handleCreateRoom(sess *session.Session, packet *network.Packet) {
	// 省略的设置键保持禁用值
	req := models.CreateRoomRequest{Settings: models.Settings{TimeLimit: -1, GuessCountdown: -1}}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.ackError(sess, packet, err)
		return
	}

	r := s.roomManager.CreateRoom(sess.GetID(), req.Name, req.Settings)
	sess.SetRoom(r.ID)
	s.monitor.SetActiveRooms(s.roomManager.Count())

	logger.Log.Infof("Session %s created room %s", sess.GetID(), r.ID)
	s.ack(sess, packet, models.Ack{OK: true, RoomID: r.ID})
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req models.JoinRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.ackError(sess, packet, err)
		return
	}

	if err := s.roomManager.JoinRoom(req.RoomID, sess.GetID(), req.Name); err != nil {
		s.ackError(sess, packet, err)
		return
	}
	sess.SetRoom(req.RoomID)

	logger.Log.Infof("Session %s joined room %s", sess.GetID(), req.RoomID)
	s.ack(sess, packet, models.Ack{OK: true})
}

// handleLeaveRoom 无应答：离开是 fire-and-forget
func (s *GameServer) handleLeaveRoom(sess *session.Session, packet *network.Packet) {
	var req models.LeaveRoomRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}

	s.roomManager.LeaveRoom(req.RoomID, sess.GetID())
	sess.SetRoom("")
	s.monitor.SetActiveRooms(s.roomManager.Count())
}

func (s *GameServer) handleKickPlayer(sess *session.Session, packet *network.Packet) {
	var req models.KickPlayerRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.ackError(sess, packet, err)
		return
	}

	if err := s.roomManager.Kick(req.RoomID, sess.GetID(), req.PlayerID); err != nil {
		s.ackError(sess, packet, err)
		return
	}
	if target, ok := s.sessionManager.Get(req.PlayerID); ok {
		target.SetRoom("")
	}

	s.ack(sess, packet, models.Ack{OK: true})
}

func (s *GameServer) handleToggleTeam(sess *session.Session, packet *network.Packet) {
	var req models.ToggleTeamRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.ackError(sess, packet, err)
		return
	}

	if err := s.roomManager.ToggleTeam(req.RoomID, sess.GetID(), req.PlayerID); err != nil {
		s.ackError(sess, packet, err)
		return
	}
	s.ack(sess, packet, models.Ack{OK: true})
}

func (s *GameServer) handleStartRound(sess *session.Session, packet *network.Packet) {
	var req models.StartRoundRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.ackError(sess, packet, err)
		return
	}

	if err := s.roomManager.StartRound(req.RoomID, sess.GetID(), req.SpawnIndex); err != nil {
		s.ackError(sess, packet, err)
		return
	}
	s.monitor.IncRoundsStarted()
	s.ack(sess, packet, models.Ack{OK: true})
}

func (s *GameServer) handleSubmitGuess(sess *session.Session, packet *network.Packet) {
	var req models.SubmitGuessRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.ackError(sess, packet, err)
		return
	}

	if err := s.roomManager.SubmitGuess(req.RoomID, sess.GetID(), req.Lat, req.Lng, req.Time); err != nil {
		s.ackError(sess, packet, err)
		return
	}
	s.monitor.IncGuessesSubmitted()
	s.ack(sess, packet, models.Ack{OK: true})
}

func (s *GameServer) handleNextRound(sess *session.Session, packet *network.Packet) {
	var req models.NextRoundRequest
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.ackError(sess, packet, err)
		return
	}

	if err := s.roomManager.NextRound(req.RoomID, sess.GetID()); err != nil {
		s.ackError(sess, packet, err)
		return
	}
	s.ack(sess, packet, models.Ack{OK: true})
}
