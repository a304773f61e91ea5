package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/geoguess/logger"
	"github.com/wfunc/geoguess/room"
)

// Server manages the RPC listener for the ops inspection surface.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// AdminService exposes read-only room inspection over net/rpc.
type AdminService struct {
	roomManager *room.Manager
}

// NewAdminService creates a new AdminService.
func NewAdminService(rm *room.Manager) *AdminService {
	return &AdminService{roomManager: rm}
}

type ListRoomsArgs struct{}

type ListRoomsReply struct {
	RoomIDs []string
}

func (as *AdminService) ListRooms(args *ListRoomsArgs, reply *ListRoomsReply) error {
	reply.RoomIDs = as.roomManager.RoomIDs()
	return nil
}

type GetRoomArgs struct {
	RoomID string
}

type GetRoomReply struct {
	HostID      string
	Status      string
	PlayerCount int
	SpawnIndex  int
}

func (as *AdminService) GetRoom(args *GetRoomArgs, reply *GetRoomReply) error {
	r, exists := as.roomManager.GetRoom(args.RoomID)
	if !exists {
		return room.ErrRoomNotFound
	}

	update := r.Snapshot()
	reply.HostID = update.HostID
	reply.Status = string(r.Status())
	reply.PlayerCount = len(update.Players)
	reply.SpawnIndex = r.CurrentSpawnIndex()
	return nil
}
