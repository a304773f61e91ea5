package network

const (
	MsgTypeHeartbeat = 1

	// Client requests. Each is answered by an ack packet carrying the same
	// message ID and the request's sequence number.
	MsgTypeCreateRoom  = 101
	MsgTypeJoinRoom    = 102
	MsgTypeLeaveRoom   = 103
	MsgTypeKickPlayer  = 104
	MsgTypeToggleTeam  = 105
	MsgTypeStartRound  = 201
	MsgTypeSubmitGuess = 202
	MsgTypeNextRound   = 203

	// Server-push events.
	MsgTypeRoomUpdate       = 301
	MsgTypeRoundStarted     = 302
	MsgTypePlayerGuessed    = 303
	MsgTypeCountdownStarted = 304
	MsgTypeRoundEnded       = 305
	MsgTypeRoundReady       = 306
	MsgTypeKicked           = 307
)
