package main

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
)

const (
	MsgTypeCreateRoom  = 101
	MsgTypeJoinRoom    = 102
	MsgTypeStartRound  = 201
	MsgTypeSubmitGuess = 202
	MsgTypeNextRound   = 203
)

var seq uint16

// send formats and sends a message to the WebSocket server.
func send(c *websocket.Conn, msgID uint16, data []byte) error {
	seq++
	packet := make([]byte, 6+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], seq)
	binary.BigEndian.PutUint16(packet[4:6], uint16(len(data)))
	copy(packet[6:], data)

	return c.WriteMessage(websocket.BinaryMessage, packet)
}

func main() {
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	u := url.URL{Scheme: "ws", Host: "localhost:3000", Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	// Read loop
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}
			if len(message) < 6 {
				log.Printf("Received invalid packet of size %d", len(message))
				continue
			}
			msgID := binary.BigEndian.Uint16(message[0:2])
			log.Printf("<- msg %d: %s", msgID, message[6:])
		}
	}()

	log.Println("Commands: create <name> | join <roomId> <name> | start <roomId> <spawnIndex> | guess <roomId> <lat> <lng> | next <roomId>")

	// Input loop
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}

			var (
				msgID   uint16
				payload interface{}
			)
			switch fields[0] {
			case "create":
				name := "Host"
				if len(fields) > 1 {
					name = fields[1]
				}
				msgID = MsgTypeCreateRoom
				payload = map[string]interface{}{
					"name":     name,
					"settings": map[string]int{"timeLimit": -1, "guessCountdown": -1},
				}
			case "join":
				if len(fields) < 3 {
					log.Println("Usage: join <roomId> <name>")
					continue
				}
				msgID = MsgTypeJoinRoom
				payload = map[string]string{"roomId": fields[1], "name": fields[2]}
			case "start":
				if len(fields) < 3 {
					log.Println("Usage: start <roomId> <spawnIndex>")
					continue
				}
				idx, _ := strconv.Atoi(fields[2])
				msgID = MsgTypeStartRound
				payload = map[string]interface{}{"roomId": fields[1], "spawnIndex": idx}
			case "guess":
				if len(fields) < 4 {
					log.Println("Usage: guess <roomId> <lat> <lng>")
					continue
				}
				lat, _ := strconv.ParseFloat(fields[2], 64)
				lng, _ := strconv.ParseFloat(fields[3], 64)
				msgID = MsgTypeSubmitGuess
				payload = map[string]interface{}{"roomId": fields[1], "lat": lat, "lng": lng}
			case "next":
				if len(fields) < 2 {
					log.Println("Usage: next <roomId>")
					continue
				}
				msgID = MsgTypeNextRound
				payload = map[string]string{"roomId": fields[1]}
			default:
				log.Printf("Unknown command: %s", fields[0])
				continue
			}

			data, err := json.Marshal(payload)
			if err != nil {
				log.Printf("Marshal failed: %v", err)
				continue
			}
			if err := send(c, msgID, data); err != nil {
				log.Printf("Send failed: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted, closing connection")
		c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}
