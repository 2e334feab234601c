package models

import (
	"github.com/gorilla/websocket"
)

// Client is one websocket connection bound to a game session.
type Client struct {
	Conn          *websocket.Conn
	WalletAddress string
	SessionID     uint
	Role          string // "playerA" or "playerB"
}
