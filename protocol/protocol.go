package protocol

import (
	"encoding/json"
)

const (
	MsgJoin    = "join"
	MsgInput   = "input"
	MsgChat    = "chat"
	MsgWelcome = "welcome"
	MsgState   = "state"
)

const (
	SimTickHz    = 60
	SimpleTickHz = 33
	BroadcastHz  = 60
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
