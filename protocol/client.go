package protocol

import "encoding/json"

//input structs coming in from the client.

type Join struct {
	Name string `json:"name" jsonschema:"description=Display name shown above the session"`
}

type Input struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Jump  bool `json:"jump"`
}

type Chat struct {
	Text string `json:"text" jsonschema:"maxLength=200"`
}

// DecodeInput never fails. Missing fields, non-boolean fields and payloads
// that are not objects all read as false.
func DecodeInput(raw json.RawMessage) Input {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Input{}
	}
	flag := func(k string) bool {
		v, _ := fields[k].(bool)
		return v
	}
	return Input{Left: flag("left"), Right: flag("right"), Jump: flag("jump")}
}

// DecodeJoin accepts either {"name": "..."} or a bare JSON string.
func DecodeJoin(raw json.RawMessage) Join {
	var j Join
	if err := json.Unmarshal(raw, &j); err == nil {
		return j
	}
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return Join{Name: name}
	}
	return Join{}
}

// MaxChatRunes bounds annotation text.
const MaxChatRunes = 200

// DecodeChat accepts {"text": "..."} or a bare JSON string and trims the
// text to MaxChatRunes.
func DecodeChat(raw json.RawMessage) Chat {
	var c Chat
	if err := json.Unmarshal(raw, &c); err != nil {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return Chat{}
		}
		c.Text = text
	}
	if r := []rune(c.Text); len(r) > MaxChatRunes {
		c.Text = string(r[:MaxChatRunes])
	}
	return c
}
