package protocol

type Welcome struct {
	SessionID   string `json:"sessionId"`
	TickHz      int    `json:"tickHz"`
	BroadcastHz int    `json:"broadcastHz"`
	Ruleset     string `json:"ruleset"`
}

// State is a full world snapshot. Object is absent in the simple ruleset.
type State struct {
	Tick       int                        `json:"tick"`
	ServerTime int64                      `json:"serverTime" jsonschema:"description=Unix milliseconds when the server built the snapshot"`
	Sessions   map[string]SessionSnapshot `json:"sessions"`
	Object     *ObjectSnapshot            `json:"object,omitempty"`
}

type SessionSnapshot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	VX    float64 `json:"vx"`
	VY    float64 `json:"vy"`
	Color string  `json:"color"`
	Name  string  `json:"name"`
	Chat  string  `json:"chat,omitempty"`
}

type ObjectSnapshot struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	VX     float64 `json:"vx"`
	VY     float64 `json:"vy"`
	Radius float64 `json:"radius"`
}
