package protocol

import (
	"encoding/json"
)

// Message types carried in Envelope.T.
const (
	MsgHello   = "hello"
	MsgWelcome = "welcome"
	MsgPose    = "pose"
)

// Envelope wraps every message on the pose stream.
type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}

// Vec is a point in world space as [x, y, z].
type Vec [3]float64

// Hello is sent by a client after connecting.
type Hello struct {
	Name string `json:"name,omitempty"`
}

// Welcome is the first message a client receives.
type Welcome struct {
	ClientID string  `json:"clientId"`
	SpiderID string  `json:"spiderId"`
	TickHz   float64 `json:"tickHz"`
}

// LegPose is one leg inside a Pose.
type LegPose struct {
	ID     string `json:"id"`
	Group  int    `json:"group"`
	Joints []Vec  `json:"joints"`
	Target Vec    `json:"target"`
}

// Pose is a full snapshot of the creature after a tick.
type Pose struct {
	SpiderID string    `json:"spiderId"`
	Tick     uint64    `json:"tick"`
	Body     Vec       `json:"body"`
	Active   int       `json:"active"`
	Error    float64   `json:"error"`
	Legs     []LegPose `json:"legs"`
}
