package game

// Ruleset selects between the full playfield (sessions plus ball) and the
// simplified one that only moves sessions.
type Ruleset string

const (
	RulesetFull   Ruleset = "full"
	RulesetSimple Ruleset = "simple"
)

const (
	PlayfieldWidth    = 800.0
	SessionGround     = 300.0 // y of a session's top-left corner when standing
	BallGround        = 350.0
	EntityWidth       = 30.0
	SessionSpeed      = 3.0
	JumpImpulse       = 8.0
	SessionGravity    = 0.5
	BallRadius        = 15.0
	BallGravity       = 0.12
	BallAirResistance = 0.95
	BallGroundFric    = 0.97
	BallBounceDecay   = 0.45
	BallPushForce     = 2.7
	BallPushDownBias  = 0.8
	BallStartX        = 400.0
	BallStartY        = 100.0
	SpawnMinX         = 100.0
	SpawnRangeX       = 400.0
)

// Tuning holds every playfield constant the engine reads. The zero value is
// not useful; start from DefaultTuning.
type Tuning struct {
	Ruleset Ruleset

	Width         float64
	SessionGround float64
	EntityWidth   float64
	Speed         float64
	JumpImpulse   float64
	Gravity       float64

	BallGround        float64
	BallRadius        float64
	BallGravity       float64
	BallAirResistance float64
	BallGroundFric    float64
	BallBounceDecay   float64
	BallPushForce     float64
	BallPushDownBias  float64
}

func DefaultTuning() Tuning {
	return Tuning{
		Ruleset:           RulesetFull,
		Width:             PlayfieldWidth,
		SessionGround:     SessionGround,
		EntityWidth:       EntityWidth,
		Speed:             SessionSpeed,
		JumpImpulse:       JumpImpulse,
		Gravity:           SessionGravity,
		BallGround:        BallGround,
		BallRadius:        BallRadius,
		BallGravity:       BallGravity,
		BallAirResistance: BallAirResistance,
		BallGroundFric:    BallGroundFric,
		BallBounceDecay:   BallBounceDecay,
		BallPushForce:     BallPushForce,
		BallPushDownBias:  BallPushDownBias,
	}
}

// SimpleTuning is the reduced ruleset: no ball and a slightly stronger jump.
func SimpleTuning() Tuning {
	t := DefaultTuning()
	t.Ruleset = RulesetSimple
	t.JumpImpulse = 10
	return t
}

// BallEnabled reports whether the ball and its collision pass run.
func (t Tuning) BallEnabled() bool {
	return t.Ruleset != RulesetSimple
}

// SessionRadius is the collision radius of a session's body.
func (t Tuning) SessionRadius() float64 {
	return t.EntityWidth / 2
}

func (t Tuning) maxX() float64 {
	return t.Width - t.EntityWidth
}
