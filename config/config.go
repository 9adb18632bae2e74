package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"garden/game"
	"garden/protocol"
)

type Config struct {
	Addr          string
	Ruleset       game.Ruleset
	TickHz        int
	BroadcastHz   int
	Codec         string
	ViewerQueue   int
	AnnotationTTL time.Duration
	Seed          uint64

	tuning game.Tuning
}

// InitConfig loads dotenv files into the process environment. Missing files
// are skipped.
func InitConfig(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
		log.Printf("loaded environment from %s", f)
	}
	return nil
}

func GetEnvVariable(v string) (string, error) {
	if v == "" {
		return "", fmt.Errorf("input param empty")
	}
	b := os.Getenv(v)
	if b == "" {
		return "", fmt.Errorf("failed to get variable for %s", v)
	}

	return b, nil

}

// Load reads dotenv files and then the environment. Unset variables keep
// their defaults; malformed ones are errors.
func Load(files ...string) (Config, error) {
	if err := InitConfig(files...); err != nil {
		return Config{}, err
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	c := Config{
		Addr:          ":3000",
		Ruleset:       game.RulesetFull,
		Codec:         protocol.CodecJSON,
		ViewerQueue:   8,
		AnnotationTTL: 5 * time.Second,
		Seed:          uint64(time.Now().UnixNano()),
	}
	if port, err := GetEnvVariable("PORT"); err == nil {
		c.Addr = ":" + port
	}
	if addr, err := GetEnvVariable("GARDEN_ADDR"); err == nil {
		c.Addr = addr
	}
	if r, err := GetEnvVariable("GARDEN_RULESET"); err == nil {
		c.Ruleset = game.Ruleset(r)
	}
	if codec, err := GetEnvVariable("GARDEN_CODEC"); err == nil {
		c.Codec = codec
	}

	c.tuning = game.DefaultTuning()
	if c.Ruleset == game.RulesetSimple {
		c.tuning = game.SimpleTuning()
	}
	c.TickHz = protocol.SimTickHz
	if c.Ruleset == game.RulesetSimple {
		c.TickHz = protocol.SimpleTickHz
	}

	p := parser{}
	p.intVar("GARDEN_TICK_HZ", &c.TickHz)
	c.BroadcastHz = c.TickHz
	p.intVar("GARDEN_BROADCAST_HZ", &c.BroadcastHz)
	p.intVar("GARDEN_VIEWER_QUEUE", &c.ViewerQueue)
	p.durationVar("GARDEN_ANNOTATION_TTL", &c.AnnotationTTL)
	p.uintVar("GARDEN_SEED", &c.Seed)

	t := &c.tuning
	p.floatVar("GARDEN_WIDTH", &t.Width)
	p.floatVar("GARDEN_SESSION_GROUND", &t.SessionGround)
	p.floatVar("GARDEN_ENTITY_WIDTH", &t.EntityWidth)
	p.floatVar("GARDEN_SPEED", &t.Speed)
	p.floatVar("GARDEN_JUMP_IMPULSE", &t.JumpImpulse)
	p.floatVar("GARDEN_GRAVITY", &t.Gravity)
	p.floatVar("GARDEN_BALL_GROUND", &t.BallGround)
	p.floatVar("GARDEN_BALL_RADIUS", &t.BallRadius)
	p.floatVar("GARDEN_BALL_GRAVITY", &t.BallGravity)
	p.floatVar("GARDEN_AIR_RESISTANCE", &t.BallAirResistance)
	p.floatVar("GARDEN_GROUND_FRICTION", &t.BallGroundFric)
	p.floatVar("GARDEN_BOUNCE_DECAY", &t.BallBounceDecay)
	p.floatVar("GARDEN_PUSH_FORCE", &t.BallPushForce)
	p.floatVar("GARDEN_PUSH_DOWN_BIAS", &t.BallPushDownBias)
	if p.err != nil {
		return Config{}, p.err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Tuning returns the playfield constants for the configured ruleset.
func (c Config) Tuning() game.Tuning {
	if c.tuning.Width == 0 {
		if c.Ruleset == game.RulesetSimple {
			return game.SimpleTuning()
		}
		return game.DefaultTuning()
	}
	return c.tuning
}

func (c Config) Validate() error {
	switch c.Ruleset {
	case game.RulesetFull, game.RulesetSimple:
	default:
		return fmt.Errorf("unknown ruleset %q", c.Ruleset)
	}
	if _, err := protocol.CodecFor(c.Codec); err != nil {
		return err
	}
	if c.TickHz <= 0 {
		return fmt.Errorf("tick rate must be > 0, got %d", c.TickHz)
	}
	if c.BroadcastHz <= 0 {
		return fmt.Errorf("broadcast rate must be > 0, got %d", c.BroadcastHz)
	}
	if c.ViewerQueue <= 0 {
		return fmt.Errorf("viewer queue must be > 0, got %d", c.ViewerQueue)
	}
	t := c.Tuning()
	if t.Width <= t.EntityWidth || t.Width <= 2*t.BallRadius {
		return fmt.Errorf("playfield width %v too small", t.Width)
	}
	return nil
}

// parser keeps the first error so Load can read every variable in one pass.
type parser struct {
	err error
}

func (p *parser) lookup(name string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, err := GetEnvVariable(name)
	return v, err == nil
}

func (p *parser) fail(name, v string, err error) {
	p.err = fmt.Errorf("%s=%q: %w", name, v, err)
}

func (p *parser) intVar(name string, dst *int) {
	v, ok := p.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = n
}

func (p *parser) uintVar(name string, dst *uint64) {
	v, ok := p.lookup(name)
	if !ok {
		return
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = n
}

func (p *parser) floatVar(name string, dst *float64) {
	v, ok := p.lookup(name)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = f
}

func (p *parser) durationVar(name string, dst *time.Duration) {
	v, ok := p.lookup(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(name, v, err)
		return
	}
	*dst = d
}
