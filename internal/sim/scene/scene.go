package scene

import (
	"fmt"
	"io"
	"log"

	"staminad.ai/internal/protocol"
	"staminad.ai/internal/sim/props"
	"staminad.ai/internal/sim/sched"
	"staminad.ai/internal/sim/tuning"
)

const defaultMaxHP = 100

type Config struct {
	ID     string
	Tuning tuning.Tuning
}

type JoinRequest struct {
	Name string
	Out  chan []byte
	Resp chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// Envelope carries one decoded client message into the scene loop.
// Msg is one of the protocol request message types.
type Envelope struct {
	PlayerID string
	Msg      any
}

// Scene is a single-threaded authoritative simulation of one scene.
// All state must be accessed only from the scene loop goroutine.
type Scene struct {
	cfg  Config
	tune tuning.Tuning
	log  *log.Logger

	// now is the logical scene clock in ms; it never decreases.
	now   int64
	sched *sched.Scheduler

	players  map[string]*Player
	entities map[uint32]*Entity

	nextPlayerNum uint64
	nextEntityID  uint32

	join     chan JoinRequest
	leave    chan string
	inbox    chan Envelope
	tuneCh   chan tuning.Tuning
	stateReq chan stateReq
	stop     chan struct{}

	audit []AuditLogger
}

func New(cfg Config, logger *log.Logger) (*Scene, error) {
	if cfg.ID == "" {
		cfg.ID = "scene_1"
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", cfg.ID, err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Scene{
		cfg:      cfg,
		tune:     cfg.Tuning,
		log:      logger,
		sched:    sched.New(),
		players:  map[string]*Player{},
		entities: map[uint32]*Entity{},
		join:     make(chan JoinRequest, 64),
		leave:    make(chan string, 64),
		inbox:    make(chan Envelope, 1024),
		tuneCh:   make(chan tuning.Tuning, 1),
		stateReq: make(chan stateReq, 16),
		stop:     make(chan struct{}),
	}, nil
}

func (s *Scene) ID() string { return s.cfg.ID }

func (s *Scene) Join() chan<- JoinRequest     { return s.join }
func (s *Scene) Leave() chan<- string         { return s.leave }
func (s *Scene) Inbox() chan<- Envelope       { return s.inbox }
func (s *Scene) Tuning() chan<- tuning.Tuning { return s.tuneCh }

// SetAuditLoggers must be called before Run.
func (s *Scene) SetAuditLoggers(loggers ...AuditLogger) { s.audit = loggers }

// SceneTime returns the logical clock. Loop goroutine only.
func (s *Scene) SceneTime() int64 { return s.now }

func (s *Scene) newEntityID() uint32 {
	s.nextEntityID++
	return s.nextEntityID
}

func propValues(changes []props.Change) []protocol.PropValue {
	out := make([]protocol.PropValue, 0, len(changes))
	for _, c := range changes {
		out = append(out, protocol.PropValue{ID: uint32(c.ID), Name: c.ID.String(), Value: c.Value})
	}
	return out
}
