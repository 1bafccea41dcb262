package motion

import "strings"

// State is the motion state reported by a client for an avatar or vehicle.
type State uint8

const (
	None State = iota
	Reset
	Standby
	StandbyMove
	Walk
	Run
	Dash
	Climb
	ClimbJump
	StandbyToClimb
	Fight
	Jump
	Drop
	Fly
	SwimMove
	SwimIdle
	SwimDash
	SwimJump
	Slip
	GoUpstairs
	FallOnGround
	JumpUpWallForStandby
	JumpOffWall
	PoweredFly
	LadderIdle
	LadderMove
	LadderSlip
	StandbyToLadder
	LadderToStandby
	DangerStandby
	DangerStandbyMove
	DangerWalk
	DangerRun
	DangerDash
	ClimbIdle
	DashBeforeShake
	SitIdle
	ForceSetPos
	QuestForceDrag
	FollowRoute
	SkiffBoarding
	SkiffNormal
	SkiffDash
	SkiffPoweredDash
	DestroyVehicle
	FlyIdle
	FlySlow
	FlyFast
	AimMove
	AirCompensation

	numStates
)

var names = [numStates]string{
	None:                 "NONE",
	Reset:                "RESET",
	Standby:              "STANDBY",
	StandbyMove:          "STANDBY_MOVE",
	Walk:                 "WALK",
	Run:                  "RUN",
	Dash:                 "DASH",
	Climb:                "CLIMB",
	ClimbJump:            "CLIMB_JUMP",
	StandbyToClimb:       "STANDBY_TO_CLIMB",
	Fight:                "FIGHT",
	Jump:                 "JUMP",
	Drop:                 "DROP",
	Fly:                  "FLY",
	SwimMove:             "SWIM_MOVE",
	SwimIdle:             "SWIM_IDLE",
	SwimDash:             "SWIM_DASH",
	SwimJump:             "SWIM_JUMP",
	Slip:                 "SLIP",
	GoUpstairs:           "GO_UPSTAIRS",
	FallOnGround:         "FALL_ON_GROUND",
	JumpUpWallForStandby: "JUMP_UP_WALL_FOR_STANDBY",
	JumpOffWall:          "JUMP_OFF_WALL",
	PoweredFly:           "POWERED_FLY",
	LadderIdle:           "LADDER_IDLE",
	LadderMove:           "LADDER_MOVE",
	LadderSlip:           "LADDER_SLIP",
	StandbyToLadder:      "STANDBY_TO_LADDER",
	LadderToStandby:      "LADDER_TO_STANDBY",
	DangerStandby:        "DANGER_STANDBY",
	DangerStandbyMove:    "DANGER_STANDBY_MOVE",
	DangerWalk:           "DANGER_WALK",
	DangerRun:            "DANGER_RUN",
	DangerDash:           "DANGER_DASH",
	ClimbIdle:            "CLIMB_IDLE",
	DashBeforeShake:      "DASH_BEFORE_SHAKE",
	SitIdle:              "SIT_IDLE",
	ForceSetPos:          "FORCE_SET_POS",
	QuestForceDrag:       "QUEST_FORCE_DRAG",
	FollowRoute:          "FOLLOW_ROUTE",
	SkiffBoarding:        "SKIFF_BOARDING",
	SkiffNormal:          "SKIFF_NORMAL",
	SkiffDash:            "SKIFF_DASH",
	SkiffPoweredDash:     "SKIFF_POWERED_DASH",
	DestroyVehicle:       "DESTROY_VEHICLE",
	FlyIdle:              "FLY_IDLE",
	FlySlow:              "FLY_SLOW",
	FlyFast:              "FLY_FAST",
	AimMove:              "AIM_MOVE",
	AirCompensation:      "AIR_COMPENSATION",
}

var byName = func() map[string]State {
	m := make(map[string]State, numStates)
	for i, n := range names {
		m[n] = State(i)
	}
	return m
}()

func (s State) String() string {
	if s >= numStates {
		return "UNKNOWN"
	}
	return names[s]
}

// Parse accepts both "SWIM_MOVE" and "MOTION_SWIM_MOVE".
func Parse(name string) (State, bool) {
	name = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "MOTION_")
	s, ok := byName[name]
	return s, ok
}

// IsSwim reports whether the state keeps the entity in water.
func (s State) IsSwim() bool {
	return strings.Contains(s.String(), "SWIM")
}

// IsGrounded reports whether a position reported with this state is a
// candidate safe position (standing on solid ground).
func (s State) IsGrounded() bool {
	switch s {
	case Standby, StandbyMove, Walk, Run, Dash,
		DangerStandby, DangerStandbyMove, DangerWalk, DangerRun, DangerDash,
		SitIdle, FallOnGround:
		return true
	}
	return false
}
