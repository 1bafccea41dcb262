package motion

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]State{
		"SWIM_MOVE":          SwimMove,
		"MOTION_SWIM_MOVE":   SwimMove,
		" dash ":             Dash,
		"SKIFF_POWERED_DASH": SkiffPoweredDash,
	}
	for in, want := range cases {
		got, ok := Parse(in)
		if !ok || got != want {
			t.Fatalf("Parse(%q) = %v,%v want %v", in, got, ok, want)
		}
	}
	if _, ok := Parse("MOONWALK"); ok {
		t.Fatalf("expected unknown state to fail")
	}
}

func TestStringRoundTrip(t *testing.T) {
	for s := None; s < numStates; s++ {
		got, ok := Parse(s.String())
		if !ok || got != s {
			t.Fatalf("round trip %d: got %v,%v", s, got, ok)
		}
	}
	if State(200).String() != "UNKNOWN" {
		t.Fatalf("expected UNKNOWN for out-of-range state")
	}
}

func TestIsSwim(t *testing.T) {
	for _, s := range []State{SwimMove, SwimIdle, SwimDash, SwimJump} {
		if !s.IsSwim() {
			t.Fatalf("%v should be a swim state", s)
		}
	}
	for _, s := range []State{Standby, Dash, Climb, SkiffDash, Fly} {
		if s.IsSwim() {
			t.Fatalf("%v should not be a swim state", s)
		}
	}
}

func TestIsGrounded(t *testing.T) {
	if !Walk.IsGrounded() || SwimMove.IsGrounded() || Climb.IsGrounded() {
		t.Fatalf("grounded classification mismatch")
	}
}
