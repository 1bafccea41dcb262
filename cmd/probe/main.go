package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"staminad.ai/internal/protocol"
	"staminad.ai/internal/sim/motion"
)

// step holds one motion state for a while.
type step struct {
	State motion.State
	Hold  time.Duration
}

func main() {
	var (
		url     = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name    = flag.String("name", "probe", "player name")
		script  = flag.String("script", "WALK@1000,DASH@2000,STANDBY@2000,SWIM_DASH@1500,SWIM_MOVE@4000", "comma separated STATE@ms steps")
		vehicle = flag.Bool("vehicle", false, "spawn a vehicle and run the script on it")
		loop    = flag.Bool("loop", false, "repeat the script until interrupted")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[probe] ", log.LstdFlags|log.Lmicroseconds)

	steps, err := parseScript(*script)
	if err != nil {
		logger.Fatalf("script: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		MaxQueue:        32,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}
	var welcome protocol.WelcomeMsg
	if err := conn.ReadJSON(&welcome); err != nil || welcome.Type != protocol.TypeWelcome {
		logger.Fatalf("expected WELCOME: %v", err)
	}
	logger.Printf("WELCOME player=%s avatar=%d scene=%s max_stamina=%v interval_ms=%d",
		welcome.PlayerID, welcome.AvatarEntityID, welcome.SceneID, welcome.MaxStamina, welcome.IntervalMs)

	target := make(chan uint32, 1)
	if *vehicle {
		req := protocol.VehicleReqMsg{Type: protocol.TypeSpawnVehicle, ProtocolVersion: protocol.Version}
		if err := conn.WriteJSON(req); err != nil {
			logger.Fatalf("spawn vehicle: %v", err)
		}
	} else {
		target <- welcome.AvatarEntityID
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		readLoop(conn, logger, target)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	var entityID uint32
	select {
	case entityID = <-target:
	case <-done:
		return
	case <-stop:
		return
	}

	pos := [3]float64{}
	for {
		for _, st := range steps {
			if st.State.IsGrounded() {
				pos[0]++
			}
			m := protocol.MotionMsg{
				Type:            protocol.TypeMotion,
				ProtocolVersion: protocol.Version,
				EntityID:        entityID,
				State:           st.State.String(),
				Pos:             &pos,
			}
			if err := conn.WriteJSON(m); err != nil {
				logger.Printf("send MOTION: %v", err)
				return
			}
			logger.Printf("-> %s for %s", st.State, st.Hold)
			select {
			case <-time.After(st.Hold):
			case <-done:
				return
			case <-stop:
				return
			}
		}
		if !*loop {
			return
		}
	}
}

func readLoop(conn *websocket.Conn, logger *log.Logger, target chan<- uint32) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypePropNotify:
			var pn protocol.PropNotifyMsg
			if json.Unmarshal(msg, &pn) == nil {
				for _, p := range pn.Props {
					logger.Printf("t=%d %s=%v", pn.SceneTime, p.Name, p.Value)
				}
			}
		case protocol.TypeVehicle:
			var v protocol.VehicleMsg
			if json.Unmarshal(msg, &v) == nil {
				logger.Printf("VEHICLE id=%d alive=%v stamina=%v", v.EntityID, v.Alive, v.CurStamina)
				if v.Alive {
					select {
					case target <- v.EntityID:
					default:
					}
				}
			}
		case protocol.TypeVehicleStamina:
			var v protocol.VehicleStaminaMsg
			if json.Unmarshal(msg, &v) == nil {
				logger.Printf("t=%d vehicle=%d stamina=%v", v.SceneTime, v.EntityID, v.CurStamina)
			}
		case protocol.TypeSafeReturn:
			var sr protocol.SafeReturnMsg
			if json.Unmarshal(msg, &sr) == nil {
				logger.Printf("SAFE_RETURN reason=%s pos=%v hp=%v", sr.Reason, sr.Pos, sr.HP)
			}
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if json.Unmarshal(msg, &e) == nil {
				logger.Printf("ERROR %s: %s", e.Code, e.Message)
			}
		}
	}
}

func parseScript(s string) ([]step, error) {
	var out []step
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, ms, ok := strings.Cut(part, "@")
		if !ok {
			return nil, fmt.Errorf("step %q: want STATE@ms", part)
		}
		st, ok := motion.Parse(name)
		if !ok {
			return nil, fmt.Errorf("step %q: unknown motion state", part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(ms))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("step %q: bad duration", part)
		}
		out = append(out, step{State: st, Hold: time.Duration(n) * time.Millisecond})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty script")
	}
	return out, nil
}
