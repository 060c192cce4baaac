package stats

import (
	"math"
	"math/bits"

	"github.com/zaesho/slp-dissect/slp"
)

// Analog thresholds: a joystick is "engaged" past the deadzone, a trigger
// past the light-press point. Matching the game's own UCF-era constants.
const (
	joystickDeadzone = 0.2875
	triggerThreshold = 0.3
)

// digitalButtonMask covers the logical buttons counted as discrete presses.
const digitalButtonMask = slp.ButtonA | slp.ButtonB | slp.ButtonX | slp.ButtonY |
	slp.ButtonZ | slp.ButtonStart | slp.ButtonL | slp.ButtonR |
	slp.ButtonDpadUp | slp.ButtonDpadDown | slp.ButtonDpadLeft | slp.ButtonDpadRight

// PlayerInputs tallies debounced input activations: a held button counts
// once per press, an analog stick once per region it moves into.
type PlayerInputs struct {
	PlayerIndex int `json:"playerIndex"`
	Digital     int `json:"digital"`
	Joystick    int `json:"joystick"`
	CStick      int `json:"cStick"`
	Trigger     int `json:"trigger"`
	Total       int `json:"total"`
}

// stickRegion quantizes an analog stick into the deadzone (0) or one of
// eight directions (1-8).
func stickRegion(x, y float32) int {
	dx := math.Abs(float64(x)) >= joystickDeadzone
	dy := math.Abs(float64(y)) >= joystickDeadzone
	switch {
	case !dx && !dy:
		return 0
	case dx && dy:
		if x > 0 {
			if y > 0 {
				return 2 // NE
			}
			return 4 // SE
		}
		if y > 0 {
			return 8 // NW
		}
		return 6 // SW
	case dx:
		if x > 0 {
			return 3 // E
		}
		return 7 // W
	default:
		if y > 0 {
			return 1 // N
		}
		return 5 // S
	}
}

type inputState struct {
	buttons       uint16
	joystick      int
	cstick        int
	triggerActive bool
}

// InputsComputer counts input activations from pre-frame controller data.
type InputsComputer struct {
	players []int
	inputs  map[int]*PlayerInputs
	state   map[int]*inputState
}

func NewInputsComputer() *InputsComputer {
	return &InputsComputer{}
}

func (c *InputsComputer) Setup(settings *slp.GameStart) {
	c.players = settings.ActivePlayers()
	c.inputs = make(map[int]*PlayerInputs, len(c.players))
	c.state = make(map[int]*inputState, len(c.players))
	for _, idx := range c.players {
		c.inputs[idx] = &PlayerInputs{PlayerIndex: idx}
		c.state[idx] = &inputState{}
	}
}

func (c *InputsComputer) ProcessFrame(frame *slp.Frame, all FrameHistory) {
	for _, idx := range c.players {
		pre := frame.Players[idx].Pre
		if pre == nil {
			continue
		}
		in := c.inputs[idx]
		st := c.state[idx]

		buttons := pre.PhysicalButtons & digitalButtonMask
		if pressed := buttons &^ st.buttons; pressed != 0 {
			in.Digital += bits.OnesCount16(pressed)
		}
		st.buttons = buttons

		if region := stickRegion(pre.JoystickX, pre.JoystickY); region != st.joystick {
			if region != 0 {
				in.Joystick++
			}
			st.joystick = region
		}
		if region := stickRegion(pre.CStickX, pre.CStickY); region != st.cstick {
			if region != 0 {
				in.CStick++
			}
			st.cstick = region
		}

		trigger := pre.PhysicalLTrigger
		if pre.PhysicalRTrigger > trigger {
			trigger = pre.PhysicalRTrigger
		}
		active := trigger >= triggerThreshold
		if active && !st.triggerActive {
			in.Trigger++
		}
		st.triggerActive = active

		in.Total = in.Digital + in.Joystick + in.CStick + in.Trigger
	}
}

// Inputs returns per-player tallies in slot order.
func (c *InputsComputer) Inputs() []PlayerInputs {
	out := make([]PlayerInputs, 0, len(c.players))
	for _, idx := range c.players {
		out = append(out, *c.inputs[idx])
	}
	return out
}

func (c *InputsComputer) Fetch() any {
	return c.Inputs()
}
