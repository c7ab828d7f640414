package panel

// State is a step of the controller bring-up. States only move forward,
// one at a time.
type State uint8

const (
	StateReset State = iota
	StateSoftwareReset
	StateSleepOut
	StateColorModeSet
	StateAddressModeSet
	StateWindowSet
	StateDisplayOn
	StateReady
)

func (s State) String() string {
	switch s {
	case StateReset:
		return "reset"
	case StateSoftwareReset:
		return "software-reset"
	case StateSleepOut:
		return "sleep-out"
	case StateColorModeSet:
		return "color-mode-set"
	case StateAddressModeSet:
		return "address-mode-set"
	case StateWindowSet:
		return "window-set"
	case StateDisplayOn:
		return "display-on"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Power is the panel power state once the controller is ready.
type Power uint8

const (
	PowerOff Power = iota
	PowerAsleep
	PowerOn
)

func (p Power) String() string {
	switch p {
	case PowerAsleep:
		return "asleep"
	case PowerOn:
		return "on"
	default:
		return "off"
	}
}
