package config

// DomeLamp is the state of the dome flat-field lamps.
type DomeLamp int

const (
	DomeLampUnset DomeLamp = iota // not commanded
	DomeLampOn
	DomeLampOff
	DomeLampArcs // NIRES arc configuration of the dome lamps
)

// DomeLampFor returns DomeLampOff when off is set, DomeLampOn otherwise.
func DomeLampFor(off bool) DomeLamp {
	if off {
		return DomeLampOff
	}
	return DomeLampOn
}

// IsSet reports whether the lamp state was commanded.
func (l DomeLamp) IsSet() bool {
	return l != DomeLampUnset
}

// String returns the lamp state as used in config names.
func (l DomeLamp) String() string {
	switch l {
	case DomeLampOn:
		return "on"
	case DomeLampOff:
		return "off"
	case DomeLampArcs:
		return "niresarcs"
	default:
		return "unset"
	}
}

// Value returns the exported form: nil, true, false or "niresarcs".
func (l DomeLamp) Value() any {
	switch l {
	case DomeLampOn:
		return true
	case DomeLampOff:
		return false
	case DomeLampArcs:
		return "niresarcs"
	default:
		return nil
	}
}

// OptionalString returns nil for an empty string, s otherwise.
func OptionalString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
