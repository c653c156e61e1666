package config

import (
	"regexp"
	"strconv"
)

// MaxMCDSReads is the largest read count accepted in an MCDS readout mode.
const MaxMCDSReads = 32

var mcdsPattern = regexp.MustCompile(`^MCDS([0-9]+)$`)

// ReadoutMode is a parsed infrared readout mode.
type ReadoutMode struct {
	Multiple bool // MCDS rather than plain CDS
	Reads    int  // reads averaged; 1 for CDS
}

// String renders the mode back to its canonical spelling.
func (m ReadoutMode) String() string {
	if !m.Multiple {
		return "CDS"
	}
	return "MCDS" + strconv.Itoa(m.Reads)
}

// ParseReadoutMode accepts "CDS" or "MCDS<n>" with n in 1..32.
func ParseReadoutMode(s string) (ReadoutMode, error) {
	if s == "CDS" {
		return ReadoutMode{Reads: 1}, nil
	}

	m := mcdsPattern.FindStringSubmatch(s)
	if m == nil {
		return ReadoutMode{}, &DetectorConfigError{
			Field:  "readoutmode",
			Value:  s,
			Reason: "must be CDS or MCDSn",
		}
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > MaxMCDSReads {
		return ReadoutMode{}, &DetectorConfigError{
			Field:  "readoutmode",
			Value:  s,
			Reason: "MCDS read count must be in 1-" + strconv.Itoa(MaxMCDSReads),
		}
	}
	return ReadoutMode{Multiple: true, Reads: n}, nil
}
