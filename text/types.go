package text

import (
	"fmt"
	"strings"

	"golang.org/x/image/font"
)

// unknownStr is the string returned for unknown enum values.
const unknownStr = "Unknown"

// Hinting specifies font hinting mode.
type Hinting int

const (
	// HintingNone disables hinting.
	HintingNone Hinting = iota
	// HintingVertical applies vertical hinting only.
	HintingVertical
	// HintingFull applies full hinting.
	HintingFull
)

// String returns the string representation of the hinting.
func (h Hinting) String() string {
	switch h {
	case HintingNone:
		return "None"
	case HintingVertical:
		return "Vertical"
	case HintingFull:
		return "Full"
	default:
		return unknownStr
	}
}

// MarshalText implements encoding.TextMarshaler.
func (h Hinting) MarshalText() ([]byte, error) {
	if h < HintingNone || h > HintingFull {
		return nil, fmt.Errorf("text: unknown hinting %d", int(h))
	}
	return []byte(strings.ToLower(h.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Accepts "none",
// "vertical" and "full" in any case.
func (h *Hinting) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "none":
		*h = HintingNone
	case "vertical":
		*h = HintingVertical
	case "full":
		*h = HintingFull
	default:
		return fmt.Errorf("text: unknown hinting %q", b)
	}
	return nil
}

// mapHinting converts Hinting to font.Hinting.
func mapHinting(h Hinting) font.Hinting {
	switch h {
	case HintingNone:
		return font.HintingNone
	case HintingVertical:
		return font.HintingVertical
	case HintingFull:
		return font.HintingFull
	default:
		return font.HintingFull
	}
}
