package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMode is wrapped by ParseDisplayMode for unknown modes.
var ErrInvalidMode = errors.New("invalid display mode")

// DisplayMode selects which numeric field of a Record is plotted.
// Its value is the backend field name (e.g. "fechamento").
type DisplayMode string

const (
	ModeFechamento DisplayMode = "fechamento"
	ModeAbertura   DisplayMode = "abertura"
	ModeMaximo     DisplayMode = "maximo"
	ModeMinimo     DisplayMode = "minimo"
	ModeVolume     DisplayMode = "volume"
)

// DefaultMode is the mode a new dashboard session starts with.
const DefaultMode = ModeFechamento

// Modes lists the selectable modes in button order.
var Modes = []DisplayMode{ModeFechamento, ModeAbertura, ModeMaximo, ModeMinimo, ModeVolume}

var modeLabels = map[DisplayMode]string{
	ModeFechamento: "Preço de Fechamento",
	ModeAbertura:   "Preço de Abertura",
	ModeMaximo:     "Preço Máximo",
	ModeMinimo:     "Preço Mínimo",
	ModeVolume:     "Volume de Negociação",
}

// ParseDisplayMode normalizes s (trim + lower case) and checks it against Modes.
func ParseDisplayMode(s string) (DisplayMode, error) {
	m := DisplayMode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := modeLabels[m]; !ok {
		return "", fmt.Errorf("%w %q: use one of %s", ErrInvalidMode, s, strings.Join(modeNames(), ", "))
	}
	return m, nil
}

// Label returns the human readable name of the mode.
func (m DisplayMode) Label() string {
	if l, ok := modeLabels[m]; ok {
		return l
	}
	return string(m)
}

// IsVolume reports whether the mode plots traded volume (bar chart).
func (m DisplayMode) IsVolume() bool { return m == ModeVolume }

func (m DisplayMode) String() string { return string(m) }

func modeNames() []string {
	out := make([]string, len(Modes))
	for i, m := range Modes {
		out[i] = string(m)
	}
	return out
}
