package chart

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/guttosm/b3view/internal/domain/models"
)

// Export is a rendered chart ready to be downloaded.
type Export struct {
	Filename string
	PNG      []byte
}

// ExportFilename is "grafico_{TICKER}_{mode}.png".
func ExportFilename(ticker string, mode models.DisplayMode) string {
	return fmt.Sprintf("grafico_%s_%s.png", ticker, mode)
}

// DataURL encodes the image as a data:image/png;base64 URL.
func (e Export) DataURL() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(e.PNG)
}

// ExportInstance renders the visible window of inst to PNG.
func ExportInstance(inst *Instance, width, height int) (Export, error) {
	if inst == nil {
		return Export{}, ErrNoChart
	}
	if inst.Destroyed() {
		return Export{}, ErrDestroyed
	}

	s := inst.Series()
	var buf bytes.Buffer
	if err := RenderPNG(&buf, s, inst.Viewport(), width, height); err != nil {
		return Export{}, fmt.Errorf("render %s/%s: %w", s.Ticker, s.Mode, err)
	}
	return Export{Filename: ExportFilename(s.Ticker, s.Mode), PNG: buf.Bytes()}, nil
}
