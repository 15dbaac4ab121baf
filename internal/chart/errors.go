package chart

import "errors"

var (
	ErrNoData        = errors.New("chart: no records to plot")
	ErrNoTicker      = errors.New("chart: no ticker selected")
	ErrBadDate       = errors.New("chart: malformed date")
	ErrMissingField  = errors.New("chart: record lacks the plotted field")
	ErrCanvasInUse   = errors.New("chart: canvas already hosts a chart")
	ErrDestroyed     = errors.New("chart: instance destroyed")
	ErrNoChart       = errors.New("chart: nothing rendered")
	ErrInvalidWindow = errors.New("chart: invalid viewport")
)
