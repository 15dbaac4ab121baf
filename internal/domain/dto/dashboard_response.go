package dto

// DirectoryResponse is returned by GET /api/v1/directory.
type DirectoryResponse struct {
	Total   int      `json:"total" example:"3"`
	Query   string   `json:"query" example:"ETR"`
	Tickers []string `json:"tickers" example:"PETR4"`
}

// ModeButton describes one display mode toggle on the page.
// Exactly one button of a StateResponse is active.
type ModeButton struct {
	Mode   string `json:"mode" example:"fechamento"`
	Label  string `json:"label" example:"Preço de Fechamento"`
	Active bool   `json:"active" example:"true"`
}

// ViewportResponse is the visible label window of the current chart.
type ViewportResponse struct {
	Min int `json:"min" example:"0"`
	Max int `json:"max" example:"249"`
}

// StateResponse mirrors the dashboard view state of the caller's session.
type StateResponse struct {
	View       string            `json:"view" example:"dashboard"`
	Ticker     string            `json:"ticker,omitempty" example:"PETR4"`
	Mode       string            `json:"mode" example:"fechamento"`
	Modes      []ModeButton      `json:"modes"`
	Records    int               `json:"records" example:"250"`
	HasChart   bool              `json:"has_chart" example:"true"`
	Viewport   *ViewportResponse `json:"viewport,omitempty"`
	Generation uint64            `json:"generation" example:"2"`
}

// ViewportRequest is the body of POST /api/v1/chart/viewport.
type ViewportRequest struct {
	Min *int `json:"min" binding:"required" example:"10"`
	Max *int `json:"max" binding:"required" example:"60"`
}

// ExportDataURLResponse is returned by GET /api/v1/chart/export?format=dataurl.
type ExportDataURLResponse struct {
	Filename string `json:"filename" example:"grafico_PETR4_fechamento.png"`
	DataURL  string `json:"data_url" example:"data:image/png;base64,iVBORw0KGgo="`
}
