package models

// Record is one trading day of a ticker as returned by GET /ativos/{ticker}.
//
// Fields:
//   - Date: the literal "data_pregao" value (YYYY-MM-DD). It is kept as text so
//     labels can be rebuilt digit by digit without any timezone conversion.
//   - Ticker: the "ticker" column when the backend sends it.
//   - Fields: every numeric column of the row keyed by its JSON name
//     ("fechamento", "volume", "abertura", ...).
type Record struct {
	Date   string             `json:"data_pregao" example:"2025-01-02"`
	Ticker string             `json:"ticker,omitempty" example:"PETR4"`
	Fields map[string]float64 `json:"fields"`
}

// Value returns the field plotted by mode and whether the row carries it.
func (r Record) Value(mode DisplayMode) (float64, bool) {
	v, ok := r.Fields[string(mode)]
	return v, ok
}
