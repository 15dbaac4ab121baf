package marketapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/guttosm/b3view/internal/domain/models"
)

const (
	fieldDate   = "data_pregao"
	fieldTicker = "ticker"
)

// requiredFields must be numeric on every record.
var requiredFields = []string{string(models.ModeVolume), string(models.ModeFechamento)}

// directoryPayload ignores the "total" field the backend also sends.
type directoryPayload struct {
	Ativos *json.RawMessage `json:"ativos"`
}

// decodeDirectory validates {"ativos": [string, ...]}.
func decodeDirectory(body []byte) ([]string, error) {
	var p directoryPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if p.Ativos == nil || isNull(*p.Ativos) {
		return nil, &SchemaError{Index: -1, Field: "ativos", Reason: "missing"}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(*p.Ativos, &raw); err != nil {
		return nil, &SchemaError{Index: -1, Field: "ativos", Reason: "not an array"}
	}

	tickers := make([]string, 0, len(raw))
	for i, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, &SchemaError{Index: i, Reason: "ticker is not a string"}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &SchemaError{Index: i, Reason: "empty ticker"}
		}
		tickers = append(tickers, s)
	}
	return tickers, nil
}

// decodeRecords validates the record array of GET /ativos/{ticker}.
//
// Each element must be an object with a YYYY-MM-DD "data_pregao" string and
// numeric "volume" and "fechamento". Any other numeric column is kept in
// Record.Fields; nulls on optional columns are skipped.
func decodeRecords(body []byte) ([]models.Record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &SchemaError{Index: -1, Reason: "expected an array of records"}
	}

	records := make([]models.Record, 0, len(raw))
	for i, item := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			return nil, &SchemaError{Index: i, Reason: "record is not an object"}
		}

		rec := models.Record{Fields: make(map[string]float64, len(obj))}

		dateRaw, ok := obj[fieldDate]
		if !ok {
			return nil, &SchemaError{Index: i, Field: fieldDate, Reason: "missing"}
		}
		if err := json.Unmarshal(dateRaw, &rec.Date); err != nil {
			return nil, &SchemaError{Index: i, Field: fieldDate, Reason: "not a string"}
		}
		if !isISODate(rec.Date) {
			return nil, &SchemaError{Index: i, Field: fieldDate, Reason: fmt.Sprintf("%q is not YYYY-MM-DD", rec.Date)}
		}

		for k, v := range obj {
			switch k {
			case fieldDate:
				continue
			case fieldTicker:
				_ = json.Unmarshal(v, &rec.Ticker)
				continue
			}
			if isNull(v) {
				continue
			}
			var f float64
			if err := json.Unmarshal(v, &f); err == nil {
				rec.Fields[k] = f
			}
		}

		for _, f := range requiredFields {
			if _, ok := rec.Fields[f]; !ok {
				return nil, &SchemaError{Index: i, Field: f, Reason: "missing or not a number"}
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// isISODate checks the YYYY-MM-DD shape by characters only.
func isISODate(s string) bool {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return false
	}
	for _, p := range parts {
		for _, c := range p {
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}
