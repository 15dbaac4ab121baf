package dashboard

import "strings"

// FilterTickers returns the tickers of dir containing query, ignoring case,
// in directory order. A blank query returns a copy of dir.
func FilterTickers(dir []string, query string) []string {
	q := strings.ToUpper(strings.TrimSpace(query))
	out := make([]string, 0, len(dir))
	for _, t := range dir {
		if q == "" || strings.Contains(strings.ToUpper(t), q) {
			out = append(out, t)
		}
	}
	return out
}
