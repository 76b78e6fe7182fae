package recolog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"stock-advisor/internal/types"
)

type summaryRow struct {
	Symbol     string
	Count      int
	Labels     map[types.Recommendation]int
	Confidence float64
	Expected   float64
	LastPrice  float64
	LastLabel  types.Recommendation
}

func (j *Journal) summaryPath(day time.Time) string {
	return filepath.Join(j.dir, "summary", day.UTC().Format(dayLayout)+".csv")
}

// Summarize writes a per-symbol CSV of the recommendations served on day
// and returns its path. Days without entries produce no file and "".
func (j *Journal) Summarize(day time.Time) (string, error) {
	entries, err := j.Read(day)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", nil
	}

	rows := map[string]*summaryRow{}
	for _, e := range entries {
		r := rows[e.Symbol]
		if r == nil {
			r = &summaryRow{Symbol: e.Symbol, Labels: map[types.Recommendation]int{}}
			rows[e.Symbol] = r
		}
		r.Count++
		r.Labels[e.Recommendation]++
		r.Confidence += e.Confidence
		r.Expected += e.ExpectedDiff
		r.LastPrice = e.CurrentPrice
		r.LastLabel = e.Recommendation
	}
	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := j.summaryPath(day)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"symbol", "requests", "strong_buy", "buy", "hold", "sell", "avg_confidence", "avg_expected_diff", "last_price", "last_recommendation"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	total := 0
	for _, k := range keys {
		r := rows[k]
		n := float64(r.Count)
		rec := []string{
			r.Symbol,
			strconv.Itoa(r.Count),
			strconv.Itoa(r.Labels[types.StrongBuy]),
			strconv.Itoa(r.Labels[types.Buy]),
			strconv.Itoa(r.Labels[types.Hold]),
			strconv.Itoa(r.Labels[types.Sell]),
			fmt.Sprintf("%.2f", r.Confidence/n),
			fmt.Sprintf("%.3f", r.Expected/n),
			fmt.Sprintf("%.2f", r.LastPrice),
			string(r.LastLabel),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
		total += r.Count
	}
	if err := w.Write([]string{"TOTAL", strconv.Itoa(total), "", "", "", "", "", "", "", ""}); err != nil {
		return "", err
	}
	w.Flush()
	return outPath, w.Error()
}
