package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

const (
	sampleRowLimit = 100
	textPreview    = 500
)

// SummarizerService turns uploaded files into the compact structural
// summary embedded in generation prompts: shape, columns, inferred
// types, a bounded sample, and basic statistics for numeric columns.
type SummarizerService struct {
	log *logger.Logger
}

func NewSummarizerService(log *logger.Logger) *SummarizerService {
	return &SummarizerService{log: log.With("service", "SummarizerService")}
}

// SummarizeFile parses and summarizes one file. fileType is one of
// csv, json, yaml.
func (s *SummarizerService) SummarizeFile(path, fileType string) (map[string]any, error) {
	data, err := s.parse(path, fileType)
	if err != nil {
		return nil, err
	}
	return s.Summarize(data), nil
}

// SummarizeFiles summarizes several files concurrently, keyed by path.
func (s *SummarizerService) SummarizeFiles(ctx context.Context, files map[string]string) (map[string]map[string]any, error) {
	out := make(map[string]map[string]any, len(files))
	var mu sync.Mutex

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for path, fileType := range files {
		path, fileType := path, fileType
		g.Go(func() error {
			summary, err := s.SummarizeFile(path, fileType)
			if err != nil {
				return fmt.Errorf("summarize %s: %w", path, err)
			}
			mu.Lock()
			out[path] = summary
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SummarizerService) parse(path, fileType string) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(fileType) {
	case "csv":
		return parseCSV(f)
	case "json":
		var v any
		if err := json.NewDecoder(f).Decode(&v); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
		return v, nil
	case "yaml", "yml":
		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		var v any
		if err := yaml.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", fileType)
	}
}

// parseCSV reads the header row and returns one map per record.
// Numeric-looking cells become float64 so column statistics work.
func parseCSV(r io.Reader) (any, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return []any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}

	var rows []any
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv row: %w", err)
		}
		row := make(map[string]any, len(header))
		for i, col := range header {
			if i >= len(record) {
				break
			}
			cell := strings.TrimSpace(record[i])
			if n, err := strconv.ParseFloat(cell, 64); err == nil && cell != "" {
				row[col] = n
			} else {
				row[col] = cell
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Summarize describes any parsed value. Tabular data (a list of
// objects) gets the full treatment; other shapes get a lighter sketch.
func (s *SummarizerService) Summarize(data any) map[string]any {
	switch v := data.(type) {
	case []any:
		if rows := tabularRows(v); rows != nil {
			return summarizeTabular(rows)
		}
		return map[string]any{
			"type":   "list",
			"length": len(v),
			"sample": head(v, sampleRowLimit),
		}
	case map[string]any:
		return map[string]any{
			"type":   "object",
			"keys":   sortedKeys(v),
			"sample": v,
		}
	case string:
		preview := v
		if len(preview) > textPreview {
			preview = preview[:textPreview]
		}
		return map[string]any{
			"type":    "text",
			"length":  len(v),
			"preview": preview,
		}
	default:
		return map[string]any{
			"type": "unknown",
			"data": fmt.Sprint(v),
		}
	}
}

func tabularRows(list []any) []map[string]any {
	if len(list) == 0 {
		return nil
	}
	rows := make([]map[string]any, 0, len(list))
	for _, e := range list {
		row, ok := e.(map[string]any)
		if !ok {
			return nil
		}
		rows = append(rows, row)
	}
	return rows
}

func summarizeTabular(rows []map[string]any) map[string]any {
	columns := columnOrder(rows)

	dtypes := make(map[string]string, len(columns))
	stats := map[string]any{}
	for _, col := range columns {
		values := numericColumn(rows, col)
		if len(values) > 0 && len(values) == nonNullCount(rows, col) {
			dtypes[col] = "number"
			stats[col] = columnStats(values)
		} else {
			dtypes[col] = "string"
		}
	}

	sample := make([]map[string]any, 0, sampleRowLimit)
	for i := 0; i < len(rows) && i < sampleRowLimit; i++ {
		sample = append(sample, rows[i])
	}

	return map[string]any{
		"shape":       map[string]any{"rows": len(rows), "columns": len(columns)},
		"columns":     columns,
		"dtypes":      dtypes,
		"sample_data": sample,
		"statistics":  stats,
	}
}

// columnOrder collects every key appearing in the rows, first-seen
// order, so ragged JSON rows still produce a stable column list.
func columnOrder(rows []map[string]any) []string {
	var order []string
	seen := map[string]bool{}
	for _, row := range rows {
		keys := sortedKeys(row)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	return order
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func numericColumn(rows []map[string]any, col string) []float64 {
	var out []float64
	for _, row := range rows {
		switch n := row[col].(type) {
		case float64:
			out = append(out, n)
		case int:
			out = append(out, float64(n))
		}
	}
	return out
}

func nonNullCount(rows []map[string]any, col string) int {
	count := 0
	for _, row := range rows {
		if v, ok := row[col]; ok && v != nil && v != "" {
			count++
		}
	}
	return count
}

func columnStats(values []float64) map[string]float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(len(sorted))

	variance := 0.0
	for _, v := range sorted {
		variance += (v - mean) * (v - mean)
	}
	std := 0.0
	if len(sorted) > 1 {
		std = math.Sqrt(variance / float64(len(sorted)-1))
	}

	mid := len(sorted) / 2
	median := sorted[mid]
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	}

	return map[string]float64{
		"min":    sorted[0],
		"max":    sorted[len(sorted)-1],
		"mean":   mean,
		"median": median,
		"std":    std,
	}
}

func head(list []any, n int) []any {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
