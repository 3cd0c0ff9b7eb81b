package main

import (
	"encoding/json"
	"exp/internal/db"
	"flag"
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
)

func main() {
	dbPath := flag.String("db", "/tmp/aigc-optimize-db/optimize_results.db", "Path to database file")
	minPSNR := flag.Float64("min-psnr", 40, "Minimum PSNR (dB) for successful results")
	minSuccessRate := flag.Float64("min-success", 0.8, "Minimum success rate for best params")
	rawSQL := flag.String("sql", "", "Raw SQL query to execute")

	queries := map[string]func(*db.DB) (any, error){
		"stats": func(d *db.DB) (any, error) {
			count, err := d.CountResults()
			return map[string]int{"results": count}, err
		},
		"best-params":  func(d *db.DB) (any, error) { return d.GetBestParameters(*minSuccessRate) },
		"image-sizes":  func(d *db.DB) (any, error) { return d.GetImageSizeStats() },
		"qualities":    func(d *db.DB) (any, error) { return d.GetQualityStats() },
		"embed-counts": func(d *db.DB) (any, error) { return d.GetEmbedCountStats() },
		"successful":   func(d *db.DB) (any, error) { return d.GetSuccessfulResults(*minPSNR) },
		"raw": func(d *db.DB) (any, error) {
			if *rawSQL == "" {
				return nil, fmt.Errorf("provide the SQL query with -sql")
			}
			return rawQuery(d, *rawSQL)
		},
	}
	names := make([]string, 0, len(queries))
	for name := range queries {
		names = append(names, name)
	}
	slices.Sort(names)
	queryType := flag.String("query", "stats", "Query type: "+strings.Join(names, ", "))
	flag.Parse()

	run, ok := queries[*queryType]
	if !ok {
		log.Fatalf("Unknown query type: %s", *queryType)
	}

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer database.Close()

	v, err := run(database)
	if err != nil {
		log.Fatalf("Query %s failed: %v", *queryType, err)
	}
	printJSON(v)
}

// rawQuery returns every row of query as a column name to value map.
func rawQuery(d *db.DB, query string) ([]map[string]any, error) {
	rows, err := d.ExecuteRawQuery(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		log.Fatalf("Failed to encode JSON: %v", err)
	}
}
