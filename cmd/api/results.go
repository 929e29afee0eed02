package main

import (
	"encoding/json"
	"net/http"

	"qrguard/internal/store"
)

// ScanRow represents a single analyzed URL from the database
type ScanRow struct {
	URL     string          `json:"url"`
	Score   int             `json:"score"`
	Verdict string          `json:"verdict"`
	Data    json.RawMessage `json:"data"` // RawMessage prevents Go from escaping the JSONB object
}

func resultsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobID := r.URL.Query().Get("id")
	if jobID == "" {
		http.Error(w, "Missing 'id' parameter", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	// Query the scans table, ordered by the sequence they were saved
	query := `SELECT url, score, verdict, data FROM scans WHERE job_id = $1 ORDER BY id ASC`

	rows, err := store.DB.Query(ctx, query, jobID)
	if err != nil {
		http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	var results []ScanRow

	for rows.Next() {
		var row ScanRow
		if err := rows.Scan(&row.URL, &row.Score, &row.Verdict, &row.Data); err != nil {
			continue // Skip malformed rows
		}
		results = append(results, row)
	}

	// Ensure we return an empty array `[]` instead of `null` if no results are found yet
	if results == nil {
		results = []ScanRow{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}
