package main

import (
	"encoding/json"
	"net/http"
	"time"

	"qrguard/internal/store"
)

// jobStatus is the progress view of one bulk scan job, including a running
// tally of verdicts so a dashboard can show risk composition before the job
// finishes.
type jobStatus struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	TotalCount      int        `json:"total_count"`
	ProcessedCount  int        `json:"processed_count"`
	SafeCount       int        `json:"safe_count"`
	SuspiciousCount int        `json:"suspicious_count"`
	MaliciousCount  int        `json:"malicious_count"`
	UnknownCount    int        `json:"unknown_count"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

func statusHandler(w http.ResponseWriter, r *http.Request) {
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
	var job jobStatus

	err := store.DB.QueryRow(ctx, `
		SELECT id, status, total_count, processed_count, created_at, completed_at
		FROM jobs
		WHERE id = $1
	`, jobID).Scan(&job.ID, &job.Status, &job.TotalCount, &job.ProcessedCount,
		&job.CreatedAt, &job.CompletedAt)
	if err != nil {
		http.Error(w, "Job not found", http.StatusNotFound)
		return
	}

	// Verdict tallies come from the scans recorded so far. A job with no
	// processed rows yet simply reports zeros.
	rows, err := store.DB.Query(ctx, `
		SELECT verdict, COUNT(*)
		FROM scans
		WHERE job_id = $1
		GROUP BY verdict
	`, jobID)
	if err != nil {
		http.Error(w, "Failed to tally verdicts", http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var verdict string
		var count int
		if err := rows.Scan(&verdict, &count); err != nil {
			continue
		}
		switch verdict {
		case "safe":
			job.SafeCount = count
		case "suspicious":
			job.SuspiciousCount = count
		case "malicious":
			job.MaliciousCount = count
		default:
			job.UnknownCount += count
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}
