package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"qrguard/internal/queue"
	"qrguard/internal/store"

	"github.com/google/uuid"
)

// UploadResponse is what we send back to the user
type UploadResponse struct {
	JobID     string `json:"job_id"`
	TotalRows int    `json:"total_rows"`
	Message   string `json:"message"`
}

func uploadHandler(w http.ResponseWriter, r *http.Request) {
	// 1. Only allow POST
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// 2. Parse Multipart Form (Max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "File too large or malformed", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' parameter in form data", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// 3. Read CSV
	reader := csv.NewReader(file)
	var urls []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			http.Error(w, "Invalid CSV format", http.StatusBadRequest)
			return
		}

		// Assume the URL is in the first column (simple for now)
		if len(record) > 0 && record[0] != "" {
			urls = append(urls, record[0])
		}
	}

	if len(urls) == 0 {
		http.Error(w, "CSV is empty", http.StatusBadRequest)
		return
	}

	// 4. Create Job in Postgres
	jobID := uuid.New().String()
	ctx := r.Context()

	// We insert the job with status 'pending'
	query := `INSERT INTO jobs (id, status, total_count, created_at) VALUES ($1, 'pending', $2, $3)`
	_, err = store.DB.Exec(ctx, query, jobID, len(urls), time.Now())
	if err != nil {
		fmt.Printf("DB Error: %v\n", err)
		http.Error(w, "Failed to create job", http.StatusInternalServerError)
		return
	}

	// 5. Enqueue one task per URL for the worker pool
	for _, u := range urls {
		if err := queue.Enqueue(ctx, queue.Task{JobID: jobID, URL: u}); err != nil {
			fmt.Printf("Queue Error: %v\n", err)
			http.Error(w, "Failed to enqueue tasks", http.StatusInternalServerError)
			return
		}
	}

	// 6. Return Success
	w.Header().Set("Content-Type", "application/json")
	resp := UploadResponse{
		JobID:     jobID,
		TotalRows: len(urls),
		Message:   "Job created successfully. Processing started.",
	}
	json.NewEncoder(w).Encode(resp)
}
