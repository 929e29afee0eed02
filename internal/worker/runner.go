package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"qrguard/internal/analyzer"
	"qrguard/internal/payload"
	"qrguard/internal/queue"
	"qrguard/internal/store"
)

// Start launches the worker loop.
// It blocks forever, waiting for tasks.
func Start() {
	core, err := analyzer.New(analyzer.DefaultConfig())
	if err != nil {
		log.Fatalf("analyzer construction failed: %v", err)
	}
	pipeline := payload.New(core)

	log.Println("Worker started. Waiting for tasks...")
	ctx := context.Background()

	for {
		// 1. Blocking Pop from Redis (Waits 0s = forever until item arrives)
		// BLPOP returns: [queue_name, value]
		result, err := queue.Client.BLPop(ctx, 0*time.Second, queue.QueueName).Result()
		if err != nil {
			log.Printf("Redis error: %v\n", err)
			time.Sleep(1 * time.Second) // Backoff on error
			continue
		}

		// 2. Parse the Task
		rawJSON := result[1]
		var task queue.Task
		if err := json.Unmarshal([]byte(rawJSON), &task); err != nil {
			log.Printf("Malformed task: %s\n", rawJSON)
			continue
		}

		// 3. PROCESS: analysis is synchronous and finishes in milliseconds;
		// no per-task timeout is needed.
		start := time.Now()
		assessment := pipeline.Analyze(task.URL)
		assessment.Duration = time.Since(start).String()

		// 4. SAVE: Write result to PostgreSQL
		// We serialize the full assessment to JSONB for storage
		assessmentJSON, _ := json.Marshal(assessment)

		tx, err := store.DB.Begin(ctx)
		if err != nil {
			log.Printf("DB Transaction error: %v\n", err)
			continue
		}

		// A. Insert Record
		_, err = tx.Exec(ctx, `
			INSERT INTO scans (job_id, url, score, verdict, data)
			VALUES ($1, $2, $3, $4, $5)
		`, task.JobID, task.URL, assessment.Score, assessment.Verdict, assessmentJSON)

		if err != nil {
			log.Printf("Failed to save scan: %v\n", err)
			tx.Rollback(ctx)
			continue
		}

		// B. Update Job Progress
		// We increment processed_count.
		// If processed_count matches total_count, we mark it as 'completed'.
		_, err = tx.Exec(ctx, `
			UPDATE jobs
			SET processed_count = processed_count + 1,
			    status = CASE
                    WHEN processed_count + 1 >= total_count THEN 'completed'
                    ELSE status
                END,
				completed_at = CASE
                    WHEN processed_count + 1 >= total_count THEN NOW()
                    ELSE completed_at
                END
			WHERE id = $1
		`, task.JobID)

		if err != nil {
			log.Printf("Failed to update job: %v\n", err)
			tx.Rollback(ctx)
			continue
		}

		// C. Commit
		if err := tx.Commit(ctx); err != nil {
			log.Printf("Failed to commit transaction: %v\n", err)
		} else {
			fmt.Printf("Processed: %s (Score: %d, Verdict: %s)\n", task.URL, assessment.Score, assessment.Verdict)
		}
	}
}
