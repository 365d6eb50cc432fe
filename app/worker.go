// Batch side: pull a job's positions out of Postgres and run one engine
// session per position on a small worker pool.

package app

import (
	"context"
	"log"
	"sync"
	"time"

	"example/engine-api/app/config"
	"example/engine-api/app/models"
)

type batchResult struct {
	fen string
	res models.SessionResult
}

// ProcessBatch runs the sessions for one JobMessage and records the results.
func ProcessBatch(ctx context.Context, cfg *config.Config, job models.JobMessage) error {
	start := time.Now()

	offset := job.BatchIndex * job.NumFens

	log.Printf(
		"Processing batch: job_id=%s mode=%s batch_index=%d num_fens=%d offset=%d",
		job.JobID, job.Mode, job.BatchIndex, job.NumFens, offset,
	)

	fens, err := LoadPositions(ctx, job.JobID, job.NumFens, offset)
	if err != nil {
		return err
	}
	if len(fens) == 0 {
		log.Printf("no positions found for job=%s (batch_index=%d)", job.JobID, job.BatchIndex)
		return nil
	}

	mode := models.ModeAnalyze
	if job.Mode == string(models.ModeProbe) {
		mode = models.ModeProbe
	}

	numWorkers := GetWorkerCount()
	log.Printf("Analyzing %d positions with %d workers", len(fens), numWorkers)

	work := make(chan string, len(fens))
	results := make(chan batchResult, len(fens))
	var wg sync.WaitGroup

	// Each session spawns and reaps its own engine process, so workers
	// need no shared state beyond the channels.
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for fen := range work {
				res, err := RunSession(cfg, mode, fen)
				if err != nil {
					log.Printf("worker %d: session failed for %q: %v", id, fen, err)
					continue
				}
				results <- batchResult{fen: fen, res: res}
			}
		}(i)
	}

	go func() {
		defer close(work)
		for _, fen := range fens {
			work <- fen
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	saved := 0
	for r := range results {
		// Separate short timeout per row; job context may be near its end.
		ctx2, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := saveSession(ctx2, "job:"+job.JobID, r.fen, mode, r.res)
		cancel()
		if err != nil {
			log.Printf("saveSession failed job=%s fen=%q: %v", job.JobID, r.fen, err)
			continue
		}
		saved++
	}

	if err := UpdateJobProgress(ctx, job.JobID); err != nil {
		log.Printf("UpdateJobProgress failed job=%s: %v", job.JobID, err)
	}

	log.Printf(
		"Batch complete: job_id=%s batch_index=%d saved=%d took=%s",
		job.JobID, job.BatchIndex, saved, time.Since(start),
	)

	return nil
}
