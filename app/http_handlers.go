package app

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"example/engine-api/app/config"
	"example/engine-api/app/models"
	"example/engine-api/auth"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
)

// maxBatchFens caps one batch job; bigger requests are rejected outright
// rather than silently trimmed.
const maxBatchFens = 1000

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AnalyzePosition runs one analyze-mode engine session for ?fen= and returns
// the raw transcript.
func AnalyzePosition(c *gin.Context) {
	runPosition(c, models.ModeAnalyze)
}

// ProbePosition runs one probe-mode session: a depth-1 search that settles
// early on any tablebase-flavored output line.
func ProbePosition(c *gin.Context) {
	runPosition(c, models.ModeProbe)
}

func runPosition(c *gin.Context, mode models.SearchMode) {
	fen := c.Query("fen")
	if fen == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing fen"})
		return
	}
	if err := ValidateFEN(fen); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fen"})
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("LoadConfig failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}

	res, err := RunSession(cfg, mode, fen)
	if err != nil {
		log.Printf("session spawn failed mode=%s: %v", mode, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// History is best-effort; the transcript is the answer.
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()
	if err := saveSession(ctx, callerSubject(c), fen, mode, res); err != nil {
		log.Printf("saveSession failed: %v", err)
	}

	c.JSON(http.StatusOK, sessionResponse(res))
}

// sessionResponse maps a settled session onto the wire shape: plain raw for
// a bestmove, the hint triple for a tablebase line, raw+code when the
// process exited (or was timed out) without either.
func sessionResponse(res models.SessionResult) gin.H {
	switch res.Outcome {
	case models.OutcomeHint:
		return gin.H{
			"hint": "tablebase-info-line",
			"line": res.Line,
			"raw":  res.Raw,
		}
	case models.OutcomeExit:
		return gin.H{
			"raw":  res.Raw,
			"code": res.ExitCode,
		}
	default:
		return gin.H{"raw": res.Raw}
	}
}

// GetHistory returns the caller's recent sessions.
func GetHistory(c *gin.Context) {
	limit := 20
	if q := c.Query("limit"); q != "" {
		if v, err := parsePositiveInt(q); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := RecentSessions(ctx, callerSubject(c), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(entries),
		"sessions": entries,
	})
}

// CreateBatchJob stages a list of positions, records a job row, and enqueues
// one SQS message per batch for the workers.
func CreateBatchJob(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if len(req.Fens) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing fens"})
		return
	}
	if len(req.Fens) > maxBatchFens {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "too many fens",
			"max":   maxBatchFens,
		})
		return
	}
	mode := models.ModeAnalyze
	if req.Mode == string(models.ModeProbe) {
		mode = models.ModeProbe
	}
	for _, fen := range req.Fens {
		if err := ValidateFEN(fen); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fen", "fen": fen})
			return
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("LoadConfig failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load config"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 25*time.Second)
	defer cancel()

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100 // sane fallback
	}
	totalBatches := (len(req.Fens) + batchSize - 1) / batchSize // ceil division

	jobID, err := CreateJob(ctx, string(mode), len(req.Fens), batchSize, totalBatches)
	if err != nil {
		log.Printf("failed to create job: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create job"})
		return
	}

	if err := stagePositions(ctx, jobID, req.Fens); err != nil {
		log.Printf("stagePositions failed job=%s: %v", jobID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to stage positions"})
		return
	}

	if cfg.QueueURL == "" {
		log.Printf("QUEUE_URL missing in config; skipping enqueue for job=%s", jobID)
	} else if jobID == "" {
		log.Printf("jobID empty; skipping enqueue")
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Printf("failed to load AWS config for SQS: %v", err)
		} else {
			sqsClient := sqs.NewFromConfig(awsCfg)

			for batchIndex := 0; batchIndex < totalBatches; batchIndex++ {
				jobMsg := models.JobMessage{
					JobID:      jobID,
					Mode:       string(mode),
					BatchIndex: batchIndex,
					NumFens:    batchSize,
				}

				body, err := json.Marshal(jobMsg)
				if err != nil {
					log.Printf("failed to marshal JobMessage job=%s batch=%d: %v",
						jobID, batchIndex, err)
					continue
				}

				_, err = sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
					QueueUrl:    &cfg.QueueURL,
					MessageBody: aws.String(string(body)),
				})
				if err != nil {
					log.Printf("failed to send SQS message job=%s batch=%d: %v",
						jobID, batchIndex, err)
				}
			}
		}
	}

	c.IndentedJSON(http.StatusAccepted, gin.H{
		"job_id":  jobID,
		"count":   len(req.Fens),
		"batches": totalBatches,
	})
}

// GetJobStatus returns status and batch progress for a job.
func GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobid")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing job id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := FindJobStatus(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": status,
	})
}

func callerSubject(c *gin.Context) string {
	if claims, ok := auth.ClaimsFromContext(c.Request.Context()); ok && claims.Subject != "" {
		return claims.Subject
	}
	return "anonymous"
}
