package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/arnavshah/housekeeping-api-go/pkg/catalog"
	"github.com/arnavshah/housekeeping-api-go/pkg/database"
	"github.com/arnavshah/housekeeping-api-go/pkg/export"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// errorStatus maps engine errors to HTTP status codes
func errorStatus(err error) int {
	switch {
	case errors.Is(err, allocator.ErrInvalidInput), errors.Is(err, allocator.ErrPrecondition),
		errors.Is(err, catalog.ErrFormat):
		return http.StatusBadRequest
	case errors.Is(err, allocator.ErrInfeasible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, allocator.ErrNoCandidate):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, allocator.ErrInvalidInput), errors.Is(err, catalog.ErrFormat):
		return "invalid_input"
	case errors.Is(err, allocator.ErrPrecondition):
		return "precondition"
	case errors.Is(err, allocator.ErrInfeasible):
		return "infeasible"
	case errors.Is(err, allocator.ErrNoCandidate):
		return "no_candidate"
	}
	return "internal"
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	body := gin.H{"error": err.Error(), "code": errorCode(err)}

	var pe *allocator.PreconditionError
	if errors.As(err, &pe) {
		body["expected"] = pe.Expected
		body["actual"] = pe.Actual
	}
	var ie *allocator.InfeasibleError
	if errors.As(err, &ie) {
		if ie.Room != 0 {
			body["room"] = ie.Room
		}
		if ie.Housekeeper != 0 {
			body["housekeeper"] = ie.Housekeeper
		}
	}
	if status == http.StatusInternalServerError {
		h.log().Error("allocation failed", zap.Error(err))
		body["error"] = "Internal error"
	}
	c.JSON(status, body)
}

// policyFor applies the per-request overrides to the service policy
func (h *Handler) policyFor(input *models.AllocationInput) allocator.Policy {
	policy := h.Policy
	if input.Strict != nil {
		policy.Strict = *input.Strict
	}
	return policy
}

// allocate runs the whole engine for one request
func (h *Handler) allocate(ctx context.Context, input *models.AllocationInput) (models.AllocationResponse, error) {
	input.ApplyDefaults()
	p, err := allocator.NewProblem(input)
	if err != nil {
		return models.AllocationResponse{}, err
	}

	runID := uuid.NewString()
	al := allocator.NewAllocator(p, h.policyFor(input),
		allocator.WithLogger(h.log().With(zap.String("run_id", runID))),
		allocator.WithRecorder(h.Recorder),
	)

	opts := h.Search
	opts.Seed = input.Seed
	if input.Attempts > 0 {
		opts.Attempts = input.Attempts
	}
	res, err := al.Search(ctx, opts)
	if err != nil {
		return models.AllocationResponse{}, err
	}

	resp := al.Report(res)
	resp.RunID = runID
	return resp, nil
}

// record stores usage and the run summary for the calling key
func (h *Handler) record(c *gin.Context, input *models.AllocationInput, resp *models.AllocationResponse, elapsed time.Duration) {
	apiKey, ok := currentKey(c)
	if h.DB == nil || !ok || apiKey.ID == 0 {
		return
	}
	if err := database.RecordUsage(h.DB, apiKey.ID, database.Today(), len(input.Rooms), len(input.Housekeepers)); err != nil {
		h.log().Warn("could not record usage", zap.Uint("key_id", apiKey.ID), zap.Error(err))
	}
	run := database.AllocationRun{
		RunID:        resp.RunID,
		KeyID:        apiKey.ID,
		Strategy:     resp.Strategy,
		Seed:         resp.Seed,
		Penalty:      resp.Score.Penalty,
		Rooms:        len(input.Rooms),
		Housekeepers: len(input.Housekeepers),
		Relaxations:  len(resp.Relaxations),
		DurationMS:   elapsed.Milliseconds(),
	}
	if err := h.DB.Create(&run).Error; err != nil {
		h.log().Warn("could not record run", zap.String("run_id", resp.RunID), zap.Error(err))
	}
}

// AllocateJSON handles the JSON-based allocation request
func (h *Handler) AllocateJSON(c *gin.Context) {
	var input models.AllocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
		return
	}

	start := time.Now()
	resp, err := h.allocate(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.record(c, &input, &resp, time.Since(start))

	c.JSON(http.StatusOK, resp)
}

// AllocateXLSX runs the allocation and returns it as an Excel workbook
func (h *Handler) AllocateXLSX(c *gin.Context) {
	var input models.AllocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
		return
	}

	start := time.Now()
	resp, err := h.allocate(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.record(c, &input, &resp, time.Since(start))

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, input.Rooms, &resp); err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="allocation-`+resp.RunID+`.xlsx"`)
	c.Header("X-Run-ID", resp.RunID)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// AllocateCSV handles CSV file uploads: rooms_file and roster_file are
// required, durations_file is optional.
func (h *Handler) AllocateCSV(c *gin.Context) {
	roomsFile, _ := c.FormFile("rooms_file")
	rosterFile, _ := c.FormFile("roster_file")
	durationsFile, _ := c.FormFile("durations_file")

	if roomsFile == nil || rosterFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rooms_file and roster_file are required", "code": "invalid_input"})
		return
	}

	var input models.AllocationInput
	var err error
	if input.Rooms, err = parseUpload(roomsFile, catalog.ParseRooms); err != nil {
		h.writeError(c, err)
		return
	}
	if input.Housekeepers, err = parseUpload(rosterFile, catalog.ParseRoster); err != nil {
		h.writeError(c, err)
		return
	}
	if durationsFile != nil {
		if input.Durations, err = parseUpload(durationsFile, catalog.ParseDurations); err != nil {
			h.writeError(c, err)
			return
		}
	}
	if v := c.PostForm("seed"); v != "" {
		if input.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer", "code": "invalid_input"})
			return
		}
	}
	if v := c.PostForm("attempts"); v != "" {
		if input.Attempts, err = strconv.Atoi(v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "attempts must be an integer", "code": "invalid_input"})
			return
		}
	}
	if v := c.PostForm("strict"); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "strict must be true or false", "code": "invalid_input"})
			return
		}
		input.Strict = &strict
	}
	if err := models.Validate(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
		return
	}

	start := time.Now()
	resp, err := h.allocate(c.Request.Context(), &input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.record(c, &input, &resp, time.Since(start))

	var rooms, stats bytes.Buffer
	if err := export.WriteCSV(&rooms, input.Rooms, &resp); err != nil {
		h.writeError(c, err)
		return
	}
	if err := export.WriteStatsCSV(&stats, &resp); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":         resp.RunID,
		"csv":            rooms.String(),
		"housekeepers":   stats.String(),
		"score":          resp.Score,
		"fairness_score": resp.FairnessScore,
		"relaxations":    resp.Relaxations,
		"shortfalls":     resp.Shortfalls,
		"strategy":       resp.Strategy,
		"seed":           resp.Seed,
		"attempts":       resp.Attempts,
	})
}

func parseUpload[T any](fh *multipart.FileHeader, parse func(r io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := fh.Open()
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return parse(f)
}
