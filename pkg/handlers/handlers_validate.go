package handlers

import (
	"net/http"

	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/arnavshah/housekeeping-api-go/pkg/models"
	"github.com/gin-gonic/gin"
)

// ValidateInput checks an allocation request without running the engine
func (h *Handler) ValidateInput(c *gin.Context) {
	var input models.AllocationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"valid": false,
			"error": err.Error(),
		})
		return
	}

	input.ApplyDefaults()
	p, err := allocator.NewProblem(&input)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error(), "code": errorCode(err)})
		return
	}

	quotaSum, twins, bath := 0, 0, 0
	twinQuotas := make(map[int]int, len(p.Members))
	for _, m := range p.Members {
		quotaSum += m.RoomQuota
		twins += m.TwinQuota
		twinQuotas[m.ID] = m.TwinQuota
		if m.HasBath {
			bath++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"housekeeper_count": len(p.Members),
			"bath_duty_count":   bath,
			"normal_rooms":      len(p.Normal),
			"eco_rooms":         len(p.Eco),
			"eco_out_rooms":     len(p.EcoOut),
			"room_quota_sum":    quotaSum,
			"twin_quota_sum":    twins,
			"twin_quotas":       twinQuotas,
		},
	})
}

// CheckAllocation verifies a caller-edited allocation against every rule
// without re-optimising it.
func (h *Handler) CheckAllocation(c *gin.Context) {
	var input models.CheckInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_input"})
		return
	}

	input.ApplyDefaults()
	p, err := allocator.NewProblem(&input.AllocationInput)
	if err != nil {
		h.writeError(c, err)
		return
	}

	policy := h.policyFor(&input.AllocationInput)
	alloc := allocator.AllocationFromMap(input.Assignments)
	violations := allocator.Verify(p, alloc, policy)
	hard := allocator.HardViolations(violations)
	stats := allocator.Stats(p, alloc, policy)

	c.JSON(http.StatusOK, gin.H{
		"valid":          len(hard) == 0,
		"violations":     hard,
		"shortfalls":     allocator.Shortfalls(violations),
		"score":          allocator.NewScorer(p, policy).Score(alloc).Breakdown(),
		"housekeepers":   stats,
		"fairness_score": allocator.FairnessScore(stats),
	})
}
