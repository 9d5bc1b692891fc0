package job

import (
	"context"
	"log/slog"

	"github.com/marcusfern/postpilot/internal/service"
)

// WeightRecalcJob rebuilds the topic weight table on a schedule. Workers
// never write weights; this single task owns the recalculation so normal
// job processing sees no write contention.
type WeightRecalcJob struct {
	ts service.TopicService
}

func NewWeightRecalcJob(ts service.TopicService) *WeightRecalcJob {
	return &WeightRecalcJob{ts: ts}
}

func (j *WeightRecalcJob) Run() {
	if err := j.ts.RecalculateWeights(context.Background()); err != nil {
		// Non-fatal: selection keeps using the previous weights and the
		// next cycle tries again.
		slog.Info(err.Error())
	}
}
