package scorer

import (
	"context"
	"sort"
	"sync"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// BatchOptions 批量评估参数
type BatchOptions struct {
	// Concurrency 并发上限，<=0 时取默认值
	Concurrency int

	// MinScore 总分过滤阈值，低于该值的候选人不进入结果集；0 表示不过滤
	MinScore float64
}

const defaultBatchConcurrency = 4

// EvaluateBatch 并发评估多个候选人对同一岗位的匹配度
// 单个候选人失败只记入 Failures，不影响其他人；
// 上下文取消时已完成的结果依然有效返回。
// 结果按总分降序稳定排序，之后应用阈值过滤并计算统计量。
func (e *ScoringEngine) EvaluateBatch(ctx context.Context, profiles []*types.CandidateProfile, job *types.JobRequirements, weights types.WeightConfig, opts BatchOptions) (*types.BatchResult, error) {
	tracer := otel.Tracer("scoring-engine")
	ctx, span := tracer.Start(ctx, "EvaluateBatch")
	defer span.End()

	// 权重校验提前到任何调用之前，整批共用同一配置
	resolved, err := ResolveWeights(weights)
	if err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	span.SetAttributes(
		attribute.Int("batch.size", len(profiles)),
		attribute.Int("batch.concurrency", concurrency),
	)

	type item struct {
		idx       int
		candidate *types.RankedCandidate
		failure   *types.BatchFailure
	}

	results := make([]item, len(profiles))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, profile := range profiles {
		select {
		case <-ctx.Done():
			// 不再派发新任务，已完成的保留
			results[i] = item{idx: i, failure: &types.BatchFailure{ProfileID: profile.ProfileID, Err: ctx.Err()}}
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, profile *types.CandidateProfile) {
			defer wg.Done()
			defer func() { <-sem }()

			breakdown, err := e.Evaluate(ctx, profile, job, resolved)
			if err != nil {
				results[i] = item{idx: i, failure: &types.BatchFailure{ProfileID: profile.ProfileID, Err: err}}
				return
			}
			results[i] = item{idx: i, candidate: &types.RankedCandidate{
				ProfileID: profile.ProfileID,
				Name:      profile.Identity.Name,
				Breakdown: breakdown,
			}}
		}(i, profile)
	}
	wg.Wait()

	batch := &types.BatchResult{}
	for _, r := range results {
		if r.candidate != nil {
			batch.Ranked = append(batch.Ranked, *r.candidate)
		} else if r.failure != nil {
			batch.Failures = append(batch.Failures, *r.failure)
		}
	}

	// 总分降序；同分保持输入顺序
	sort.SliceStable(batch.Ranked, func(a, b int) bool {
		return batch.Ranked[a].Breakdown.Overall > batch.Ranked[b].Breakdown.Overall
	})

	if opts.MinScore > 0 {
		filtered := batch.Ranked[:0]
		for _, rc := range batch.Ranked {
			if rc.Breakdown.Overall >= opts.MinScore {
				filtered = append(filtered, rc)
			}
		}
		batch.Ranked = filtered
	}

	batch.Stats = computeStats(batch.Ranked)
	span.SetAttributes(
		attribute.Int("batch.ranked", len(batch.Ranked)),
		attribute.Int("batch.failures", len(batch.Failures)),
	)
	return batch, nil
}

// computeStats 计算过滤后结果集的统计量
func computeStats(ranked []types.RankedCandidate) types.BatchStats {
	stats := types.BatchStats{Count: len(ranked)}
	if len(ranked) == 0 {
		return stats
	}
	sum := 0.0
	stats.Max = ranked[0].Breakdown.Overall
	stats.Min = ranked[0].Breakdown.Overall
	for _, rc := range ranked {
		v := rc.Breakdown.Overall
		sum += v
		if v > stats.Max {
			stats.Max = v
		}
		if v < stats.Min {
			stats.Min = v
		}
	}
	stats.Mean = sum / float64(len(ranked))
	return stats
}
