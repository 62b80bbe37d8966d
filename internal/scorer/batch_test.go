package scorer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/parser"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// summaryKeyedJudge 按画像摘要返回预设结果的评审桩，便于批量测试区分候选人
type summaryKeyedJudge struct {
	mu       sync.Mutex
	outcomes map[string]judgeOutcome
	calls    int
}

func (s *summaryKeyedJudge) Judge(ctx context.Context, req *types.FitJudgeRequest) (*types.FitJudgeResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", parser.ErrJudgeService, err)
	}
	s.mu.Lock()
	s.calls++
	out, ok := s.outcomes[req.ProfileSummary]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: 未预设的画像", parser.ErrJudgeService)
	}
	return out.resp, out.err
}

func batchProfile(id string, score float64) (*types.CandidateProfile, string, judgeOutcome) {
	summary := "候选人画像-" + id
	profile := &types.CandidateProfile{
		ProfileID: id,
		Identity:  types.Identity{Name: "候选人" + id},
		Summary:   summary,
	}
	return profile, summary, judgeOutcome{resp: goodResponse(score)}
}

func TestEvaluateBatch(t *testing.T) {
	ctx := context.Background()

	newBatch := func(t *testing.T, scores map[string]float64, failing map[string]error) (*ScoringEngine, []*types.CandidateProfile) {
		t.Helper()
		judge := &summaryKeyedJudge{outcomes: make(map[string]judgeOutcome)}
		var profiles []*types.CandidateProfile
		for id, score := range scores {
			profile, summary, outcome := batchProfile(id, score)
			judge.outcomes[summary] = outcome
			profiles = append(profiles, profile)
		}
		for id, err := range failing {
			profile, summary, _ := batchProfile(id, 0)
			judge.outcomes[summary] = judgeOutcome{err: err}
			profiles = append(profiles, profile)
		}
		engine, err := NewScoringEngine(judge, WithMaxAttempts(1))
		require.NoError(t, err)
		return engine, profiles
	}

	t.Run("按总分降序排序", func(t *testing.T) {
		engine, profiles := newBatch(t, map[string]float64{
			"a": 6.0, "b": 9.0, "c": 7.5, "d": 8.0, "e": 5.5,
		}, nil)

		result, err := engine.EvaluateBatch(ctx, profiles, testJob(), nil, BatchOptions{})
		require.NoError(t, err)
		require.Len(t, result.Ranked, 5)
		assert.Empty(t, result.Failures)

		for i := 1; i < len(result.Ranked); i++ {
			assert.GreaterOrEqual(t,
				result.Ranked[i-1].Breakdown.Overall,
				result.Ranked[i].Breakdown.Overall,
				"排名必须按总分降序")
		}
		assert.Equal(t, "b", result.Ranked[0].ProfileID)
		assert.Equal(t, "e", result.Ranked[4].ProfileID)
	})

	t.Run("阈值过滤", func(t *testing.T) {
		engine, profiles := newBatch(t, map[string]float64{
			"a": 6.0, "b": 9.0, "c": 7.5, "d": 8.0, "e": 5.5,
		}, nil)

		result, err := engine.EvaluateBatch(ctx, profiles, testJob(), nil, BatchOptions{MinScore: 7.0})
		require.NoError(t, err)
		require.Len(t, result.Ranked, 3)
		for _, rc := range result.Ranked {
			assert.GreaterOrEqual(t, rc.Breakdown.Overall, 7.0)
		}
	})

	t.Run("单个失败不影响其他候选人", func(t *testing.T) {
		engine, profiles := newBatch(t,
			map[string]float64{"a": 8.0, "b": 7.0},
			map[string]error{"x": fmt.Errorf("%w: 服务不可用", parser.ErrJudgeService)},
		)

		result, err := engine.EvaluateBatch(ctx, profiles, testJob(), nil, BatchOptions{})
		require.NoError(t, err, "单个候选人失败不应使整批失败")
		assert.Len(t, result.Ranked, 2)
		require.Len(t, result.Failures, 1)
		assert.Equal(t, "x", result.Failures[0].ProfileID)
		assert.True(t, errors.Is(result.Failures[0].Err, parser.ErrJudgeService))
	})

	t.Run("统计量", func(t *testing.T) {
		engine, profiles := newBatch(t, map[string]float64{
			"a": 6.0, "b": 9.0, "c": 7.5,
		}, nil)

		result, err := engine.EvaluateBatch(ctx, profiles, testJob(), nil, BatchOptions{})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Stats.Count)
		assert.InDelta(t, 7.5, result.Stats.Mean, 1e-9)
		assert.Equal(t, 9.0, result.Stats.Max)
		assert.Equal(t, 6.0, result.Stats.Min)
	})

	t.Run("统计量按过滤后的结果集计算", func(t *testing.T) {
		engine, profiles := newBatch(t, map[string]float64{
			"a": 6.0, "b": 9.0, "c": 7.0,
		}, nil)

		result, err := engine.EvaluateBatch(ctx, profiles, testJob(), nil, BatchOptions{MinScore: 7.0})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Stats.Count)
		assert.InDelta(t, 8.0, result.Stats.Mean, 1e-9)
	})

	t.Run("空输入", func(t *testing.T) {
		engine, _ := newBatch(t, map[string]float64{"a": 8.0}, nil)
		result, err := engine.EvaluateBatch(ctx, nil, testJob(), nil, BatchOptions{})
		require.NoError(t, err)
		assert.Empty(t, result.Ranked)
		assert.Empty(t, result.Failures)
		assert.Zero(t, result.Stats.Count)
	})

	t.Run("权重非法整批拒绝", func(t *testing.T) {
		engine, profiles := newBatch(t, map[string]float64{"a": 8.0}, nil)
		bad := types.WeightConfig{types.CategorySkills: 2.0}
		_, err := engine.EvaluateBatch(ctx, profiles, testJob(), bad, BatchOptions{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWeightConfig))
	})

	t.Run("上下文取消后保留已完成的结果", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		engine, profiles := newBatch(t, map[string]float64{"a": 8.0, "b": 7.0}, nil)
		result, err := engine.EvaluateBatch(cancelled, profiles, testJob(), nil, BatchOptions{Concurrency: 1})
		require.NoError(t, err)
		// 已取消的上下文下所有候选人都记入失败，但批量调用本身不报错
		assert.Len(t, result.Failures, len(profiles))
	})
}
