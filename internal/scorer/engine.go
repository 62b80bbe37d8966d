package scorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/constants"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/parser"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/processor"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/tracing"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
	"github.com/Soumik-R/Smart-Resume-Screener/pkg/ratelimit"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// ScoringEngine 人岗匹配评分引擎
// 封装评审服务调用、重试策略与总分计算；所有失败以单个 (候选人, 岗位) 对为作用域
type ScoringEngine struct {
	judge       processor.FitJudge
	limiter     *ratelimit.TokenBucket
	logger      *log.Logger
	maxAttempts int
	callTimeout time.Duration
}

// EngineOption 评分引擎配置选项
type EngineOption func(*ScoringEngine)

// WithRateLimiter 设置评审服务调用限流器
// 限流器的重试策略由引擎按 maxAttempts 统一设置，调用方只需关心QPM
func WithRateLimiter(limiter *ratelimit.TokenBucket) EngineOption {
	return func(e *ScoringEngine) {
		e.limiter = limiter
	}
}

// WithEngineLogger 设置日志记录器
func WithEngineLogger(logger *log.Logger) EngineOption {
	return func(e *ScoringEngine) {
		e.logger = logger
	}
}

// WithMaxAttempts 设置网络类失败的最大尝试次数
func WithMaxAttempts(n int) EngineOption {
	return func(e *ScoringEngine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// WithCallTimeout 设置单次评审调用超时
func WithCallTimeout(d time.Duration) EngineOption {
	return func(e *ScoringEngine) {
		if d > 0 {
			e.callTimeout = d
		}
	}
}

// NewScoringEngine 创建评分引擎
func NewScoringEngine(judge processor.FitJudge, options ...EngineOption) (*ScoringEngine, error) {
	if judge == nil {
		return nil, fmt.Errorf("ScoringEngine: 评审客户端不能为空")
	}
	engine := &ScoringEngine{
		judge:       judge,
		logger:      log.New(io.Discard, "", 0),
		maxAttempts: constants.JudgeMaxAttempts,
		callTimeout: constants.JudgeCallTimeout,
	}
	for _, opt := range options {
		opt(engine)
	}
	if engine.limiter == nil {
		engine.limiter = ratelimit.NewTokenBucket(constants.JudgeDefaultQPM, 0)
	}
	// 重试策略以引擎配置为准：总尝试次数 = maxAttempts，退避从 JudgeRetryBaseWait 起倍增
	engine.limiter.
		WithRetryPolicy(constants.JudgeRetryBaseWait, engine.maxAttempts-1).
		WithRetryableErrors(parser.ErrJudgeService)
	return engine, nil
}

// BuildJudgeRequest 构建发往评审服务的匿名请求
// 不变量：请求中不携带姓名/邮箱/电话，身份字段在此被剥离
func BuildJudgeRequest(profile *types.CandidateProfile, job *types.JobRequirements, weights types.WeightConfig) *types.FitJudgeRequest {
	jobText := job.RawText
	if jobText == "" {
		jobText = fmt.Sprintf("岗位: %s\n要求技能: %v\n要求年限: %.1f 年\n学历要求: %s",
			job.Title, job.RequiredSkills, job.RequiredYears, job.RequiredDegree)
	}
	return &types.FitJudgeRequest{
		ProfileSummary:  profile.Summary,
		JobRequirements: jobText,
		Weights:         weights,
	}
}

// Evaluate 评估单个 (候选人, 岗位) 对
// 权重在任何远端调用之前完成校验；服务网络类失败按指数退避重试，
// 响应格式非法只重试一次；总分总是本地按权重重新计算
func (e *ScoringEngine) Evaluate(ctx context.Context, profile *types.CandidateProfile, job *types.JobRequirements, weights types.WeightConfig) (*types.ScoreBreakdown, error) {
	tracer := otel.Tracer("scoring-engine")
	ctx, span := tracer.Start(ctx, "Evaluate")
	defer span.End()

	resolved, err := ResolveWeights(weights)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("profile.id", profile.ProfileID),
		attribute.String("job.id", job.JobID),
	)

	req := BuildJudgeRequest(profile, job, resolved)
	resp, err := e.judgeWithRetry(ctx, req, profile.ProfileID)
	if err != nil {
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeJudge,
			attribute.String("judge.profile_summary", tracing.SafeResumeContent(req.ProfileSummary)))
		return nil, err
	}

	breakdown := &types.ScoreBreakdown{
		Scores:         resp.Scores,
		Justifications: resp.Justifications,
		Overall:        WeightedOverall(resp.Scores, resolved),
		Strengths:      resp.Strengths,
		Improvements:   resp.Improvements,
	}
	span.SetAttributes(attribute.Float64("score.overall", breakdown.Overall))
	return breakdown, nil
}

// judgeWithRetry 执行评审调用并按错误类别重试
// 网络类失败交给限流器的退避重试，最多 maxAttempts 次；
// 格式非法不计入网络类尝试，只在本轮内额外重试一次
func (e *ScoringEngine) judgeWithRetry(ctx context.Context, req *types.FitJudgeRequest, profileID string) (*types.FitJudgeResponse, error) {
	var resp *types.FitJudgeResponse
	malformedRetried := false

	err := e.limiter.RetryWithBackoff(ctx, func() error {
		r, err := e.judgeOnce(ctx, req)
		if errors.Is(err, parser.ErrMalformedJudgeResponse) && !malformedRetried {
			malformedRetried = true
			e.logger.Printf("[ScoringEngine] 画像 %s 评审响应格式非法，重试一次: %v", profileID, err)
			r, err = e.judgeOnce(ctx, req)
		}
		if err != nil {
			if errors.Is(err, parser.ErrJudgeService) {
				e.logger.Printf("[ScoringEngine] 画像 %s 评审调用失败: %v", profileID, err)
			}
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (e *ScoringEngine) judgeOnce(ctx context.Context, req *types.FitJudgeRequest) (*types.FitJudgeResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	resp, err := e.judge.Judge(callCtx, req)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, parser.ErrMalformedJudgeResponse) {
			return nil, fmt.Errorf("%w: 调用超时(%s)", parser.ErrJudgeService, e.callTimeout)
		}
		return nil, err
	}
	return resp, nil
}
