package constants

import "time"

const (
	// MinContentLength 正文最小长度，低于该值的文档拒绝解析
	MinContentLength = 50

	// MaxDocumentSizeBytes 输入文档大小上限（快速失败，真正的限额由调用方执行）
	MaxDocumentSizeBytes = 5 * 1024 * 1024

	// FuzzyMatchThreshold 模糊技能匹配的置信度阈值
	FuzzyMatchThreshold = 0.8

	// ScoreMin 子分数下界
	ScoreMin = 1.0
	// ScoreMax 子分数上界
	ScoreMax = 10.0

	// WeightSumTolerance 权重和与1.0之间允许的误差
	WeightSumTolerance = 0.01

	// MinSkillCount 校验时要求的最少技能数，低于它只产生警告
	MinSkillCount = 1

	// FresherYearsCeiling 总年限低于该值即视为 fresher
	FresherYearsCeiling = 2.0

	// JudgeMaxAttempts 评审服务网络类错误的最大尝试次数（含首次）
	JudgeMaxAttempts = 3
	// JudgeRetryBaseWait 评审重试的初始退避时间
	JudgeRetryBaseWait = 1 * time.Second
	// JudgeCallTimeout 单次评审调用超时
	JudgeCallTimeout = 60 * time.Second
	// JudgeDefaultQPM 未显式配置限流时的宽松QPM，实际不构成限制
	JudgeDefaultQPM = 6000
)
