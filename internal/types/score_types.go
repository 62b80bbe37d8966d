package types

// ScoreCategory 评分维度名称
type ScoreCategory string

const (
	// CategorySkills 技能匹配维度
	CategorySkills ScoreCategory = "skills"
	// CategoryExperience 工作经历维度
	CategoryExperience ScoreCategory = "experience"
	// CategoryEducationProjects 教育与项目维度
	CategoryEducationProjects ScoreCategory = "education_projects"
	// CategoryAchievements 成就维度
	CategoryAchievements ScoreCategory = "achievements"
	// CategoryExtracurricular 课外活动维度
	CategoryExtracurricular ScoreCategory = "extracurricular"
)

// AllScoreCategories 五个固定评分维度
var AllScoreCategories = []ScoreCategory{
	CategorySkills,
	CategoryExperience,
	CategoryEducationProjects,
	CategoryAchievements,
	CategoryExtracurricular,
}

// WeightConfig 五个维度的权重，权重和必须为 1.0（允许±0.01误差）
type WeightConfig map[ScoreCategory]float64

// FitJudgeRequest 发给外部评审服务的规范化请求
// 身份字段必须在构建时剥离
type FitJudgeRequest struct {
	ProfileSummary  string       `json:"profile_summary"`
	JobRequirements string       `json:"job_requirements"`
	Weights         WeightConfig `json:"weights"`
}

// FitJudgeResponse 评审服务返回的结构化结果
// 服务端若附带 overall 字段会被忽略，总分总是在本地重新计算
type FitJudgeResponse struct {
	Scores         map[ScoreCategory]float64 `json:"scores"`
	Justifications map[ScoreCategory]string  `json:"justifications"`
	Strengths      []string                  `json:"strengths,omitempty"`
	Improvements   []string                  `json:"improvement_areas,omitempty"`
}

// ScoreBreakdown 单个 (候选人, 岗位) 对的完整评分结果
// 不变量：Overall 是五个子分的固定加权和，从不直接取自评审服务
type ScoreBreakdown struct {
	Scores         map[ScoreCategory]float64 `json:"scores"`
	Justifications map[ScoreCategory]string  `json:"justifications"`
	Overall        float64                   `json:"overall"`
	Strengths      []string                  `json:"strengths,omitempty"`
	Improvements   []string                  `json:"improvement_areas,omitempty"`
}

// RankedCandidate 批量评估后按总分排序的一项
type RankedCandidate struct {
	ProfileID string
	Name      string
	Breakdown *ScoreBreakdown
}

// BatchFailure 批量评估中单个失败项的记录
type BatchFailure struct {
	ProfileID string
	Err       error
}

// BatchStats 过滤后结果集的聚合统计
type BatchStats struct {
	Count int
	Mean  float64
	Max   float64
	Min   float64
}

// BatchResult 批量评估结果：有序候选人序列 + 失败项 + 统计
type BatchResult struct {
	Ranked   []RankedCandidate
	Failures []BatchFailure
	Stats    BatchStats
}
