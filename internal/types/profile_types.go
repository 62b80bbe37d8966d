package types

// SectionType 表示简历章节类型
type SectionType string

const (
	// SectionSkills 技能章节
	SectionSkills SectionType = "SKILLS"
	// SectionExperience 工作经历章节
	SectionExperience SectionType = "EXPERIENCE"
	// SectionEducation 教育经历章节
	SectionEducation SectionType = "EDUCATION"
	// SectionProjects 项目经历章节
	SectionProjects SectionType = "PROJECTS"
	// SectionAchievements 获奖/成就章节
	SectionAchievements SectionType = "ACHIEVEMENTS"
	// SectionExtracurricular 课外活动章节
	SectionExtracurricular SectionType = "EXTRACURRICULAR"
)

// AllSectionTypes 固定的章节枚举集合，顺序即分段规则的匹配顺序
var AllSectionTypes = []SectionType{
	SectionSkills,
	SectionExperience,
	SectionEducation,
	SectionProjects,
	SectionAchievements,
	SectionExtracurricular,
}

// SectionMap 章节名到对应文本片段的映射
// 键唯一；某个章节缺失是正常情况，不是错误
type SectionMap map[SectionType]string

// SegmentResult 分段结果，Preamble 保留未命中任何章节的开头文本（如个人摘要）
type SegmentResult struct {
	Sections SectionMap
	Preamble string
}

// RawDocument 原始输入文档，仅在单次摄取调用期间存在
type RawDocument struct {
	Content   []byte
	MediaType string // "application/pdf" 或 "text/plain"
	FileName  string
	Size      int64
}

// Entity 命名实体识别器输出的 {文本, 标签} 对
type Entity struct {
	Text  string
	Label string
}

// 实体标签，与通用NER识别器的输出约定一致
const (
	EntityPerson       = "PERSON"
	EntityOrganization = "ORG"
	EntityDate         = "DATE"
)

// YearMonth 规范化后的日期，月为最小粒度
type YearMonth struct {
	Year  int
	Month int // 1-12
}

// Known 日期是否解析成功；零值表示未知
func (ym YearMonth) Known() bool {
	return ym.Year > 0 && ym.Month >= 1 && ym.Month <= 12
}

// Index 返回从公元起算的月序号，用于区间运算
func (ym YearMonth) Index() int {
	return ym.Year*12 + ym.Month - 1
}

// Before 比较两个月份的先后
func (ym YearMonth) Before(other YearMonth) bool {
	return ym.Index() < other.Index()
}

// Role 一段工作/实习经历
// 不变量：开始日期不晚于结束日期（或在职）
type Role struct {
	Title        string
	Organization string
	Start        YearMonth
	End          YearMonth // 在职时 Present 为 true，End 忽略
	Present      bool
	Internship   bool
	Description  string
}

// DatesKnown 该经历的日期区间是否完整可用
func (r Role) DatesKnown() bool {
	return r.Start.Known() && (r.Present || r.End.Known())
}

// ExperienceSummary 经历汇总
// 不变量：TotalYears 总是由 Roles 确定性推导，不允许独立设置
type ExperienceSummary struct {
	TotalYears float64
	Roles      []Role
}

// EducationRecord 一条教育经历
type EducationRecord struct {
	DegreeLevel string
	Field       string
	Institution string
	Year        int
	GPA         float64 // 0 表示未提供
}

// Project 项目经历条目
type Project struct {
	Name        string
	Description string
}

// Achievement 成就/获奖条目
type Achievement struct {
	Description string
}

// ExtracurricularActivity 课外活动条目
type ExtracurricularActivity struct {
	Description string
}

// Identity 候选人身份信息
type Identity struct {
	Name  string
	Email string
	Phone string
}

// CandidateProfile 解析一份简历得到的不可变聚合结果
// 每次解析创建一次，之后不再修改；需要修正时重新解析
type CandidateProfile struct {
	ProfileID       string
	Identity        Identity
	Skills          []string // 规范技能名集合，无重复
	Experience      ExperienceSummary
	Education       []EducationRecord
	Projects        []Project
	Achievements    []Achievement
	Extracurricular []ExtracurricularActivity
	Summary         string // 匿名画像摘要，供评审使用，不含身份字段
	Fresher         bool   // 总年限<2 或 无正式工作经历
	Warnings        []string
}

// JobRequirements 从职位描述文档解析出的岗位要求
type JobRequirements struct {
	JobID            string
	Title            string
	RequiredSkills   []string
	RequiredYears    float64
	RequiredDegree   string
	Responsibilities string
	RawText          string
}
