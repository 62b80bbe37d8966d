package processor

import (
	"context"
	"io"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
)

// ProcessResult 单份文档的处理结果
type ProcessResult struct {
	// 规范化后的全文
	Text string

	// 提取阶段附带的元数据（页数、编码方式等）
	Metadata map[string]interface{}

	// 分区结果
	Segments *types.SegmentResult

	// 组装完成的候选人画像
	Profile *types.CandidateProfile
}

//
// 文本提取相关接口
//

// TextExtractor 文档文本提取器接口
type TextExtractor interface {
	// ExtractFromFile 从文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

//
// 简历结构化相关接口
//

// Segmenter 简历分区器接口
type Segmenter interface {
	// Segment 按区块标题把全文切分为带类型的分区
	Segment(text string) *types.SegmentResult
}

// SkillMatcher 技能匹配器接口
type SkillMatcher interface {
	// MatchSkills 从文本中识别规范技能名，结果去重且确定性有序
	MatchSkills(text string) []string
}

// ExperienceAnalyzer 工作经历分析器接口
type ExperienceAnalyzer interface {
	// Extract 解析经历分区文本，返回经历汇总与解析警告
	Extract(ctx context.Context, experienceText string) (types.ExperienceSummary, []string, error)
}

//
// 评审相关接口
//

// FitJudge 人岗匹配评审接口
// 实现方通常是远端LLM服务的客户端
type FitJudge interface {
	Judge(ctx context.Context, req *types.FitJudgeRequest) (*types.FitJudgeResponse, error)
}
