package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/constants"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

// LLMFitJudge 基于LLM的人岗匹配评审客户端
// 封装提示词构建、JSON提取与响应校验；服务本身是外部能力，这里只保证
// 请求被正确发出、响应被严格校验
type LLMFitJudge struct {
	llmModel       model.ToolCallingChatModel
	promptTemplate string
	systemMessage  string
	logger         *log.Logger
}

// LLMFitJudgeOption 评审客户端的配置选项
type LLMFitJudgeOption func(*LLMFitJudge)

// WithJudgePromptTemplate 设置自定义提示词模板
func WithJudgePromptTemplate(template string) LLMFitJudgeOption {
	return func(j *LLMFitJudge) {
		j.promptTemplate = template
	}
}

// WithJudgeSystemMessage 设置自定义系统消息
func WithJudgeSystemMessage(msg string) LLMFitJudgeOption {
	return func(j *LLMFitJudge) {
		j.systemMessage = msg
	}
}

// NewLLMFitJudge 创建评审客户端实例
func NewLLMFitJudge(llmModel model.ToolCallingChatModel, logger *log.Logger, options ...LLMFitJudgeOption) *LLMFitJudge {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	judge := &LLMFitJudge{
		llmModel:      llmModel,
		logger:        logger,
		systemMessage: "你是一位资深的AI招聘评审专家，负责量化评估匿名候选人画像与岗位要求的匹配度。",
	}
	judge.generatePromptTemplate()

	for _, opt := range options {
		opt(judge)
	}
	return judge
}

func (j *LLMFitJudge) generatePromptTemplate() {
	j.promptTemplate = `你的任务是对比下面的【候选人画像】和【岗位要求】，从五个固定维度分别给出 %.1f-%.1f 的分数（保留一位小数）和简要理由，并严格按照指定的JSON格式输出。

五个维度（键名固定，缺一不可）：
1. "skills" — 技能与岗位要求的匹配程度
2. "experience" — 工作经历的相关性与年限
3. "education_projects" — 教育背景与项目经历
4. "achievements" — 成就与获奖
5. "extracurricular" — 课外/社团活动体现的软素质

**JSON输出格式规范：**
{
  "scores": {"skills": 8.5, "experience": 7.0, "education_projects": 9.0, "achievements": 6.5, "extracurricular": 7.5},
  "justifications": {"skills": "...", "experience": "...", "education_projects": "...", "achievements": "...", "extracurricular": "..."},
  "strengths": ["..."],
  "improvement_areas": ["..."]
}

格式要求：
- 完整输出必须是一个合法的JSON对象，禁止输出JSON之外的任何文本或Markdown标记。
- 每个维度的理由必须非空，一到两句，指出具体依据，避免空泛描述。
- 不要输出总分；总分由调用方按权重计算。
- 画像中某维度信息缺失时照常打分（给出保守低分并在理由中说明），不得省略该维度。

计分时参考的维度权重（仅用于理解侧重，不要自行加权）：
%s

【候选人画像】:
"""
%s
"""

【岗位要求】:
"""
%s
"""

请基于以上指令输出JSON评估结果。`
}

// Judge 执行一次 (候选人画像, 岗位要求) 评审
// 网络/空响应类失败返回 ErrJudgeService（可重试）；
// 结构不符合契约返回 ErrMalformedJudgeResponse（重试一次后放弃）
func (j *LLMFitJudge) Judge(ctx context.Context, req *types.FitJudgeRequest) (*types.FitJudgeResponse, error) {
	if j.llmModel == nil {
		return nil, fmt.Errorf("LLMFitJudge: llmModel 未初始化")
	}
	if req == nil || strings.TrimSpace(req.ProfileSummary) == "" {
		return nil, fmt.Errorf("LLMFitJudge: 评审请求为空")
	}

	weightDesc := formatWeights(req.Weights)
	userMsgContent := fmt.Sprintf(j.promptTemplate,
		constants.ScoreMin, constants.ScoreMax,
		weightDesc, req.ProfileSummary, req.JobRequirements)

	messages := []*einoschema.Message{
		einoschema.SystemMessage(j.systemMessage),
		einoschema.UserMessage(userMsgContent),
	}

	j.logger.Printf("[LLMFitJudge] 发起评审，画像 %d 字符，岗位要求 %d 字符",
		len(req.ProfileSummary), len(req.JobRequirements))

	response, err := j.llmModel.Generate(ctx, messages)
	if err != nil {
		j.logger.Printf("[LLMFitJudge] LLM调用失败: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrJudgeService, err)
	}
	if response == nil || response.Content == "" {
		return nil, fmt.Errorf("%w: LLM返回空响应", ErrJudgeService)
	}

	processedContent := strings.TrimPrefix(response.Content, "\uFEFF")

	jsonStr := extractJSONObject(processedContent)
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: 响应中找不到JSON对象", ErrMalformedJudgeResponse)
	}
	if !utf8.ValidString(jsonStr) {
		jsonStr = strings.ToValidUTF8(jsonStr, "")
	}

	var result types.FitJudgeResponse
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		// 解析失败 -> 自动修复字符串内部未转义的引号后再试一次
		fixed := sanitizeJSON(jsonStr)
		if jsonErr := json.Unmarshal([]byte(fixed), &result); jsonErr != nil {
			return nil, fmt.Errorf("%w: JSON反序列化失败: %v (修复后: %v)", ErrMalformedJudgeResponse, err, jsonErr)
		}
	}

	if err := validateJudgeResponse(&result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJudgeResponse, err)
	}
	return &result, nil
}

// formatWeights 把权重配置渲染成提示词中的描述行
func formatWeights(weights types.WeightConfig) string {
	if len(weights) == 0 {
		return "(使用默认权重)"
	}
	var b strings.Builder
	for _, cat := range types.AllScoreCategories {
		if w, ok := weights[cat]; ok {
			fmt.Fprintf(&b, "- %s: %.2f\n", cat, w)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// validateJudgeResponse 严格校验评审响应契约
// 五个维度齐全、分数在界内、理由非空；任何偏差都是校验失败，绝不静默修补
func validateJudgeResponse(resp *types.FitJudgeResponse) error {
	if resp.Scores == nil {
		return fmt.Errorf("缺少 scores 字段")
	}
	if resp.Justifications == nil {
		return fmt.Errorf("缺少 justifications 字段")
	}

	for _, cat := range types.AllScoreCategories {
		score, ok := resp.Scores[cat]
		if !ok {
			return fmt.Errorf("缺少维度分数: %s", cat)
		}
		if score < constants.ScoreMin || score > constants.ScoreMax {
			return fmt.Errorf("维度 %s 分数越界: %.2f (允许 %.1f-%.1f)",
				cat, score, constants.ScoreMin, constants.ScoreMax)
		}
		just, ok := resp.Justifications[cat]
		if !ok || strings.TrimSpace(just) == "" {
			return fmt.Errorf("维度 %s 缺少评分理由", cat)
		}
	}

	// 多余的维度键同样是契约违例
	for cat := range resp.Scores {
		if !isKnownCategory(cat) {
			return fmt.Errorf("未知的维度键: %s", cat)
		}
	}
	return nil
}

func isKnownCategory(cat types.ScoreCategory) bool {
	for _, known := range types.AllScoreCategories {
		if cat == known {
			return true
		}
	}
	return false
}

// extractJSONObject 从文本中提取首个括号配平的JSON对象
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	inStr := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inStr {
				escaped = true
			}
		case '"':
			inStr = !inStr
		case '{':
			if !inStr {
				level++
			}
		case '}':
			if !inStr {
				level--
				if level == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

// sanitizeJSON 将位于字符串字面量内部但并非真正结束的双引号改写为转义形式，
// 通过检查下一个非空白字符是否为 : ] } , 来判断该引号是否为字符串结束
func sanitizeJSON(src string) string {
	var b strings.Builder
	inStr := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if c == '"' && !escaped {
			if !inStr {
				inStr = true
				b.WriteByte(c)
			} else {
				j := i + 1
				for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
					j++
				}
				if j < len(src) && (src[j] == ':' || src[j] == ',' || src[j] == ']' || src[j] == '}') {
					inStr = false
					b.WriteByte(c)
				} else {
					b.WriteString("\\\"")
				}
			}
			escaped = false
		} else if c == '\\' && !escaped {
			escaped = true
			b.WriteByte(c)
		} else {
			b.WriteByte(c)
			escaped = false
		}
	}

	return b.String()
}
