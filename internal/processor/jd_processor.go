package processor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/parser"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"github.com/google/uuid"
)

// JDProcessor 负责把岗位描述 (JD) 文本解析为结构化岗位要求。
type JDProcessor struct {
	skillMatcher SkillMatcher
}

var (
	requiredYearsPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:\+|or more|年以上|年及以上)?\s*(?:years?|年)`)
	degreeRequirePattern = regexp.MustCompile(`(?i)(phd|doctorate|master|bachelor|diploma|博士|硕士|本科|学士|大专)`)
)

// NewJDProcessor 创建一个新的 JDProcessor 实例。
func NewJDProcessor(matcher SkillMatcher) (*JDProcessor, error) {
	if matcher == nil {
		return nil, fmt.Errorf("JDProcessor: 技能匹配器不能为空")
	}
	return &JDProcessor{skillMatcher: matcher}, nil
}

// ParseJobDescription 将 JD 文本解析为结构化岗位要求。
// title 为空时取文本首个非空行作为岗位名。
func (p *JDProcessor) ParseJobDescription(jdText string, title string) (*types.JobRequirements, error) {
	normalized := parser.NormalizeText(jdText)
	if strings.TrimSpace(normalized) == "" {
		return nil, NewJDParseError("", "岗位描述内容为空")
	}

	req := &types.JobRequirements{
		JobID:   uuid.New().String(),
		Title:   strings.TrimSpace(title),
		RawText: normalized,
	}
	if req.Title == "" {
		req.Title = firstNonEmptyLine(normalized)
	}

	req.RequiredSkills = p.skillMatcher.MatchSkills(normalized)
	req.RequiredYears = parseRequiredYears(normalized)
	req.RequiredDegree = parseRequiredDegree(normalized)
	req.Responsibilities = normalized

	return req, nil
}

func firstNonEmptyLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}

// parseRequiredYears 取 JD 中首个 "N 年/years" 形式的数字
func parseRequiredYears(text string) float64 {
	m := requiredYearsPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return v
}

func parseRequiredDegree(text string) string {
	m := degreeRequirePattern.FindString(text)
	if m == "" {
		return ""
	}
	switch strings.ToLower(m) {
	case "phd", "doctorate", "博士":
		return "PhD"
	case "master", "硕士":
		return "Master"
	case "bachelor", "本科", "学士":
		return "Bachelor"
	default:
		return "Diploma"
	}
}
