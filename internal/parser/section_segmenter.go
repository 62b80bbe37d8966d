package parser

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
)

// sectionRule 一条标题到章节类型的识别规则
type sectionRule struct {
	section types.SectionType
	pattern *regexp.Regexp
}

// 标题同义词规则表，顺序即匹配优先级
// 同一行命中多条规则时（如 "Projects & Achievements"）由排在前面的规则认领
var sectionRules = []sectionRule{
	{types.SectionSkills, regexp.MustCompile(`(?i)^(technical\s+skills?|skills?(\s+&\s+tools)?|core\s+competenc(y|ies)|technologies|专业技能|技能特长|技能)`)},
	{types.SectionExperience, regexp.MustCompile(`(?i)^((work|professional|employment)\s+(experience|history)|experience|internships?|employment|工作经历|实习经历|工作经验)`)},
	{types.SectionEducation, regexp.MustCompile(`(?i)^(education(al)?(\s+(background|qualifications?))?|academics?|教育经历|教育背景)`)},
	{types.SectionProjects, regexp.MustCompile(`(?i)^(projects?(\s+experience)?|personal\s+projects?|academic\s+projects?|项目经历|项目经验)`)},
	{types.SectionAchievements, regexp.MustCompile(`(?i)^(achievements?|awards?(\s+&\s+honors?)?|honors?|accomplishments?|获奖经历|荣誉奖项)`)},
	{types.SectionExtracurricular, regexp.MustCompile(`(?i)^(extra[- ]?curricular(\s+activities)?|activities|volunteer(ing|\s+work)?|leadership|课外活动|社团活动)`)},
}

// HeadingSegmenter 基于标题启发式的章节分段器
// 识别标题行后开启新章节区，直到下一个标题或文本结束
type HeadingSegmenter struct {
	maxHeadingLen int
}

// NewHeadingSegmenter 创建分段器
func NewHeadingSegmenter() *HeadingSegmenter {
	return &HeadingSegmenter{maxHeadingLen: 60}
}

// Segment 将归一化文本切分为章节映射
// 零个或多个章节缺失是正常结果；未命中任何标题的开头文本保留在 Preamble
func (s *HeadingSegmenter) Segment(text string) *types.SegmentResult {
	result := &types.SegmentResult{
		Sections: make(types.SectionMap),
	}
	if strings.TrimSpace(text) == "" {
		return result
	}

	lines := strings.Split(text, "\n")

	var current types.SectionType
	inSection := false
	var buf []string
	var preamble []string

	flush := func() {
		if !inSection {
			return
		}
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		if content == "" {
			return
		}
		// 同名章节重复出现时拼接，保证键唯一
		if prev, ok := result.Sections[current]; ok {
			result.Sections[current] = prev + "\n" + content
		} else {
			result.Sections[current] = content
		}
	}

	for _, line := range lines {
		if section, remainder, ok := s.matchHeading(line); ok {
			flush()
			current = section
			inSection = true
			buf = buf[:0]
			// "Skills: Python, Java" 这类行内标题，冒号后的内容归入新章节
			if remainder != "" {
				buf = append(buf, remainder)
			}
			continue
		}
		if inSection {
			buf = append(buf, line)
		} else {
			preamble = append(preamble, line)
		}
	}
	flush()

	result.Preamble = strings.TrimSpace(strings.Join(preamble, "\n"))
	return result
}

// matchHeading 判断一行是否是章节标题
// 返回章节类型、标题冒号之后的行内内容、是否命中
func (s *HeadingSegmenter) matchHeading(line string) (types.SectionType, string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) > s.maxHeadingLen {
		return "", "", false
	}

	for _, rule := range sectionRules {
		loc := rule.pattern.FindStringIndex(trimmed)
		if loc == nil {
			continue
		}
		rest := trimmed[loc[1]:]
		// 命中部分必须止于单词边界，避免 "Experienced developer" 被当作标题
		if rest != "" {
			r := []rune(rest)[0]
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		rest = strings.TrimSpace(rest)
		// 复合标题（如 "Projects & Achievements"）由排前面的规则认领，余下部分忽略
		if rest != "" && (strings.HasPrefix(rest, "&") || strings.HasPrefix(rest, "/") || strings.HasPrefix(rest, "(")) {
			return rule.section, "", true
		}
		if colon := strings.IndexAny(rest, ":："); rest != "" && colon != 0 {
			// 标题后跟着与冒号无关的正文时不当作标题
			continue
		}
		rest = strings.TrimSpace(strings.TrimLeft(rest, ":： \t-—"))
		return rule.section, rest, true
	}
	return "", "", false
}
