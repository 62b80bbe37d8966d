package processor

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
)

// 教育经历相关的匹配规则
var (
	// 学位关键词按等级从高到低排列，先命中者生效
	degreeKeywords = []struct {
		level    string
		patterns []string
	}{
		{"PhD", []string{"phd", "ph.d", "doctorate", "doctoral", "博士"}},
		{"Master", []string{"master", "m.s.", "msc", "m.sc", "mba", "m.tech", "m.e.", "硕士", "研究生"}},
		{"Bachelor", []string{"bachelor", "b.s.", "bsc", "b.sc", "b.tech", "b.e.", "学士", "本科"}},
		{"Diploma", []string{"diploma", "associate", "大专", "专科"}},
	}

	institutionPattern = regexp.MustCompile(`(?i)(university|college|institute|academy|school|大学|学院)`)
	gradYearPattern    = regexp.MustCompile(`(19|20)\d{2}`)
	gpaPattern         = regexp.MustCompile(`(?i)(?:gpa|cgpa|绩点)[:\s]*([0-9]+(?:\.[0-9]+)?)`)
	fieldPattern       = regexp.MustCompile(`(?i)(?:in|of|major in|专业[:：]?)\s+([A-Za-z][A-Za-z &/]+)`)

	bulletPrefixPattern = regexp.MustCompile(`^[\s]*[-•*·▪●‣○]+[\s]*`)
)

// ParseEducation 解析教育分区文本为教育记录列表
// 解析不到任何记录返回空切片，不报错
func ParseEducation(text string) []types.EducationRecord {
	var records []types.EducationRecord
	for _, block := range splitBlocks(text) {
		rec := parseEducationBlock(block)
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

func parseEducationBlock(block string) *types.EducationRecord {
	rec := &types.EducationRecord{}
	lower := strings.ToLower(block)

	for _, dk := range degreeKeywords {
		for _, p := range dk.patterns {
			if strings.Contains(lower, p) {
				rec.DegreeLevel = dk.level
				break
			}
		}
		if rec.DegreeLevel != "" {
			break
		}
	}

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		if rec.Institution == "" && institutionPattern.MatchString(line) {
			rec.Institution = strings.TrimSpace(removeTrailingYear(line))
		}
	}

	if m := fieldPattern.FindStringSubmatch(block); m != nil {
		rec.Field = strings.TrimSpace(m[1])
	}
	if years := gradYearPattern.FindAllString(block, -1); len(years) > 0 {
		// 多个年份取最晚的，视为毕业年份
		for _, y := range years {
			if v, err := strconv.Atoi(y); err == nil && v > rec.Year {
				rec.Year = v
			}
		}
	}
	if m := gpaPattern.FindStringSubmatch(block); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			rec.GPA = v
		}
	}

	if rec.DegreeLevel == "" && rec.Institution == "" {
		return nil
	}
	return rec
}

func removeTrailingYear(line string) string {
	// 去掉行尾的年份区间（例如 "XX University 2016-2020"）
	trimmed := regexp.MustCompile(`[,，]?\s*(19|20)\d{2}\s*[-–—~至to]*\s*((19|20)\d{2}|present|now|至今)?\s*$`).ReplaceAllString(line, "")
	return trimmed
}

// ParseProjects 解析项目分区文本
// 每个空行分隔的块视为一个项目，首行为项目名，其余为描述
func ParseProjects(text string) []types.Project {
	var projects []types.Project
	for _, block := range splitBlocks(text) {
		lines := nonEmptyLines(block)
		if len(lines) == 0 {
			continue
		}
		name := lines[0]
		desc := ""
		if len(lines) > 1 {
			desc = strings.Join(lines[1:], " ")
		} else if idx := strings.IndexAny(name, ":："); idx > 0 {
			// 单行形式 "项目名: 描述"
			desc = strings.TrimSpace(name[idx+1:])
			name = strings.TrimSpace(name[:idx])
		}
		projects = append(projects, types.Project{Name: name, Description: desc})
	}
	return projects
}

// ParseAchievements 解析成就分区文本，每个条目一条
func ParseAchievements(text string) []types.Achievement {
	var items []types.Achievement
	for _, line := range itemLines(text) {
		items = append(items, types.Achievement{Description: line})
	}
	return items
}

// ParseExtracurricular 解析课外活动分区文本，每个条目一条
func ParseExtracurricular(text string) []types.ExtracurricularActivity {
	var items []types.ExtracurricularActivity
	for _, line := range itemLines(text) {
		items = append(items, types.ExtracurricularActivity{Description: line})
	}
	return items
}

// splitBlocks 按空行把分区文本切成条目块
func splitBlocks(text string) []string {
	var blocks []string
	var buf []string
	flush := func() {
		if len(buf) > 0 {
			blocks = append(blocks, strings.Join(buf, "\n"))
			buf = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		buf = append(buf, line)
	}
	flush()
	return blocks
}

func nonEmptyLines(block string) []string {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSpace(bulletPrefixPattern.ReplaceAllString(line, ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// itemLines 把分区文本拆为条目行：有项目符号的按行拆，否则按块拆
func itemLines(text string) []string {
	var items []string
	for _, block := range splitBlocks(text) {
		lines := nonEmptyLines(block)
		if len(lines) <= 1 || blockIsBulleted(block) {
			items = append(items, lines...)
		} else {
			items = append(items, strings.Join(lines, " "))
		}
	}
	return items
}

func blockIsBulleted(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !bulletPrefixPattern.MatchString(line) {
			return false
		}
	}
	return true
}
