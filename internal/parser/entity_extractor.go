package parser

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
)

// EntityRecognizer 通用命名实体识别能力
// 外部依赖：本核心只消费其 {文本, 标签} 输出，并容忍漏识别
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string) ([]types.Entity, error)
}

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3,4}[-.\s]?\d{4}`)

	// 组织名后缀，用于兜底识别器
	orgSuffixPattern = regexp.MustCompile(`(?i)\b(inc\.?|llc|ltd\.?|corp\.?|corporation|technologies|solutions|labs|systems|group|gmbh)\b|(有限公司|公司|集团|研究院)`)

	monthNames = map[string]int{
		"jan": 1, "january": 1,
		"feb": 2, "february": 2,
		"mar": 3, "march": 3,
		"apr": 4, "april": 4,
		"may": 5,
		"jun": 6, "june": 6,
		"jul": 7, "july": 7,
		"aug": 8, "august": 8,
		"sep": 9, "sept": 9, "september": 9,
		"oct": 10, "october": 10,
		"nov": 11, "november": 11,
		"dec": 12, "december": 12,
	}

	// "Jan 2020"、"January 2020"
	monthNameYearPattern = regexp.MustCompile(`(?i)\b(jan(uary)?|feb(ruary)?|mar(ch)?|apr(il)?|may|jun(e)?|jul(y)?|aug(ust)?|sep(t(ember)?)?|oct(ober)?|nov(ember)?|dec(ember)?)\.?\s+(\d{4})\b`)
	// "01/2020"、"2020-01"、"2020.06"
	numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{4})\b|\b(\d{4})[/.\-](\d{1,2})\b`)
	// "2020年1月"
	cjkDatePattern = regexp.MustCompile(`(\d{4})年(\d{1,2})月`)
	// 在职标记
	presentPattern = regexp.MustCompile(`(?i)\b(present|current|now|ongoing)\b|至今|目前`)
	// 日期区间分隔符
	rangeSplitPattern = regexp.MustCompile(`\s*(?:-|–|—|~|to|until|till|到|至)\s*`)

	internshipPattern = regexp.MustCompile(`(?i)\bintern(ship)?\b|实习`)
)

// ExtractEmail 从文本中提取首个邮箱地址
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// ExtractPhone 从文本中提取首个电话号码
func ExtractPhone(text string) string {
	return strings.TrimSpace(phonePattern.FindString(text))
}

// ExtractName 从文本开头提取候选人姓名
// 优先使用识别器的 PERSON 实体，否则取前几行中首个像姓名的短行
func ExtractName(ctx context.Context, recognizer EntityRecognizer, text string) string {
	head := text
	lines := strings.Split(text, "\n")
	if len(lines) > 20 {
		head = strings.Join(lines[:20], "\n")
	}

	if recognizer != nil {
		if entities, err := recognizer.Recognize(ctx, head); err == nil {
			for _, ent := range entities {
				if ent.Label == types.EntityPerson && ent.Text != "" {
					return strings.TrimSpace(ent.Text)
				}
			}
		}
		// 识别器失败或漏识别时继续走启发式，不报错
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "resume") || strings.Contains(lower, "curriculum") ||
			strings.Contains(lower, "简历") || strings.Contains(line, "@") {
			continue
		}
		n := len([]rune(line))
		if n >= 2 && n <= 40 && !strings.ContainsAny(line, "0123456789") {
			return line
		}
	}
	return ""
}

// ParseYearMonth 将单个日期片段解析为 (年, 月)
// 解析失败返回零值，调用方据此把对应经历的日期降级为未知
func ParseYearMonth(fragment string) types.YearMonth {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return types.YearMonth{}
	}

	if m := monthNameYearPattern.FindStringSubmatch(fragment); m != nil {
		name := strings.ToLower(strings.TrimSuffix(m[1], "."))
		month, ok := monthNames[name]
		if !ok {
			// 完整月名的前三个字母总在表里
			month = monthNames[name[:3]]
		}
		year, _ := strconv.Atoi(m[len(m)-1])
		return types.YearMonth{Year: year, Month: month}
	}

	if m := cjkDatePattern.FindStringSubmatch(fragment); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		return makeYearMonth(year, month)
	}

	if m := numericDatePattern.FindStringSubmatch(fragment); m != nil {
		if m[1] != "" {
			month, _ := strconv.Atoi(m[1])
			year, _ := strconv.Atoi(m[2])
			return makeYearMonth(year, month)
		}
		year, _ := strconv.Atoi(m[3])
		month, _ := strconv.Atoi(m[4])
		return makeYearMonth(year, month)
	}

	// 仅有年份时按1月处理，保证月粒度
	if m := regexp.MustCompile(`\b(19|20)\d{2}\b`).FindString(fragment); m != "" {
		year, _ := strconv.Atoi(m)
		return types.YearMonth{Year: year, Month: 1}
	}

	return types.YearMonth{}
}

func makeYearMonth(year, month int) types.YearMonth {
	if month < 1 || month > 12 || year < 1900 || year > 2200 {
		return types.YearMonth{}
	}
	return types.YearMonth{Year: year, Month: month}
}

// dateRange 一行中解析出的日期区间
type dateRange struct {
	start   types.YearMonth
	end     types.YearMonth
	present bool
	valid   bool
}

// parseDateRange 从一行文本解析日期区间
func parseDateRange(line string) dateRange {
	locs := findDateFragments(line)
	if len(locs) == 0 {
		return dateRange{}
	}

	start := ParseYearMonth(locs[0])
	if !start.Known() {
		return dateRange{}
	}

	if presentPattern.MatchString(line) {
		return dateRange{start: start, present: true, valid: true}
	}

	if len(locs) >= 2 {
		end := ParseYearMonth(locs[1])
		if end.Known() && !end.Before(start) {
			return dateRange{start: start, end: end, valid: true}
		}
	}
	return dateRange{}
}

// findDateFragments 找出一行中所有日期片段，按出现顺序返回
func findDateFragments(line string) []string {
	type span struct {
		start int
		text  string
	}
	var spans []span

	for _, p := range []*regexp.Regexp{monthNameYearPattern, cjkDatePattern, numericDatePattern} {
		for _, loc := range p.FindAllStringIndex(line, -1) {
			spans = append(spans, span{loc[0], line[loc[0]:loc[1]]})
		}
	}
	// 按位置排序（片段数量很小，插入排序足够）
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].start < spans[j-1].start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}

	var out []string
	for _, s := range spans {
		out = append(out, s.text)
	}
	return out
}

// ExperienceExtractor 从工作经历章节抽取 Role 序列并汇总总年限
type ExperienceExtractor struct {
	recognizer EntityRecognizer
	nowFn      func() types.YearMonth
}

// ExperienceExtractorOption 抽取器配置选项
type ExperienceExtractorOption func(*ExperienceExtractor)

// WithNowFunc 注入当前时间，在职经历的结束月由它决定（测试用）
func WithNowFunc(fn func() types.YearMonth) ExperienceExtractorOption {
	return func(e *ExperienceExtractor) {
		e.nowFn = fn
	}
}

// NewExperienceExtractor 创建经历抽取器
// recognizer 可以为 nil，此时组织名只靠启发式识别
func NewExperienceExtractor(recognizer EntityRecognizer, options ...ExperienceExtractorOption) *ExperienceExtractor {
	e := &ExperienceExtractor{
		recognizer: recognizer,
		nowFn: func() types.YearMonth {
			now := time.Now()
			return types.YearMonth{Year: now.Year(), Month: int(now.Month())}
		},
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Extract 解析经历章节文本
// 章节缺失（空文本）返回空汇总，不是错误；无法解析日期的经历降级为日期未知并记录警告
func (e *ExperienceExtractor) Extract(ctx context.Context, experienceText string) (types.ExperienceSummary, []string, error) {
	summary := types.ExperienceSummary{}
	if strings.TrimSpace(experienceText) == "" {
		return summary, nil, nil
	}

	var warnings []string

	// 识别器输出的组织实体，供各经历块认领
	var orgs []string
	if e.recognizer != nil {
		if entities, err := e.recognizer.Recognize(ctx, experienceText); err == nil {
			for _, ent := range entities {
				if ent.Label == types.EntityOrganization {
					orgs = append(orgs, ent.Text)
				}
			}
		} else {
			warnings = append(warnings, "实体识别器不可用，组织名仅靠启发式识别: "+err.Error())
		}
	}

	for _, block := range splitRoleBlocks(experienceText) {
		role, warn := e.parseRoleBlock(block, orgs)
		if role == nil {
			continue
		}
		if warn != "" {
			warnings = append(warnings, warn)
		}
		summary.Roles = append(summary.Roles, *role)
	}

	summary.TotalYears = ComputeTotalYears(summary.Roles, e.nowFn())
	return summary, warnings, nil
}

// splitRoleBlocks 以空行为界把经历章节切成独立的经历块
func splitRoleBlocks(text string) []string {
	var blocks []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			blocks = append(blocks, strings.Join(current, "\n"))
			current = current[:0]
		}
	}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		// 块内出现第二个日期区间行时另起一块（简历可能不用空行分隔经历）
		if len(current) > 0 && parseDateRange(line).valid && hasDateLine(current) {
			// 新经历通常以职位行开头、日期行紧随其后，把紧邻的职位行带入新块
			var carry string
			if last := current[len(current)-1]; len(current) > 1 && !parseDateRange(last).valid {
				carry = last
				current = current[:len(current)-1]
			}
			flush()
			if carry != "" {
				current = append(current, carry)
			}
		}
		current = append(current, line)
	}
	flush()
	return blocks
}

func hasDateLine(lines []string) bool {
	for _, l := range lines {
		if parseDateRange(l).valid {
			return true
		}
	}
	return false
}

// parseRoleBlock 解析单个经历块
// 返回的警告非空表示该经历的日期降级为未知
func (e *ExperienceExtractor) parseRoleBlock(block string, orgs []string) (*types.Role, string) {
	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return nil, ""
	}

	role := &types.Role{
		Internship: internshipPattern.MatchString(block),
	}

	var descLines []string
	dateFound := false
	for i, line := range lines {
		if !dateFound {
			if dr := parseDateRange(line); dr.valid {
				role.Start = dr.start
				role.End = dr.end
				role.Present = dr.present
				dateFound = true
				// 日期行之外的内容仍可能是职位/组织
				remainder := removeDateFragments(line)
				if remainder != "" {
					assignTitleOrg(role, remainder)
				}
				continue
			}
		}
		if i < 2 && role.Title == "" {
			assignTitleOrg(role, line)
			continue
		}
		descLines = append(descLines, strings.TrimSpace(line))
	}

	// 没有任何标题/组织/描述的块不算经历
	if role.Title == "" && role.Organization == "" && len(descLines) == 0 {
		return nil, ""
	}

	role.Description = strings.Join(descLines, "\n")

	// 组织名缺失时尝试认领识别器给出的实体
	if role.Organization == "" {
		for _, org := range orgs {
			if strings.Contains(block, org) {
				role.Organization = strings.TrimSpace(org)
				break
			}
		}
	}

	var warn string
	if !dateFound {
		warn = "经历日期无法解析，该段不计入总年限: " + tracingSafeTitle(role)
	}
	return role, warn
}

// removeDateFragments 去掉一行中的日期片段和区间分隔符
func removeDateFragments(line string) string {
	for _, p := range []*regexp.Regexp{monthNameYearPattern, cjkDatePattern, numericDatePattern, presentPattern} {
		line = p.ReplaceAllString(line, "")
	}
	line = rangeSplitPattern.ReplaceAllString(line, " ")
	return strings.Trim(strings.TrimSpace(line), "-–—|,()，（）")
}

// assignTitleOrg 把一行拆成职位与组织
// 常见格式："Software Engineer at Acme Inc"、"Acme Inc — Software Engineer"、"职位 | 组织"
func assignTitleOrg(role *types.Role, line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	for _, sep := range []string{" at ", " @ ", " | ", " — ", " – ", " - ", "，", ", "} {
		if idx := strings.Index(line, sep); idx > 0 {
			left := strings.TrimSpace(line[:idx])
			right := strings.TrimSpace(line[idx+len(sep):])
			if orgSuffixPattern.MatchString(left) && !orgSuffixPattern.MatchString(right) {
				left, right = right, left
			}
			if role.Title == "" {
				role.Title = left
			}
			if role.Organization == "" {
				role.Organization = right
			}
			return
		}
	}

	if orgSuffixPattern.MatchString(line) && role.Organization == "" {
		role.Organization = line
		return
	}
	if role.Title == "" {
		role.Title = line
	} else if role.Organization == "" {
		role.Organization = line
	}
}

func tracingSafeTitle(role *types.Role) string {
	if role.Title != "" {
		return role.Title
	}
	if role.Organization != "" {
		return role.Organization
	}
	return "(未命名经历)"
}

// RegexEntityRecognizer 正则启发式实体识别器
// 生产环境应替换为真正的NER服务；此实现保证无外部依赖时管线依然可用
type RegexEntityRecognizer struct{}

// NewRegexEntityRecognizer 创建启发式识别器
func NewRegexEntityRecognizer() *RegexEntityRecognizer {
	return &RegexEntityRecognizer{}
}

// Recognize 识别文本中的组织与日期实体
func (r *RegexEntityRecognizer) Recognize(ctx context.Context, text string) ([]types.Entity, error) {
	var entities []types.Entity
	seen := make(map[string]bool)

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if loc := orgSuffixPattern.FindStringIndex(line); loc != nil {
			// 从后缀向前取到行首或分隔符，作为组织名
			seg := line[:loc[1]]
			if idx := strings.LastIndexAny(seg[:loc[0]], "|,—–@："); idx >= 0 {
				seg = seg[idx+1:]
			}
			org := strings.TrimSpace(seg)
			if org != "" && !seen[org] {
				seen[org] = true
				entities = append(entities, types.Entity{Text: org, Label: types.EntityOrganization})
			}
		}
		for _, frag := range findDateFragments(line) {
			if !seen[frag] {
				seen[frag] = true
				entities = append(entities, types.Entity{Text: frag, Label: types.EntityDate})
			}
		}
	}
	return entities, nil
}
