package parser

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed skills_taxonomy.yaml
var defaultTaxonomyYAML []byte

// TaxonomyEntry 词表中的一条规范技能
type TaxonomyEntry struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

// SkillTaxonomy 规范技能词表：规范名 → 已知变体集合
// 启动时加载一次，运行期只读
type SkillTaxonomy struct {
	Version int             `yaml:"version"`
	Skills  []TaxonomyEntry `yaml:"skills"`
}

// LoadDefaultTaxonomy 加载内嵌的默认词表
func LoadDefaultTaxonomy() (*SkillTaxonomy, error) {
	return parseTaxonomy(defaultTaxonomyYAML)
}

// LoadTaxonomyFile 从文件加载词表
func LoadTaxonomyFile(path string) (*SkillTaxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取技能词表失败 %s: %w", path, err)
	}
	return parseTaxonomy(data)
}

func parseTaxonomy(data []byte) (*SkillTaxonomy, error) {
	var t SkillTaxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("解析技能词表失败: %w", err)
	}
	if len(t.Skills) == 0 {
		return nil, fmt.Errorf("技能词表为空")
	}
	return &t, nil
}

// TaxonomySkillMatcher 两段式技能匹配器
// 第一遍：对每个已知变体做大小写不敏感的精确/子串匹配
// 第二遍：剩余token与变体做归一化相似度比较，仅高于阈值时接受
// 未匹配的token直接丢弃：宁可漏报，不可误报
type TaxonomySkillMatcher struct {
	taxonomy  *SkillTaxonomy
	threshold float64

	// 预处理索引：小写变体 → 规范名
	variantIndex map[string]string
}

// SkillMatcherOption 匹配器配置选项
type SkillMatcherOption func(*TaxonomySkillMatcher)

// WithFuzzyThreshold 设置模糊匹配阈值
func WithFuzzyThreshold(threshold float64) SkillMatcherOption {
	return func(m *TaxonomySkillMatcher) {
		m.threshold = threshold
	}
}

// NewTaxonomySkillMatcher 创建匹配器并建立变体索引
func NewTaxonomySkillMatcher(taxonomy *SkillTaxonomy, options ...SkillMatcherOption) (*TaxonomySkillMatcher, error) {
	if taxonomy == nil || len(taxonomy.Skills) == 0 {
		return nil, fmt.Errorf("技能词表不能为空")
	}

	m := &TaxonomySkillMatcher{
		taxonomy:     taxonomy,
		threshold:    0.8,
		variantIndex: make(map[string]string),
	}

	for _, entry := range taxonomy.Skills {
		// 规范名本身永远是自己的变体，保证匹配幂等
		m.variantIndex[strings.ToLower(entry.Name)] = entry.Name
		for _, v := range entry.Variants {
			lower := strings.ToLower(strings.TrimSpace(v))
			if lower == "" {
				continue
			}
			if _, exists := m.variantIndex[lower]; !exists {
				m.variantIndex[lower] = entry.Name
			}
		}
	}

	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// MatchSkills 从文本中解析出去重后的规范技能集合
// 结果按规范名排序，保证相同输入产生相同输出
func (m *TaxonomySkillMatcher) MatchSkills(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lower := strings.ToLower(text)
	found := make(map[string]bool)
	matchedSpans := make(map[string]bool)

	// 第一遍：精确/子串匹配
	for variant, canonical := range m.variantIndex {
		if found[canonical] {
			continue
		}
		if containsVariant(lower, variant) {
			found[canonical] = true
			matchedSpans[variant] = true
		}
	}

	// 第二遍：剩余token的模糊匹配
	for _, token := range tokenize(lower) {
		if matchedSpans[token] {
			continue
		}
		canonical, score := m.bestFuzzyMatch(token)
		if canonical != "" && score >= m.threshold && !found[canonical] {
			found[canonical] = true
		}
	}

	if len(found) == 0 {
		return nil
	}
	result := make([]string, 0, len(found))
	for name := range found {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

// bestFuzzyMatch 返回与token相似度最高的规范名及其分数
func (m *TaxonomySkillMatcher) bestFuzzyMatch(token string) (string, float64) {
	// 太短的token模糊匹配误报率过高，直接跳过
	if len([]rune(token)) < 4 {
		return "", 0
	}

	best := ""
	bestScore := 0.0
	for variant, canonical := range m.variantIndex {
		score := similarity(token, variant)
		// 平分时按规范名字典序取舍，保证遍历顺序不影响结果
		if score > bestScore || (score == bestScore && best != "" && canonical < best) {
			bestScore = score
			best = canonical
		}
	}
	return best, bestScore
}

// containsVariant 判断变体是否作为完整词出现在文本中
// 短变体（如 go、ml、c#）要求严格的词边界，长变体允许子串包含
func containsVariant(text, variant string) bool {
	idx := 0
	for {
		pos := strings.Index(text[idx:], variant)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(variant)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		idx = start + 1
		if idx >= len(text) {
			return false
		}
	}
}

// boundaryBefore 判断匹配起点之前是否构成词边界
func boundaryBefore(text string, start int) bool {
	if start <= 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:start])
	return isBoundaryRune(r)
}

// boundaryAfter 判断匹配终点之后是否构成词边界
func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return isBoundaryRune(r)
}

// isBoundaryRune 判断字符是否构成词边界
// 中文不以空格分词，汉字相邻视为边界；+ 和 # 属于技能名的一部分（c++、c#），不是边界
func isBoundaryRune(r rune) bool {
	if unicode.Is(unicode.Han, r) {
		return true
	}
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
}

// tokenize 将文本切成候选技能token
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#' && r != '.' && r != '/'
	})
	seen := make(map[string]bool)
	var tokens []string
	for _, f := range fields {
		f = strings.Trim(f, "./")
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		tokens = append(tokens, f)
	}
	return tokens
}

// similarity 归一化相似度，取编辑距离相似度与token重叠度的较大者
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	lev := levenshteinSimilarity(a, b)
	overlap := tokenOverlap(a, b)
	if overlap > lev {
		return overlap
	}
	return lev
}

// levenshteinSimilarity 1 - 编辑距离/较长串长度
func levenshteinSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1.0 - float64(prev[lb])/float64(maxLen)
}

// tokenOverlap 词级Jaccard重叠度，用于多词技能（如 "machine learning"）
func tokenOverlap(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	common := 0
	union := len(set)
	for _, t := range tb {
		if set[t] {
			common++
		} else {
			union++
		}
	}
	return float64(common) / float64(union)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
