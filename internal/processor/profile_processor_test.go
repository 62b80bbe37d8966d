package processor

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/parser"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSkillMatcher 基于固定词表的技能匹配器桩
type stubSkillMatcher struct {
	known []string
}

func (s *stubSkillMatcher) MatchSkills(text string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, skill := range s.known {
		if strings.Contains(lower, strings.ToLower(skill)) {
			matched = append(matched, skill)
		}
	}
	sort.Strings(matched)
	return matched
}

// personRecognizer 固定返回一个 PERSON 实体的识别器桩
type personRecognizer struct{}

func (personRecognizer) Recognize(ctx context.Context, text string) ([]types.Entity, error) {
	return []types.Entity{{Text: "Li Hua", Label: types.EntityPerson}}, nil
}

func newTestProcessor(t *testing.T) *ProfileProcessor {
	t.Helper()
	matcher := &stubSkillMatcher{known: []string{"Go", "Python", "Docker", "MySQL"}}
	return NewProfileProcessor(&Components{SkillMatcher: matcher}, nil)
}

const sampleResume = `Zhang Wei
Email: zhang.wei@example.com | Phone: 138-0013-8000

Skills
Go, Python, Docker, MySQL

Work Experience
Software Engineer at Acme Technologies
Jan 2020 - Dec 2021
负责后端服务开发与性能优化

Education
Bachelor of Computer Science
Tsinghua University, 2016 - 2020
GPA: 3.8

Projects
Resume Parser: built a resume parsing service in Go

Achievements
- 黑客马拉松一等奖

Extracurricular
- 学生会技术部部长
`

func textDocument(content string) *types.RawDocument {
	return &types.RawDocument{
		Content:   []byte(content),
		MediaType: MediaTypePlainText,
		FileName:  "resume.txt",
		Size:      int64(len(content)),
	}
}

func TestProcessDocument(t *testing.T) {
	ctx := context.Background()

	t.Run("纯文本简历端到端", func(t *testing.T) {
		p := newTestProcessor(t)
		result, err := p.ProcessDocument(ctx, textDocument(sampleResume))
		require.NoError(t, err)
		require.NotNil(t, result.Profile)

		profile := result.Profile
		assert.NotEmpty(t, profile.ProfileID)
		assert.Equal(t, "Zhang Wei", profile.Identity.Name)
		assert.Equal(t, "zhang.wei@example.com", profile.Identity.Email)
		assert.Equal(t, "138-0013-8000", profile.Identity.Phone)

		assert.Equal(t, []string{"Docker", "Go", "MySQL", "Python"}, profile.Skills)

		require.Len(t, profile.Experience.Roles, 1)
		role := profile.Experience.Roles[0]
		assert.Equal(t, "Software Engineer", role.Title)
		assert.Equal(t, "Acme Technologies", role.Organization)
		assert.False(t, role.Internship)
		assert.InDelta(t, 2.0, profile.Experience.TotalYears, 1e-9, "2020-01到2021-12按闭区间应是整两年")
		assert.False(t, profile.Fresher, "有两年正式经历不算应届")

		require.Len(t, profile.Education, 1)
		edu := profile.Education[0]
		assert.Equal(t, "Bachelor", edu.DegreeLevel)
		assert.Equal(t, "Tsinghua University", edu.Institution)
		assert.Equal(t, "Computer Science", edu.Field)
		assert.Equal(t, 2020, edu.Year)
		assert.InDelta(t, 3.8, edu.GPA, 1e-9)

		require.Len(t, profile.Projects, 1)
		assert.Equal(t, "Resume Parser", profile.Projects[0].Name)
		require.Len(t, profile.Achievements, 1)
		assert.Equal(t, "黑客马拉松一等奖", profile.Achievements[0].Description)
		require.Len(t, profile.Extracurricular, 1)
	})

	t.Run("画像摘要不含身份信息", func(t *testing.T) {
		p := newTestProcessor(t)
		result, err := p.ProcessDocument(ctx, textDocument(sampleResume))
		require.NoError(t, err)

		summary := result.Profile.Summary
		assert.NotEmpty(t, summary)
		assert.NotContains(t, summary, "Zhang Wei", "摘要中不能出现姓名")
		assert.NotContains(t, summary, "zhang.wei@example.com", "摘要中不能出现邮箱")
		assert.NotContains(t, summary, "138-0013-8000", "摘要中不能出现电话")
		assert.Contains(t, summary, "Go")
		assert.Contains(t, summary, "Software Engineer")
	})

	t.Run("正文过短被拒绝", func(t *testing.T) {
		p := newTestProcessor(t)
		_, err := p.ProcessDocument(ctx, textDocument("太短了"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, parser.ErrInsufficientContent))
	})

	t.Run("空文档被拒绝", func(t *testing.T) {
		p := newTestProcessor(t)
		_, err := p.ProcessDocument(ctx, textDocument(""))
		require.Error(t, err)
		assert.True(t, errors.Is(err, parser.ErrEmptyDocument))
	})

	t.Run("超过大小上限被拒绝", func(t *testing.T) {
		matcher := &stubSkillMatcher{known: []string{"Go"}}
		p := NewProfileProcessor(&Components{SkillMatcher: matcher}, nil, WithsetMaxdocumentbytes(16))
		_, err := p.ProcessDocument(ctx, textDocument(sampleResume))
		require.Error(t, err)
		assert.True(t, errors.Is(err, parser.ErrOversizeDocument))
	})

	t.Run("不支持的媒体类型被拒绝", func(t *testing.T) {
		p := newTestProcessor(t)
		doc := textDocument(sampleResume)
		doc.MediaType = "application/msword"
		_, err := p.ProcessDocument(ctx, doc)
		require.Error(t, err)
		assert.True(t, errors.Is(err, parser.ErrUnsupportedMediaType))
	})

	t.Run("注入的实体识别器参与姓名提取", func(t *testing.T) {
		// 开头没有像姓名的短行，只有识别器能给出 PERSON 实体
		headless := `个人简历
li.hua@example.com

Skills
Go, 多年后端开发与架构设计实践经验，长期参与大型分布式系统的设计与维护工作
`
		matcher := &stubSkillMatcher{known: []string{"Go"}}
		p := NewProfileProcessor(&Components{
			SkillMatcher:     matcher,
			EntityRecognizer: personRecognizer{},
		}, nil)
		result, err := p.ProcessDocument(ctx, textDocument(headless))
		require.NoError(t, err)
		assert.Equal(t, "Li Hua", result.Profile.Identity.Name, "姓名应来自识别器的PERSON实体")
	})

	t.Run("缺少技能分区时回退全文扫描", func(t *testing.T) {
		noSkillsResume := `Li Na
li.na@example.com

Work Experience
Backend Developer at Foo Systems
Mar 2021 - Feb 2022
日常使用 Go 和 Docker 开发微服务

Education
Master of Software Engineering
Peking University, 2019 - 2021
`
		p := newTestProcessor(t)
		result, err := p.ProcessDocument(ctx, textDocument(noSkillsResume))
		require.NoError(t, err)

		assert.Contains(t, result.Profile.Skills, "Go", "全文兜底扫描应命中技能")
		assert.Contains(t, result.Profile.Skills, "Docker")
		found := false
		for _, w := range result.Profile.Warnings {
			if strings.Contains(w, "技能分区") {
				found = true
			}
		}
		assert.True(t, found, "缺失分区必须记入警告")
	})

	t.Run("缺少经历和教育分区产生降级警告", func(t *testing.T) {
		bare := `Wang Fang
wang.fang@example.com

Skills
Go, Python, Docker, MySQL, 以及多年的工程实践经验积累
`
		p := newTestProcessor(t)
		result, err := p.ProcessDocument(ctx, textDocument(bare))
		require.NoError(t, err)

		profile := result.Profile
		assert.Empty(t, profile.Experience.Roles)
		assert.Zero(t, profile.Experience.TotalYears)
		assert.True(t, profile.Fresher, "没有任何经历视为应届")

		joined := strings.Join(profile.Warnings, "\n")
		assert.Contains(t, joined, "工作经历分区")
		assert.Contains(t, joined, "教育分区")
	})

	t.Run("实习经历标记与应届判定", func(t *testing.T) {
		internResume := `Chen Jie
chen.jie@example.com

Skills
Python, MySQL

Work Experience
Software Engineer Intern at Bar Labs
Jun 2023 - Aug 2023
参与数据管道开发
`
		p := newTestProcessor(t)
		result, err := p.ProcessDocument(ctx, textDocument(internResume))
		require.NoError(t, err)

		require.Len(t, result.Profile.Experience.Roles, 1)
		assert.True(t, result.Profile.Experience.Roles[0].Internship)
		assert.True(t, result.Profile.Fresher, "只有实习经历必为应届")
	})

	t.Run("PDF类型未配置提取器时报错", func(t *testing.T) {
		p := NewProfileProcessor(&Components{SkillMatcher: &stubSkillMatcher{}}, nil)
		doc := &types.RawDocument{
			Content:   bytes.Repeat([]byte{0x25}, 100),
			MediaType: MediaTypePDF,
			FileName:  "resume.pdf",
		}
		_, err := p.ProcessDocument(ctx, doc)
		require.Error(t, err)
		var procErr *ProfileProcessError
		assert.True(t, errors.As(err, &procErr))
	})
}
