package parser

import (
	"testing"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadingSegmenter(t *testing.T) {
	segmenter := NewHeadingSegmenter()

	t.Run("典型英文简历分段", func(t *testing.T) {
		text := `John Smith
john@example.com

Skills
Go, Python, Docker

Work Experience
Senior Engineer at ACME
2020-01 - 2022-06

Education
B.S. in Computer Science, State University, 2019`

		result := segmenter.Segment(text)
		require.NotNil(t, result)
		assert.Contains(t, result.Preamble, "John Smith", "标题之前的内容应保留在前言")
		assert.Contains(t, result.Sections[types.SectionSkills], "Go, Python, Docker")
		assert.Contains(t, result.Sections[types.SectionExperience], "Senior Engineer at ACME")
		assert.Contains(t, result.Sections[types.SectionEducation], "State University")
	})

	t.Run("中文标题识别", func(t *testing.T) {
		text := "张三\n\n专业技能\nGo、MySQL\n\n工作经历\n某某科技有限公司 后端工程师\n\n教育背景\n某大学 计算机 本科"
		result := segmenter.Segment(text)
		assert.Contains(t, result.Sections[types.SectionSkills], "Go、MySQL")
		assert.Contains(t, result.Sections[types.SectionExperience], "某某科技有限公司")
		assert.Contains(t, result.Sections[types.SectionEducation], "某大学")
	})

	t.Run("行内标题冒号后内容归入章节", func(t *testing.T) {
		result := segmenter.Segment("Skills: Python, Java\n\nExperience\nACME Corp")
		assert.Equal(t, "Python, Java", result.Sections[types.SectionSkills])
	})

	t.Run("标题词开头的正文不当作标题", func(t *testing.T) {
		text := "Summary line\nExperienced developer with 5 years in Go\n\nSkills\nGo"
		result := segmenter.Segment(text)
		assert.NotContains(t, result.Sections, types.SectionExperience,
			"Experienced 开头的句子不应被识别为经历章节")
		assert.Contains(t, result.Preamble, "Experienced developer")
	})

	t.Run("复合标题由排前的规则认领", func(t *testing.T) {
		result := segmenter.Segment("Projects & Achievements\nBuilt a search engine")
		assert.Contains(t, result.Sections[types.SectionProjects], "Built a search engine")
		assert.NotContains(t, result.Sections, types.SectionAchievements)
	})

	t.Run("同名章节重复出现时拼接", func(t *testing.T) {
		text := "Experience\nACME Corp\n\nEducation\nMIT\n\nInternships\nBeta Inc"
		result := segmenter.Segment(text)
		exp := result.Sections[types.SectionExperience]
		assert.Contains(t, exp, "ACME Corp")
		assert.Contains(t, exp, "Beta Inc", "实习经历应并入工作经历章节")
	})

	t.Run("无任何标题时全文留在前言", func(t *testing.T) {
		result := segmenter.Segment("just a plain paragraph\nwith no headings at all")
		assert.Empty(t, result.Sections)
		assert.Contains(t, result.Preamble, "just a plain paragraph")
	})

	t.Run("空文本返回空结果", func(t *testing.T) {
		result := segmenter.Segment("   ")
		assert.Empty(t, result.Sections)
		assert.Empty(t, result.Preamble)
	})
}
