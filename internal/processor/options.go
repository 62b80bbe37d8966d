package processor

import (
	"log"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/parser"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithcompTextextractor 设置文本提取器组件
func WithcompTextextractor(extractor TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.TextExtractor = extractor
	}
}

// WithcompSegmenter 设置分区器组件
func WithcompSegmenter(segmenter Segmenter) ComponentOpt {
	return func(c *Components) {
		c.Segmenter = segmenter
	}
}

// WithcompSkillmatcher 设置技能匹配器组件
func WithcompSkillmatcher(matcher SkillMatcher) ComponentOpt {
	return func(c *Components) {
		c.SkillMatcher = matcher
	}
}

// WithcompEntityrecognizer 设置命名实体识别器组件，用于姓名提取
func WithcompEntityrecognizer(recognizer parser.EntityRecognizer) ComponentOpt {
	return func(c *Components) {
		c.EntityRecognizer = recognizer
	}
}

// WithcompExperienceanalyzer 设置经历分析器组件
func WithcompExperienceanalyzer(analyzer ExperienceAnalyzer) ComponentOpt {
	return func(c *Components) {
		c.ExperienceAnalyzer = analyzer
	}
}

// ----- 设置选项 -----

// WithsetMincontentlength 设置正文最小长度阈值
func WithsetMincontentlength(n int) SettingOpt {
	return func(s *Settings) {
		s.MinContentLength = n
	}
}

// WithsetMaxdocumentbytes 设置文档大小上限
func WithsetMaxdocumentbytes(n int64) SettingOpt {
	return func(s *Settings) {
		s.MaxDocumentBytes = n
	}
}

// WithsetDebug 设置调试模式
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger *log.Logger) SettingOpt {
	return func(s *Settings) {
		s.Logger = logger
	}
}
