package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/constants"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"gopkg.in/yaml.v3"
)

// Config 应用程序配置
// 启动时加载一次，之后只读；所有组件通过显式传入获取配置，不依赖全局可变状态
type Config struct {
	// 抽取管线配置
	Extraction ExtractionConfig `yaml:"extraction"`

	// 评审服务配置
	Judge JudgeConfig `yaml:"judge"`

	// 评分维度权重，缺省时使用内置默认值
	Weights map[string]float64 `yaml:"weights,omitempty"`

	// 技能词表文件路径，留空时使用内嵌词表
	TaxonomyPath string `yaml:"taxonomy_path,omitempty"`

	// 日志配置
	Logger LoggerConfig `yaml:"logger"`
}

// ExtractionConfig 抽取管线配置结构
type ExtractionConfig struct {
	MinContentLength int   `yaml:"min_content_length"` // 正文最小长度
	MaxDocumentBytes int64 `yaml:"max_document_bytes"` // 文档大小上限
}

// JudgeConfig 评审服务配置结构
type JudgeConfig struct {
	APIKey         string  `yaml:"api_key"`         // API密钥，环境变量 JUDGE_API_KEY 优先
	APIURL         string  `yaml:"api_url"`         // OpenAI兼容端点，留空使用默认
	Model          string  `yaml:"model"`           // 模型名称
	TimeoutSeconds int     `yaml:"timeout_seconds"` // 单次调用超时(秒)
	MaxAttempts    int     `yaml:"max_attempts"`    // 网络类错误最大尝试次数
	QPMLimit       int     `yaml:"qpm_limit"`       // 每分钟请求上限，0表示不限
	MinScore       float64 `yaml:"min_score"`       // 批量结果过滤阈值
	Concurrency    int     `yaml:"concurrency"`     // 批量评估并发上限
}

// LoggerConfig 日志配置结构
type LoggerConfig struct {
	Level        string `yaml:"level"`         // 日志级别
	Format       string `yaml:"format"`        // json 或 pretty
	TimeFormat   string `yaml:"time_format"`   // 时间戳格式
	ReportCaller bool   `yaml:"report_caller"` // 是否记录调用位置
}

// DefaultConfig 返回带内置默认值的配置
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			MinContentLength: constants.MinContentLength,
			MaxDocumentBytes: constants.MaxDocumentSizeBytes,
		},
		Judge: JudgeConfig{
			Model:          "qwen-plus",
			TimeoutSeconds: 60,
			MaxAttempts:    constants.JudgeMaxAttempts,
			QPMLimit:       60,
			MinScore:       7.0,
			Concurrency:    4,
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig 从YAML文件加载配置；path为空时按惯例查找 config.yaml
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		// 依次尝试工作目录和可执行文件目录
		candidates := []string{"config.yaml"}
		if exe, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(exe), "config.yaml"))
		}
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
		if path == "" {
			// 找不到配置文件时直接使用默认值
			applyDefaults(cfg)
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败 %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败 %s: %w", path, err)
	}

	applyDefaults(cfg)
	return cfg, nil
}

// applyDefaults 补齐YAML中缺省的字段
func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Extraction.MinContentLength <= 0 {
		cfg.Extraction.MinContentLength = def.Extraction.MinContentLength
	}
	if cfg.Extraction.MaxDocumentBytes <= 0 {
		cfg.Extraction.MaxDocumentBytes = def.Extraction.MaxDocumentBytes
	}
	if cfg.Judge.Model == "" {
		cfg.Judge.Model = def.Judge.Model
	}
	if cfg.Judge.TimeoutSeconds <= 0 {
		cfg.Judge.TimeoutSeconds = def.Judge.TimeoutSeconds
	}
	if cfg.Judge.MaxAttempts <= 0 {
		cfg.Judge.MaxAttempts = def.Judge.MaxAttempts
	}
	if cfg.Judge.Concurrency <= 0 {
		cfg.Judge.Concurrency = def.Judge.Concurrency
	}
	if key := os.Getenv("JUDGE_API_KEY"); key != "" {
		cfg.Judge.APIKey = key
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = def.Logger.Level
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = def.Logger.Format
	}
}

// ScoreWeights 返回配置中的权重；未配置时返回默认权重
// 返回值未经校验，使用前必须通过 scorer.ValidateWeights
func (c *Config) ScoreWeights() types.WeightConfig {
	if len(c.Weights) == 0 {
		return constants.DefaultWeights()
	}
	w := make(types.WeightConfig, len(c.Weights))
	for k, v := range c.Weights {
		w[types.ScoreCategory(k)] = v
	}
	return w
}
