package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/config"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/logger"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/parser"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/processor"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/scorer"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"
	"github.com/Soumik-R/Smart-Resume-Screener/pkg/agent"
	"github.com/Soumik-R/Smart-Resume-Screener/pkg/ratelimit"

	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// 命令行参数定义
var (
	configPath  = pflag.String("config", "", "配置文件路径，留空时查找 config.yaml")
	jdPath      = pflag.String("jd", "", "岗位描述文本文件路径 (必填)")
	jobTitle    = pflag.String("title", "", "岗位名称，留空时取JD首行")
	resumePaths = pflag.StringSlice("resume", nil, "简历文件或目录路径，可重复指定 (必填，支持 .pdf / .txt)")
	minScore    = pflag.Float64("min-score", -1, "入围总分阈值，-1 时使用配置值")
	concurrency = pflag.Int("concurrency", 0, "批量评估并发上限，0 时使用配置值")
	outputJSON  = pflag.Bool("json", false, "以JSON格式输出结果")
	verbose     = pflag.BoolP("verbose", "v", false, "输出调试日志")
)

func main() {
	pflag.Parse()

	if *jdPath == "" || len(*resumePaths) == 0 {
		fmt.Fprintln(os.Stderr, "错误: --jd 和 --resume 为必填参数")
		pflag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	if *verbose {
		cfg.Logger.Level = "debug"
		cfg.Logger.Format = "pretty"
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	// 本地链路追踪，不接出口导出器
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	ctx := context.Background()
	if err := run(ctx, cfg); err != nil {
		logger.Error().Err(err).Msg("筛选流程失败")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	pipeline, jdProcessor, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	jdBytes, err := os.ReadFile(*jdPath)
	if err != nil {
		return fmt.Errorf("读取岗位描述失败: %w", err)
	}
	jdText, err := parser.DecodePlainText(jdBytes)
	if err != nil {
		return fmt.Errorf("解码岗位描述失败: %w", err)
	}
	job, err := jdProcessor.ParseJobDescription(jdText, *jobTitle)
	if err != nil {
		return err
	}
	logger.Info().
		Str("job_id", job.JobID).
		Str("title", job.Title).
		Int("required_skills", len(job.RequiredSkills)).
		Msg("岗位要求解析完成")

	resumeFiles, err := expandResumePaths(*resumePaths)
	if err != nil {
		return err
	}
	if len(resumeFiles) == 0 {
		return fmt.Errorf("指定的路径下没有找到任何 .pdf / .txt 简历文件")
	}

	// 逐份简历构建候选人画像，单份失败不阻断其余简历
	var profiles []*types.CandidateProfile
	for _, path := range resumeFiles {
		profile, err := ingestResume(ctx, pipeline, path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("简历处理失败，已跳过")
			continue
		}
		logger.Info().
			Str("profile_id", profile.ProfileID).
			Str("file", filepath.Base(path)).
			Int("skills", len(profile.Skills)).
			Float64("total_years", profile.Experience.TotalYears).
			Bool("fresher", profile.Fresher).
			Msg("候选人画像构建完成")
		profiles = append(profiles, profile)
	}
	if len(profiles) == 0 {
		return fmt.Errorf("没有任何简历解析成功")
	}

	engine, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	threshold := cfg.Judge.MinScore
	if *minScore >= 0 {
		threshold = *minScore
	}
	conc := cfg.Judge.Concurrency
	if *concurrency > 0 {
		conc = *concurrency
	}

	result, err := engine.EvaluateBatch(ctx, profiles, job, cfg.ScoreWeights(), scorer.BatchOptions{
		Concurrency: conc,
		MinScore:    threshold,
	})
	if err != nil {
		return err
	}

	return printResult(result, threshold)
}

// buildPipeline 组装画像流水线与JD解析器
func buildPipeline(ctx context.Context, cfg *config.Config) (*processor.ProfileProcessor, *processor.JDProcessor, error) {
	extractor, err := parser.NewEinoPDFTextExtractor(ctx,
		parser.WithEinoLogger(log.New(os.Stderr, "[PDF] ", log.LstdFlags)))
	if err != nil {
		return nil, nil, fmt.Errorf("初始化PDF提取器失败: %w", err)
	}

	taxonomy, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, nil, err
	}
	matcher, err := parser.NewTaxonomySkillMatcher(taxonomy)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化技能匹配器失败: %w", err)
	}

	recognizer := parser.NewRegexEntityRecognizer()
	components := &processor.Components{
		TextExtractor:      extractor,
		Segmenter:          parser.NewHeadingSegmenter(),
		SkillMatcher:       matcher,
		EntityRecognizer:   recognizer,
		ExperienceAnalyzer: parser.NewExperienceExtractor(recognizer),
	}
	settings := &processor.Settings{
		MinContentLength: cfg.Extraction.MinContentLength,
		MaxDocumentBytes: cfg.Extraction.MaxDocumentBytes,
		Logger:           log.New(os.Stderr, "[Pipeline] ", log.LstdFlags),
	}
	pipeline := processor.NewProfileProcessor(components, settings)

	jdProcessor, err := processor.NewJDProcessor(matcher)
	if err != nil {
		return nil, nil, err
	}
	return pipeline, jdProcessor, nil
}

func loadTaxonomy(cfg *config.Config) (*parser.SkillTaxonomy, error) {
	if cfg.TaxonomyPath != "" {
		taxonomy, err := parser.LoadTaxonomyFile(cfg.TaxonomyPath)
		if err != nil {
			return nil, fmt.Errorf("加载技能词表 %s 失败: %w", cfg.TaxonomyPath, err)
		}
		return taxonomy, nil
	}
	return parser.LoadDefaultTaxonomy()
}

// buildEngine 组装评分引擎：LLM评审客户端 + 限流器 + 重试策略
func buildEngine(cfg *config.Config) (*scorer.ScoringEngine, error) {
	if cfg.Judge.APIKey == "" {
		return nil, fmt.Errorf("缺少评审服务API密钥（配置 judge.api_key 或环境变量 JUDGE_API_KEY）")
	}
	chatModel, err := agent.NewOpenAICompatChatModel(cfg.Judge.APIKey, cfg.Judge.Model, cfg.Judge.APIURL)
	if err != nil {
		return nil, fmt.Errorf("初始化评审模型失败: %w", err)
	}
	judge := parser.NewLLMFitJudge(chatModel, log.New(os.Stderr, "[Judge] ", log.LstdFlags))

	var opts []scorer.EngineOption
	opts = append(opts,
		scorer.WithEngineLogger(log.New(os.Stderr, "[Engine] ", log.LstdFlags)),
		scorer.WithMaxAttempts(cfg.Judge.MaxAttempts),
		scorer.WithCallTimeout(time.Duration(cfg.Judge.TimeoutSeconds)*time.Second),
	)
	if cfg.Judge.QPMLimit > 0 {
		limiter := ratelimit.NewTokenBucket(cfg.Judge.QPMLimit, 0)
		opts = append(opts, scorer.WithRateLimiter(limiter))
	}
	return scorer.NewScoringEngine(judge, opts...)
}

// expandResumePaths 展开简历参数：目录取其下的 .pdf/.txt 文件，普通文件原样保留
func expandResumePaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("访问简历路径失败 %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("读取简历目录失败 %s: %w", path, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(entry.Name())) {
			case ".pdf", ".txt":
				files = append(files, filepath.Join(path, entry.Name()))
			}
		}
	}
	return files, nil
}

// ingestResume 读取单个简历文件并走完画像流水线
func ingestResume(ctx context.Context, pipeline *processor.ProfileProcessor, path string) (*types.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", parser.ErrDocumentRead, err)
	}

	mediaType := processor.MediaTypePlainText
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		mediaType = processor.MediaTypePDF
	}

	result, err := pipeline.ProcessDocument(ctx, &types.RawDocument{
		Content:   data,
		MediaType: mediaType,
		FileName:  filepath.Base(path),
		Size:      int64(len(data)),
	})
	if err != nil {
		return nil, err
	}
	return result.Profile, nil
}

// printResult 输出排序后的入围名单
func printResult(result *types.BatchResult, threshold float64) error {
	if *outputJSON {
		// error 值序列化为空对象，JSON视图里转成消息文本
		type failureView struct {
			ProfileID string `json:"profile_id"`
			Error     string `json:"error"`
		}
		view := struct {
			Ranked   []types.RankedCandidate `json:"ranked"`
			Failures []failureView           `json:"failures,omitempty"`
			Stats    types.BatchStats        `json:"stats"`
		}{Ranked: result.Ranked, Stats: result.Stats}
		for _, f := range result.Failures {
			view.Failures = append(view.Failures, failureView{ProfileID: f.ProfileID, Error: f.Err.Error()})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	fmt.Printf("入围 %d 人（阈值 %.1f），失败 %d 人\n", result.Stats.Count, threshold, len(result.Failures))
	if result.Stats.Count > 0 {
		fmt.Printf("总分 平均 %.2f / 最高 %.2f / 最低 %.2f\n", result.Stats.Mean, result.Stats.Max, result.Stats.Min)
	}
	fmt.Println()

	for i, rc := range result.Ranked {
		name := rc.Name
		if name == "" {
			name = "(未识别姓名)"
		}
		fmt.Printf("#%d %s  总分 %.2f  [%s]\n", i+1, name, rc.Breakdown.Overall, rc.ProfileID)
		for _, cat := range types.AllScoreCategories {
			fmt.Printf("    %-20s %.1f  %s\n", cat, rc.Breakdown.Scores[cat], rc.Breakdown.Justifications[cat])
		}
		if len(rc.Breakdown.Strengths) > 0 {
			fmt.Printf("    亮点: %s\n", strings.Join(rc.Breakdown.Strengths, "；"))
		}
		if len(rc.Breakdown.Improvements) > 0 {
			fmt.Printf("    待提升: %s\n", strings.Join(rc.Breakdown.Improvements, "；"))
		}
		fmt.Println()
	}

	for _, f := range result.Failures {
		fmt.Printf("评估失败 [%s]: %v\n", f.ProfileID, f.Err)
	}
	return nil
}
