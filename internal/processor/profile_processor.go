package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/constants"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/parser"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/tracing"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// 支持的文档媒体类型
const (
	MediaTypePDF       = "application/pdf"
	MediaTypePlainText = "text/plain"
)

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	TextExtractor      TextExtractor
	Segmenter          Segmenter
	SkillMatcher       SkillMatcher
	EntityRecognizer   parser.EntityRecognizer
	ExperienceAnalyzer ExperienceAnalyzer
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	MinContentLength int
	MaxDocumentBytes int64
	Debug            bool
	Logger           *log.Logger
}

// ProfileProcessor 简历画像流水线
// 把原始文档转换为结构化候选人画像：提取 -> 规范化 -> 分区 -> 逐区解析 -> 组装
type ProfileProcessor struct {
	Components *Components
	Settings   *Settings
}

// NewProfileProcessor 创建流水线实例
func NewProfileProcessor(comp *Components, set *Settings, opts ...SettingOpt) *ProfileProcessor {
	if comp == nil {
		comp = &Components{}
	}
	if set == nil {
		set = &Settings{}
	}
	for _, opt := range opts {
		opt(set)
	}
	if set.MinContentLength <= 0 {
		set.MinContentLength = constants.MinContentLength
	}
	if set.MaxDocumentBytes <= 0 {
		set.MaxDocumentBytes = constants.MaxDocumentSizeBytes
	}
	if set.Logger == nil {
		set.Logger = log.New(io.Discard, "", 0)
	}
	if comp.Segmenter == nil {
		comp.Segmenter = parser.NewHeadingSegmenter()
	}
	if comp.EntityRecognizer == nil {
		comp.EntityRecognizer = parser.NewRegexEntityRecognizer()
	}
	if comp.ExperienceAnalyzer == nil {
		comp.ExperienceAnalyzer = parser.NewExperienceExtractor(comp.EntityRecognizer)
	}
	return &ProfileProcessor{Components: comp, Settings: set}
}

// ProcessDocument 处理一份原始文档，返回候选人画像
// 局部解析失败记入 Profile.Warnings 继续降级处理；
// 只有文档级失败（不可读/超限/正文不足）才返回错误
func (p *ProfileProcessor) ProcessDocument(ctx context.Context, doc *types.RawDocument) (*ProcessResult, error) {
	tracer := otel.Tracer("profile-processor")
	ctx, span := tracer.Start(ctx, "ProcessDocument")
	defer span.End()

	profileID := uuid.New().String()
	span.SetAttributes(
		attribute.String("profile.id", profileID),
		attribute.String("document.media_type", doc.MediaType),
		attribute.Int64("document.size", doc.Size),
	)

	if err := p.acceptDocument(doc); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDocument)
		return nil, err
	}

	text, metadata, err := p.extractText(ctx, doc)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return nil, err
	}

	text = parser.NormalizeText(text)
	if err := parser.CheckMinLength(text, p.Settings.MinContentLength); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	segments := p.Components.Segmenter.Segment(text)
	span.SetAttributes(attribute.Int("segment.section_count", len(segments.Sections)))

	profile, warnings := p.assembleProfile(ctx, profileID, text, segments)
	profile.Warnings = warnings

	// 身份字段进入链路属性前必须掩码
	span.SetAttributes(
		attribute.String("candidate.name", tracing.SafeAttributeValue("candidate.name", profile.Identity.Name, tracing.DefaultMaxLength)),
		attribute.String("candidate.email", tracing.SafeAttributeValue("candidate.email", profile.Identity.Email, tracing.DefaultMaxLength)),
		attribute.String("candidate.phone", tracing.SafeAttributeValue("candidate.phone", profile.Identity.Phone, tracing.DefaultMaxLength)),
	)

	if p.Settings.Debug {
		p.Settings.Logger.Printf("[ProfileProcessor] 画像 %s：技能 %d 项，经历 %d 段，警告 %d 条，正文预览 %q",
			profileID, len(profile.Skills), len(profile.Experience.Roles), len(warnings), tracing.SafeResumeContent(text))
	}

	return &ProcessResult{
		Text:     text,
		Metadata: metadata,
		Segments: segments,
		Profile:  profile,
	}, nil
}

// acceptDocument 受理检查：大小与媒体类型
func (p *ProfileProcessor) acceptDocument(doc *types.RawDocument) error {
	if doc == nil || len(doc.Content) == 0 {
		return fmt.Errorf("%w: 文档内容为空", parser.ErrEmptyDocument)
	}
	size := doc.Size
	if size <= 0 {
		size = int64(len(doc.Content))
	}
	if size > p.Settings.MaxDocumentBytes {
		return fmt.Errorf("%w: %d 字节超过上限 %d", parser.ErrOversizeDocument, size, p.Settings.MaxDocumentBytes)
	}
	switch doc.MediaType {
	case MediaTypePDF, MediaTypePlainText:
		return nil
	default:
		return fmt.Errorf("%w: %q", parser.ErrUnsupportedMediaType, doc.MediaType)
	}
}

// extractText 按媒体类型分发文本提取
func (p *ProfileProcessor) extractText(ctx context.Context, doc *types.RawDocument) (string, map[string]interface{}, error) {
	switch doc.MediaType {
	case MediaTypePDF:
		if p.Components.TextExtractor == nil {
			return "", nil, NewExtractError("", "未配置PDF文本提取器")
		}
		text, meta, err := p.Components.TextExtractor.ExtractTextFromReader(ctx, bytes.NewReader(doc.Content), doc.FileName, nil)
		if err != nil {
			if isDocumentError(err) {
				return "", nil, err
			}
			return "", nil, fmt.Errorf("%w: %v", parser.ErrDocumentRead, err)
		}
		return text, meta, nil
	case MediaTypePlainText:
		text, err := parser.DecodePlainText(doc.Content)
		if err != nil {
			return "", nil, err
		}
		return text, map[string]interface{}{"source": "plain_text"}, nil
	default:
		return "", nil, fmt.Errorf("%w: %q", parser.ErrUnsupportedMediaType, doc.MediaType)
	}
}

// assembleProfile 把分区结果逐区解析并组装为画像
// 缺失或解析失败的分区降级为警告，不影响其他分区
func (p *ProfileProcessor) assembleProfile(ctx context.Context, profileID, fullText string, segments *types.SegmentResult) (*types.CandidateProfile, []string) {
	var warnings []string
	profile := &types.CandidateProfile{
		ProfileID: profileID,
		Skills:    []string{},
	}

	profile.Identity = p.extractIdentity(ctx, fullText, segments.Preamble)
	if profile.Identity.Name == "" {
		warnings = append(warnings, "未能识别候选人姓名")
	}

	// 技能：优先技能分区，缺失时回退到全文扫描
	if p.Components.SkillMatcher != nil {
		skillsText, ok := segments.Sections[types.SectionSkills]
		if !ok {
			warnings = append(warnings, "简历缺少技能分区，改为全文扫描技能")
			skillsText = fullText
		}
		profile.Skills = p.Components.SkillMatcher.MatchSkills(skillsText)
		if len(profile.Skills) < constants.MinSkillCount {
			warnings = append(warnings, "未识别出任何已知技能")
		}
	} else {
		warnings = append(warnings, "未配置技能匹配器，跳过技能识别")
	}

	if expText, ok := segments.Sections[types.SectionExperience]; ok {
		summary, expWarnings, err := p.Components.ExperienceAnalyzer.Extract(ctx, expText)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("经历分区解析失败: %v", err))
		} else {
			profile.Experience = summary
			warnings = append(warnings, expWarnings...)
		}
	} else {
		warnings = append(warnings, "简历缺少工作经历分区")
	}

	if eduText, ok := segments.Sections[types.SectionEducation]; ok {
		profile.Education = ParseEducation(eduText)
		if len(profile.Education) == 0 {
			warnings = append(warnings, "教育分区存在但未解析出有效记录")
		}
	} else {
		warnings = append(warnings, "简历缺少教育分区")
	}

	if projText, ok := segments.Sections[types.SectionProjects]; ok {
		profile.Projects = ParseProjects(projText)
	}
	if achText, ok := segments.Sections[types.SectionAchievements]; ok {
		profile.Achievements = ParseAchievements(achText)
	}
	if extraText, ok := segments.Sections[types.SectionExtracurricular]; ok {
		profile.Extracurricular = ParseExtracurricular(extraText)
	}

	profile.Summary = buildProfileSummary(profile)
	profile.Fresher = isFresher(profile.Experience)

	return profile, warnings
}

// extractIdentity 从前言（或全文兜底）提取身份信息
func (p *ProfileProcessor) extractIdentity(ctx context.Context, fullText, preamble string) types.Identity {
	source := preamble
	if strings.TrimSpace(source) == "" {
		source = fullText
	}
	identity := types.Identity{
		Email: parser.ExtractEmail(source),
		Phone: parser.ExtractPhone(source),
	}
	if identity.Email == "" {
		identity.Email = parser.ExtractEmail(fullText)
	}
	if identity.Phone == "" {
		identity.Phone = parser.ExtractPhone(fullText)
	}
	identity.Name = parser.ExtractName(ctx, p.Components.EntityRecognizer, source)
	return identity
}

// isFresher 应届生判定：总年限不足两年，或没有任何正式（非实习）经历
func isFresher(summary types.ExperienceSummary) bool {
	if summary.TotalYears < constants.FresherYearsCeiling {
		return true
	}
	for _, role := range summary.Roles {
		if !role.Internship {
			return false
		}
	}
	return true
}

// buildProfileSummary 生成匿名的画像摘要文本，供人岗评审使用
// 不变量：摘要中绝不包含姓名/邮箱/电话等身份字段
func buildProfileSummary(profile *types.CandidateProfile) string {
	var b strings.Builder

	if len(profile.Skills) > 0 {
		fmt.Fprintf(&b, "技能: %s\n", strings.Join(profile.Skills, ", "))
	}

	fmt.Fprintf(&b, "工作经验总年限: %.3f 年", profile.Experience.TotalYears)
	if isFresher(profile.Experience) {
		b.WriteString("（应届/准应届）")
	}
	b.WriteString("\n")

	for _, role := range profile.Experience.Roles {
		kind := "正式"
		if role.Internship {
			kind = "实习"
		}
		span := formatRoleSpan(role)
		fmt.Fprintf(&b, "- [%s] %s @ %s %s\n", kind, role.Title, role.Organization, span)
		if role.Description != "" {
			fmt.Fprintf(&b, "  %s\n", tracing.TruncateString(role.Description, 300))
		}
	}

	for _, edu := range profile.Education {
		fmt.Fprintf(&b, "教育: %s %s %s", edu.DegreeLevel, edu.Field, edu.Institution)
		if edu.Year > 0 {
			fmt.Fprintf(&b, " (%d)", edu.Year)
		}
		if edu.GPA > 0 {
			fmt.Fprintf(&b, " GPA %.2f", edu.GPA)
		}
		b.WriteString("\n")
	}

	for _, proj := range profile.Projects {
		fmt.Fprintf(&b, "项目: %s — %s\n", proj.Name, tracing.TruncateString(proj.Description, 200))
	}
	for _, ach := range profile.Achievements {
		fmt.Fprintf(&b, "成就: %s\n", ach.Description)
	}
	for _, act := range profile.Extracurricular {
		fmt.Fprintf(&b, "课外活动: %s\n", act.Description)
	}

	return strings.TrimRight(b.String(), "\n")
}

func formatRoleSpan(role types.Role) string {
	if !role.Start.Known() {
		return "(时间未知)"
	}
	end := "至今"
	if !role.Present && role.End.Known() {
		end = fmt.Sprintf("%04d-%02d", role.End.Year, role.End.Month)
	}
	return fmt.Sprintf("(%04d-%02d ~ %s)", role.Start.Year, role.Start.Month, end)
}

// isDocumentError 判断错误是否已是文档级基础错误，避免重复包装
func isDocumentError(err error) bool {
	for _, base := range []error{
		parser.ErrDocumentRead,
		parser.ErrEmptyDocument,
		parser.ErrOversizeDocument,
		parser.ErrEncoding,
		parser.ErrInsufficientContent,
		parser.ErrUnsupportedMediaType,
	} {
		if errors.Is(err, base) {
			return true
		}
	}
	return false
}
