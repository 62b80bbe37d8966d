package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoPDFTextExtractor 使用 Eino PDF Parser 按页提取文本
// 页序拼接；无文本的页跳过并记录警告，所有页都无文本时报 ErrEmptyDocument
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  *log.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *log.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.logger = logger
	}
}

// WithExtractTimeout 配置单次提取的超时时间
func WithExtractTimeout(d time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		e.timeout = d
	}
}

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 配置为按页分割，便于跳过空页并保持页序
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{
		ToPages: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	extractor := &EinoPDFTextExtractor{
		parser:  p,
		logger:  log.New(os.Stderr, "[PDF解析器] ", log.LstdFlags),
		timeout: 30 * time.Second,
	}

	for _, option := range options {
		option(extractor)
	}

	return extractor, nil
}

// ExtractFromFile 从PDF文件提取文本和元数据
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("%w: 打开 %s: %v", ErrDocumentRead, filePath, err)
	}
	defer file.Close()

	return e.ExtractTextFromReader(ctx, file, filePath, map[string]interface{}{
		"source_file_path": filePath,
	})
}

// ExtractTextFromReader 从 io.Reader 中按页提取文本
// 返回: 拼接后的全文, 解析器元数据, 错误
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	extraMeta, _ := options.(map[string]interface{})
	if extraMeta == nil {
		extraMeta = make(map[string]interface{})
	}

	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	docs, err := e.parser.Parse(ctx, reader,
		einoParser.WithURI(uri),
		einoParser.WithExtraMeta(extraMeta),
	)

	duration := time.Since(startTime)
	if err != nil {
		e.logger.Printf("PDF提取失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", extraMeta, fmt.Errorf("%w: eino PDF parser, URI %s: %v", ErrDocumentRead, uri, err)
	}

	// 按页序拼接非空页
	var pages []string
	emptyPages := 0
	for i, doc := range docs {
		content := strings.TrimSpace(doc.Content)
		if content == "" {
			emptyPages++
			e.logger.Printf("第 %d 页无可提取文本，已跳过 (URI: %s)", i+1, uri)
			continue
		}
		pages = append(pages, content)
	}

	if len(pages) == 0 {
		return "", extraMeta, fmt.Errorf("%w: %d 页均无文本, URI %s", ErrEmptyDocument, len(docs), uri)
	}

	fullContent := strings.Join(pages, "\n\n")

	finalMetadata := make(map[string]interface{})
	if len(docs) > 0 && docs[0].MetaData != nil {
		for k, v := range docs[0].MetaData {
			finalMetadata[k] = v
		}
	}
	for k, v := range extraMeta {
		finalMetadata[k] = v
	}
	finalMetadata["processing_duration_ms"] = duration.Milliseconds()
	finalMetadata["page_count"] = len(docs)
	finalMetadata["empty_page_count"] = emptyPages
	finalMetadata["text_length"] = len(fullContent)

	e.logger.Printf("PDF提取完成: %d 页中 %d 页有文本，共 %d 个字符 (用时 %.2f秒)",
		len(docs), len(pages), len(fullContent), duration.Seconds())
	return fullContent, finalMetadata, nil
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri, options)
}
