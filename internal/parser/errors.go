package parser

import "errors"

// 文档级与评审级的基础错误类型
// 所有失败都以单个文档或单个 (候选人, 岗位) 对为作用域
var (
	// ErrDocumentRead 文档不可读
	ErrDocumentRead = errors.New("文档读取失败")
	// ErrEmptyDocument 文档没有任何可提取文本
	ErrEmptyDocument = errors.New("文档内容为空")
	// ErrOversizeDocument 文档超过大小上限
	ErrOversizeDocument = errors.New("文档超过大小限制")
	// ErrEncoding 所有候选编码均解码失败
	ErrEncoding = errors.New("文本编码无法识别")
	// ErrInsufficientContent 正文长度低于最小阈值
	ErrInsufficientContent = errors.New("文档内容长度不足")
	// ErrUnsupportedMediaType 不支持的文档类型
	ErrUnsupportedMediaType = errors.New("不支持的文档类型")

	// ErrJudgeService 评审服务网络/超时类错误，可重试
	ErrJudgeService = errors.New("评审服务调用失败")
	// ErrMalformedJudgeResponse 评审服务返回的结构不符合契约，重试一次后视为失败
	ErrMalformedJudgeResponse = errors.New("评审服务响应格式非法")
)
