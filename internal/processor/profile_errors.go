package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrDocumentRejected  = errors.New("文档不符合受理条件")
	ErrExtractTextFailed = errors.New("提取文档文本失败")
	ErrSegmentFailed     = errors.New("简历分区失败")
	ErrProfileAssembly   = errors.New("构建候选人画像失败")
	ErrJDParseFailed     = errors.New("解析岗位描述失败")
)

// ProfileProcessError 包含详细错误信息的自定义错误
type ProfileProcessError struct {
	ProfileID string
	Op        string
	BaseErr   error
	Detail    string
}

func (e *ProfileProcessError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, ProfileID:%s): %s", e.BaseErr, e.Op, e.ProfileID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, ProfileID:%s)", e.BaseErr, e.Op, e.ProfileID)
}

func (e *ProfileProcessError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ProfileProcessError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewRejectError(profileID, detail string) error {
	return &ProfileProcessError{
		ProfileID: profileID,
		Op:        "accept",
		BaseErr:   ErrDocumentRejected,
		Detail:    detail,
	}
}

func NewExtractError(profileID, detail string) error {
	return &ProfileProcessError{
		ProfileID: profileID,
		Op:        "extract",
		BaseErr:   ErrExtractTextFailed,
		Detail:    detail,
	}
}

func NewSegmentError(profileID, detail string) error {
	return &ProfileProcessError{
		ProfileID: profileID,
		Op:        "segment",
		BaseErr:   ErrSegmentFailed,
		Detail:    detail,
	}
}

func NewAssemblyError(profileID, detail string) error {
	return &ProfileProcessError{
		ProfileID: profileID,
		Op:        "assemble",
		BaseErr:   ErrProfileAssembly,
		Detail:    detail,
	}
}

func NewJDParseError(jobID, detail string) error {
	return &ProfileProcessError{
		ProfileID: jobID,
		Op:        "jd_parse",
		BaseErr:   ErrJDParseFailed,
		Detail:    detail,
	}
}
