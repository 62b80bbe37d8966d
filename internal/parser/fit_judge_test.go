package parser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Soumik-R/Smart-Resume-Screener/internal/constants"
	"github.com/Soumik-R/Smart-Resume-Screener/internal/types"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试用LLM模型模拟器
type MockLLMModel struct {
	// 模拟响应
	mockResponse string
	// 用于测试的错误
	Err error
	// 记录调用次数
	CallCount int
	// 记录绑定的工具 (可选，用于测试)
	boundTools []*schema.ToolInfo
}

// Generate 实现model.ChatModel接口
func (m *MockLLMModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return &schema.Message{
		Role:    "assistant",
		Content: m.mockResponse,
	}, nil
}

// Stream 实现model.ChatModel接口
func (m *MockLLMModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	// 测试中不需要流式响应
	return nil, nil
}

// BindTools 实现model.ChatModel接口
func (m *MockLLMModel) BindTools(tools []*schema.ToolInfo) error {
	m.boundTools = tools
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口
func (m *MockLLMModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := m.BindTools(tools); err != nil {
		return nil, err
	}
	return m, nil
}

const validJudgeJSON = `{
	"scores": {"skills": 8.5, "experience": 7.0, "education_projects": 9.0, "achievements": 6.5, "extracurricular": 7.5},
	"justifications": {
		"skills": "技能覆盖岗位要求的主要技术栈",
		"experience": "有相关领域经验但年限略短",
		"education_projects": "教育背景与项目高度相关",
		"achievements": "有一定成就但缺少量化指标",
		"extracurricular": "社团经历体现组织能力"
	},
	"strengths": ["技术栈匹配", "项目经验丰富"],
	"improvement_areas": ["补充量化业绩"]
}`

func newJudgeRequest() *types.FitJudgeRequest {
	return &types.FitJudgeRequest{
		ProfileSummary:  "技能: Go, Python\n工作经验总年限: 3.000 年",
		JobRequirements: "岗位: 后端工程师\n要求: Go, 3年以上经验",
		Weights:         constants.DefaultWeights(),
	}
}

func TestLLMFitJudge(t *testing.T) {
	ctx := context.Background()

	t.Run("合法响应解析", func(t *testing.T) {
		mock := &MockLLMModel{mockResponse: validJudgeJSON}
		judge := NewLLMFitJudge(mock, nil)

		resp, err := judge.Judge(ctx, newJudgeRequest())
		require.NoError(t, err)
		assert.Equal(t, 8.5, resp.Scores[types.CategorySkills])
		assert.Equal(t, 7.5, resp.Scores[types.CategoryExtracurricular])
		assert.Len(t, resp.Scores, 5, "五个维度必须齐全")
		assert.NotEmpty(t, resp.Justifications[types.CategoryExperience])
		assert.Equal(t, []string{"技术栈匹配", "项目经验丰富"}, resp.Strengths)
	})

	t.Run("JSON外围的多余文本被剥离", func(t *testing.T) {
		mock := &MockLLMModel{mockResponse: "评估结果如下：\n```json\n" + validJudgeJSON + "\n```\n以上。"}
		judge := NewLLMFitJudge(mock, nil)

		resp, err := judge.Judge(ctx, newJudgeRequest())
		require.NoError(t, err)
		assert.Equal(t, 9.0, resp.Scores[types.CategoryEducationProjects])
	})

	t.Run("BOM前缀被剥离", func(t *testing.T) {
		mock := &MockLLMModel{mockResponse: "\uFEFF" + validJudgeJSON}
		judge := NewLLMFitJudge(mock, nil)

		resp, err := judge.Judge(ctx, newJudgeRequest())
		require.NoError(t, err)
		assert.Equal(t, 8.5, resp.Scores[types.CategorySkills])
	})

	t.Run("缺少维度报格式非法", func(t *testing.T) {
		mock := &MockLLMModel{mockResponse: `{
			"scores": {"skills": 8.0, "experience": 7.0, "education_projects": 9.0, "achievements": 6.5},
			"justifications": {"skills": "x", "experience": "x", "education_projects": "x", "achievements": "x"}
		}`}
		judge := NewLLMFitJudge(mock, nil)

		_, err := judge.Judge(ctx, newJudgeRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedJudgeResponse))
		assert.Contains(t, err.Error(), "extracurricular")
	})

	t.Run("分数越界报格式非法", func(t *testing.T) {
		mock := &MockLLMModel{mockResponse: `{
			"scores": {"skills": 11.0, "experience": 7.0, "education_projects": 9.0, "achievements": 6.5, "extracurricular": 7.5},
			"justifications": {"skills": "x", "experience": "x", "education_projects": "x", "achievements": "x", "extracurricular": "x"}
		}`}
		judge := NewLLMFitJudge(mock, nil)

		_, err := judge.Judge(ctx, newJudgeRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedJudgeResponse), "分数超出1-10应视为契约违例")
	})

	t.Run("理由为空报格式非法", func(t *testing.T) {
		mock := &MockLLMModel{mockResponse: `{
			"scores": {"skills": 8.0, "experience": 7.0, "education_projects": 9.0, "achievements": 6.5, "extracurricular": 7.5},
			"justifications": {"skills": "  ", "experience": "x", "education_projects": "x", "achievements": "x", "extracurricular": "x"}
		}`}
		judge := NewLLMFitJudge(mock, nil)

		_, err := judge.Judge(ctx, newJudgeRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedJudgeResponse))
	})

	t.Run("完全不是JSON报格式非法", func(t *testing.T) {
		mock := &MockLLMModel{mockResponse: "抱歉，我无法完成这个评估。"}
		judge := NewLLMFitJudge(mock, nil)

		_, err := judge.Judge(ctx, newJudgeRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedJudgeResponse))
	})

	t.Run("LLM调用失败归类为服务错误", func(t *testing.T) {
		mock := &MockLLMModel{Err: fmt.Errorf("connection refused")}
		judge := NewLLMFitJudge(mock, nil)

		_, err := judge.Judge(ctx, newJudgeRequest())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrJudgeService), "网络类失败应归类为可重试的服务错误")
	})

	t.Run("空请求直接拒绝", func(t *testing.T) {
		judge := NewLLMFitJudge(&MockLLMModel{mockResponse: validJudgeJSON}, nil)
		_, err := judge.Judge(ctx, nil)
		require.Error(t, err)
	})
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, extractJSONObject(`prefix {"a": 1} suffix`))
	assert.Equal(t, `{"a": {"b": 2}}`, extractJSONObject(`{"a": {"b": 2}}`), "嵌套对象应整体提取")
	assert.Equal(t, `{"s": "有}号"}`, extractJSONObject(`{"s": "有}号"}`), "字符串内部的括号不参与配平")
	assert.Empty(t, extractJSONObject("no json here"))
}
