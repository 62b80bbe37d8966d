package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

const (
	// DashScope 的 OpenAI 兼容端点，也适用于其他兼容服务
	defaultCompatAPIURL    = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultCompatModelName = "qwen-plus"
)

// OpenAICompatChatModel 通过 OpenAI 兼容的 HTTP API 实现 model.ToolCallingChatModel，
// 作为人岗评审服务的 LLM 客户端。
type OpenAICompatChatModel struct {
	apiKey     string
	modelName  string
	apiURL     string
	httpClient *http.Client
	boundTools []openAITool
}

// NewOpenAICompatChatModel 创建一个新的兼容客户端实例。
// modelName/apiURL 为空时使用默认值。
func NewOpenAICompatChatModel(apiKey string, modelName string, apiURL string) (*OpenAICompatChatModel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}

	mn := modelName
	if strings.TrimSpace(mn) == "" {
		mn = defaultCompatModelName
	}
	url := apiURL
	if strings.TrimSpace(url) == "" {
		url = defaultCompatAPIURL
	}

	return &OpenAICompatChatModel{
		apiKey:     apiKey,
		modelName:  mn,
		apiURL:     url,
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}, nil
}

// --- OpenAI 兼容请求/响应结构 ---

type openAIFunctionParams struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Required   []string               `json:"required,omitempty"`
}

type openAIFunction struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  openAIFunctionParams `json:"parameters"`
}

type openAITool struct {
	Type     string         `json:"type"` // 固定为 "function"
	Function openAIFunction `json:"function"`
}

type openAIChatRequest struct {
	Model    string            `json:"model"`
	Messages []*schema.Message `json:"messages"` // schema.Message 的 role/content 字段与 OpenAI 格式兼容
	Tools    []openAITool      `json:"tools,omitempty"`
}

type openAIToolCall struct {
	Id       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type openAIMessage struct {
	Role      string           `json:"role"`
	Content   *string          `json:"content"` // 存在 tool_calls 时可能为 null
	ToolCalls []openAIToolCall `json:"tool_calls,omitempty"`
}

type openAIChatChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type openAIChatResponse struct {
	Id      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []openAIChatChoice `json:"choices"`
}

// Generate 实现 model.ChatModel 接口
func (m *OpenAICompatChatModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	reqPayload := openAIChatRequest{
		Model:    m.modelName,
		Messages: messages,
	}
	if len(m.boundTools) > 0 {
		reqPayload.Tools = m.boundTools
	}

	jsonData, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 请求失败: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}
	defer httpResp.Body.Close()

	bodyBytes, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API 请求失败，状态 %s: %s", httpResp.Status, string(bodyBytes))
	}

	var apiResp openAIChatResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("API 响应中没有候选项")
	}

	apiMessage := apiResp.Choices[0].Message
	content := ""
	if apiMessage.Content != nil {
		content = *apiMessage.Content
	}

	result := &schema.Message{
		Role:    schema.RoleType(apiMessage.Role),
		Content: content,
	}
	if result.Role == "" {
		result.Role = schema.Assistant
	}

	if len(apiMessage.ToolCalls) > 0 {
		result.ToolCalls = make([]schema.ToolCall, len(apiMessage.ToolCalls))
		for i, tc := range apiMessage.ToolCalls {
			result.ToolCalls[i] = schema.ToolCall{
				ID: tc.Id,
				Function: schema.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
		}
	}

	return result, nil
}

// Stream 实现 model.ChatModel 接口
// 评审流程只需要一次性完整响应，流式推送未实现
func (m *OpenAICompatChatModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, fmt.Errorf("OpenAICompatChatModel 的 Stream 方法未实现")
}

// BindTools 实现 model.ChatModel 接口
// 评审提示词直接要求JSON输出，不依赖工具调用；这里只做最小化的透传绑定
func (m *OpenAICompatChatModel) BindTools(tools []*schema.ToolInfo) error {
	m.boundTools = make([]openAITool, 0, len(tools))
	for _, info := range tools {
		if info == nil {
			continue
		}
		m.boundTools = append(m.boundTools, openAITool{
			Type: "function",
			Function: openAIFunction{
				Name:        info.Name,
				Description: info.Desc,
				Parameters:  openAIFunctionParams{Type: "object", Properties: map[string]interface{}{}},
			},
		})
	}
	if len(m.boundTools) > 0 {
		log.Printf("[OpenAICompatChatModel] 已绑定 %d 个工具", len(m.boundTools))
	}
	return nil
}

// WithTools 实现 model.ToolCallingChatModel 接口
func (m *OpenAICompatChatModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	if err := m.BindTools(tools); err != nil {
		return nil, err
	}
	return m, nil
}

var _ model.ChatModel = (*OpenAICompatChatModel)(nil)
var _ model.ToolCallingChatModel = (*OpenAICompatChatModel)(nil)
