package llm

import (
	"context"
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIChat struct {
	client *openai.Client
	model  string
}

func NewOpenAIChat(apiKey, model string) *OpenAIChat {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIChat{client: openai.NewClient(apiKey), model: model}
}

func (c *OpenAIChat) Close() error { return nil }

func (c *OpenAIChat) Generate(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.History)+2)
	if req.System != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	for _, t := range req.History {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.UserText})

	chatReq := openai.ChatCompletionRequest{Model: c.model, Messages: msgs}
	if req.Lookup != nil {
		chatReq.Tools = []openai.Tool{welfareSearchTool()}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: empty choices")
	}

	choice := resp.Choices[0].Message
	if len(choice.ToolCalls) == 0 {
		return choice.Content, nil
	}

	// the model asked for the capability: run it once and complete again
	call := choice.ToolCalls[0]
	var args map[string]any
	if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
		args = map[string]any{}
	}
	result, err := req.Lookup(ctx, call.Function.Name, args)
	if err != nil {
		result = "검색에 실패했습니다."
	}

	msgs = append(msgs, choice)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    result,
		ToolCallID: call.ID,
	})

	final, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{Model: c.model, Messages: msgs})
	if err != nil {
		return "", err
	}
	if len(final.Choices) == 0 {
		return "", errors.New("openai: empty choices after tool call")
	}
	return final.Choices[0].Message.Content, nil
}

func welfareSearchTool() openai.Tool {
	return openai.Tool{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        SearchWelfareTool,
			Description: "복지 서비스를 키워드와 지역으로 검색한다.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"keyword": map[string]any{"type": "string", "description": "검색 키워드"},
					"region":  map[string]any{"type": "string", "description": "지역명, 예: 서울특별시 강서구"},
				},
				"required": []string{"keyword"},
			},
		},
	}
}
