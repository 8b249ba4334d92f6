package llm

import (
	"context"
	"errors"

	vertexgenai "cloud.google.com/go/vertexai/genai"
)

type VertexGemini struct {
	client *vertexgenai.Client
	model  *vertexgenai.GenerativeModel
}

func NewVertexGemini(ctx context.Context, projectID, location, modelName string) (*VertexGemini, error) {
	c, err := vertexgenai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, err
	}
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}
	return &VertexGemini{client: c, model: c.GenerativeModel(modelName)}, nil
}

func (v *VertexGemini) Close() error { return v.client.Close() }

func (v *VertexGemini) Generate(ctx context.Context, req Request) (string, error) {
	model := *v.model
	if req.System != "" {
		model.SystemInstruction = &vertexgenai.Content{
			Parts: []vertexgenai.Part{vertexgenai.Text(req.System)},
		}
	}
	if req.Lookup != nil {
		model.Tools = []*vertexgenai.Tool{{
			FunctionDeclarations: []*vertexgenai.FunctionDeclaration{{
				Name:        SearchWelfareTool,
				Description: "복지 서비스를 키워드와 지역으로 검색한다.",
				Parameters: &vertexgenai.Schema{
					Type: vertexgenai.TypeObject,
					Properties: map[string]*vertexgenai.Schema{
						"keyword": {Type: vertexgenai.TypeString, Description: "검색 키워드"},
						"region":  {Type: vertexgenai.TypeString, Description: "지역명"},
					},
					Required: []string{"keyword"},
				},
			}},
		}}
	}

	cs := model.StartChat()
	for _, t := range req.History {
		role := "user"
		if t.Role == "assistant" {
			role = "model"
		}
		cs.History = append(cs.History, &vertexgenai.Content{
			Role:  role,
			Parts: []vertexgenai.Part{vertexgenai.Text(t.Content)},
		})
	}

	resp, err := cs.SendMessage(ctx, vertexgenai.Text(req.UserText))
	if err != nil {
		return "", err
	}

	if fc, ok := functionCall(resp); ok && req.Lookup != nil {
		result, err := req.Lookup(ctx, fc.Name, fc.Args)
		if err != nil {
			result = "검색에 실패했습니다."
		}
		resp, err = cs.SendMessage(ctx, vertexgenai.FunctionResponse{
			Name:     fc.Name,
			Response: map[string]any{"result": result},
		})
		if err != nil {
			return "", err
		}
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("vertex: empty response")
	}
	return text, nil
}

func functionCall(resp *vertexgenai.GenerateContentResponse) (vertexgenai.FunctionCall, bool) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if fc, ok := part.(vertexgenai.FunctionCall); ok {
				return fc, true
			}
		}
	}
	return vertexgenai.FunctionCall{}, false
}

func responseText(resp *vertexgenai.GenerateContentResponse) string {
	out := ""
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(vertexgenai.Text); ok {
				out += string(t)
			}
		}
	}
	return out
}
