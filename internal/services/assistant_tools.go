package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dasom-care/dasom-backend/internal/providers/llm"
)

// WelfareLookup adapts the welfare search into the generator's capability
// callback. Unknown capability names are answered with an error so the model
// falls back to plain text.
func WelfareLookup(svc WelfareService) llm.LookupFunc {
	return func(ctx context.Context, name string, args map[string]any) (string, error) {
		if name != llm.SearchWelfareTool {
			return "", fmt.Errorf("unknown capability: %s", name)
		}

		keyword, _ := args["keyword"].(string)
		region, _ := args["region"].(string)

		rows, err := svc.Search(ctx, keyword, region, 5)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "검색 결과가 없습니다.", nil
		}

		type hit struct {
			Name    string `json:"name"`
			Summary string `json:"summary"`
			Agency  string `json:"agency"`
			Phone   string `json:"phone"`
		}
		hits := make([]hit, len(rows))
		for i, r := range rows {
			hits[i] = hit{Name: r.Name, Summary: r.Summary, Agency: r.Agency, Phone: r.Phone}
		}
		b, err := json.Marshal(hits)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
