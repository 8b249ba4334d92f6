package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasom-care/dasom-backend/internal/models"
	"github.com/dasom-care/dasom-backend/internal/providers/llm"
)

type stubWelfareService struct {
	rows    []models.WelfareService
	err     error
	keyword string
	region  string
	limit   int
}

func (s *stubWelfareService) Search(_ context.Context, keyword, region string, limit int) ([]models.WelfareService, error) {
	s.keyword, s.region, s.limit = keyword, region, limit
	return s.rows, s.err
}

func (s *stubWelfareService) List(context.Context, int, int) ([]models.WelfareService, error) {
	return nil, nil
}

func (s *stubWelfareService) Upsert(context.Context, *models.WelfareService) error { return nil }

func TestWelfareLookupFormatsHits(t *testing.T) {
	stub := &stubWelfareService{rows: []models.WelfareService{
		{Name: "노인맞춤돌봄서비스", Summary: "일상생활 지원", Agency: "보건복지부", Phone: "129"},
		{Name: "독거노인 응급안전안심서비스", Summary: "응급상황 감지", Agency: "보건복지부", Phone: "129"},
	}}
	lookup := WelfareLookup(stub)

	out, err := lookup(context.Background(), llm.SearchWelfareTool,
		map[string]any{"keyword": "돌봄", "region": "서울"})
	require.NoError(t, err)

	assert.Equal(t, "돌봄", stub.keyword)
	assert.Equal(t, "서울", stub.region)
	assert.Equal(t, 5, stub.limit)

	var hits []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &hits))
	require.Len(t, hits, 2)
	assert.Equal(t, "노인맞춤돌봄서비스", hits[0]["name"])
	assert.Equal(t, "129", hits[0]["phone"])
}

func TestWelfareLookupNoResults(t *testing.T) {
	lookup := WelfareLookup(&stubWelfareService{})

	out, err := lookup(context.Background(), llm.SearchWelfareTool, map[string]any{"keyword": "없는서비스"})
	require.NoError(t, err)
	assert.Equal(t, "검색 결과가 없습니다.", out)
}

func TestWelfareLookupUnknownCapability(t *testing.T) {
	lookup := WelfareLookup(&stubWelfareService{})

	_, err := lookup(context.Background(), "delete_everything", nil)
	assert.Error(t, err)
}

func TestWelfareLookupSearchError(t *testing.T) {
	lookup := WelfareLookup(&stubWelfareService{err: errors.New("postgres down")})

	_, err := lookup(context.Background(), llm.SearchWelfareTool, map[string]any{"keyword": "돌봄"})
	assert.Error(t, err)
}
