package workers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dasom-care/dasom-backend/internal/models"
)

type captureWelfare struct {
	mu       sync.Mutex
	upserted []*models.WelfareService
}

func (c *captureWelfare) Search(context.Context, string, string, int) ([]models.WelfareService, error) {
	return nil, nil
}

func (c *captureWelfare) List(context.Context, int, int) ([]models.WelfareService, error) {
	return nil, nil
}

func (c *captureWelfare) Upsert(_ context.Context, svc *models.WelfareService) error {
	c.mu.Lock()
	c.upserted = append(c.upserted, svc)
	c.mu.Unlock()
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestCatalogSyncOnce(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("serviceKey")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"servId":"WII00000001","servNm":"노인맞춤돌봄서비스","servDgst":"일상생활 지원","jurMnofNm":"보건복지부","rprsCtadr":"129","ctpvNm":"서울특별시","sggNm":"강서구","trgterIndvdlArray":["노인"]},
			{"servId":"","servNm":"식별자 없는 항목"},
			{"servId":"WII00000002","servNm":"기초연금","jurMnofNm":"보건복지부"}
		]`))
	}))
	defer srv.Close()

	sink := &captureWelfare{}
	w := &CatalogSyncWorker{
		Welfare:    sink,
		Endpoint:   srv.URL,
		ServiceKey: "test-key",
		Logger:     quietLogger(),
		HTTPClient: srv.Client(),
	}

	w.syncOnce(context.Background())

	assert.Equal(t, "test-key", gotKey)
	require.Len(t, sink.upserted, 2) // the entry without servId is skipped

	first := sink.upserted[0]
	assert.Equal(t, "WII00000001", first.ServiceID)
	assert.Equal(t, "노인맞춤돌봄서비스", first.Name)
	assert.Equal(t, []string{"서울특별시", "강서구"}, []string(first.Regions))
	assert.Equal(t, []string{"노인"}, []string(first.Targets))
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.Extras)

	second := sink.upserted[1]
	assert.Equal(t, "WII00000002", second.ServiceID)
	assert.Empty(t, second.Regions)
}

func TestCatalogSyncFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	sink := &captureWelfare{}
	w := &CatalogSyncWorker{
		Welfare:    sink,
		Endpoint:   srv.URL,
		Logger:     quietLogger(),
		HTTPClient: srv.Client(),
	}

	w.syncOnce(context.Background())
	assert.Empty(t, sink.upserted)
}

func TestCatalogSyncStartValidation(t *testing.T) {
	w := &CatalogSyncWorker{}
	assert.Error(t, w.Start(context.Background()))
}
