package workers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dasom-care/dasom-backend/internal/models"
	"github.com/dasom-care/dasom-backend/internal/services"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CatalogSyncWorker periodically pulls the public welfare-service catalog and
// upserts it into Postgres. The portal payload is treated as opaque beyond
// the handful of fields the assistant needs.
type CatalogSyncWorker struct {
	Welfare services.WelfareService

	Endpoint   string // portal list endpoint, returns a JSON array
	ServiceKey string
	Interval   time.Duration
	HTTPClient *http.Client
	Logger     *logrus.Logger
}

type portalEntry struct {
	ServiceID string          `json:"servId"`
	Name      string          `json:"servNm"`
	Summary   string          `json:"servDgst"`
	Agency    string          `json:"jurMnofNm"`
	Phone     string          `json:"rprsCtadr"`
	Region    string          `json:"ctpvNm"`
	District  string          `json:"sggNm"`
	Targets   []string        `json:"trgterIndvdlArray"`
	Raw       json.RawMessage `json:"-"`
}

func (w *CatalogSyncWorker) Start(ctx context.Context) error {
	if w.Welfare == nil || w.Endpoint == "" {
		return errors.New("CatalogSyncWorker missing dependency: Welfare and Endpoint must be set")
	}
	if w.Interval <= 0 {
		w.Interval = 24 * time.Hour
	}
	if w.HTTPClient == nil {
		w.HTTPClient = &http.Client{Timeout: 60 * time.Second}
	}
	if w.Logger == nil {
		w.Logger = logrus.New()
	}

	go func() {
		// first sync shortly after boot, then on the interval
		timer := time.NewTimer(10 * time.Second)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				w.syncOnce(ctx)
				timer.Reset(w.Interval)
			}
		}
	}()
	return nil
}

func (w *CatalogSyncWorker) syncOnce(ctx context.Context) {
	start := time.Now()

	entries, err := w.fetch(ctx)
	if err != nil {
		w.Logger.WithError(err).Warn("catalog fetch failed")
		return
	}

	var stored int
	for _, e := range entries {
		if e.ServiceID == "" || e.Name == "" {
			continue
		}
		regions := []string{}
		if e.Region != "" {
			regions = append(regions, e.Region)
		}
		if e.District != "" {
			regions = append(regions, e.District)
		}
		svc := &models.WelfareService{
			ID:        uuid.NewString(),
			ServiceID: e.ServiceID,
			Name:      e.Name,
			Summary:   e.Summary,
			Agency:    e.Agency,
			Phone:     e.Phone,
			Regions:   regions,
			Targets:   e.Targets,
			CreatedAt: time.Now().UTC(),
		}
		if len(e.Raw) > 0 {
			svc.Extras = datatypes.JSON(e.Raw)
		}
		if err := w.Welfare.Upsert(ctx, svc); err != nil {
			w.Logger.WithError(err).WithField("service_id", e.ServiceID).Warn("catalog upsert failed")
			continue
		}
		stored++
	}

	w.Logger.WithFields(logrus.Fields{
		"fetched":    len(entries),
		"stored":     stored,
		"elapsed_ms": time.Since(start).Milliseconds(),
	}).Info("catalog sync")
}

func (w *CatalogSyncWorker) fetch(ctx context.Context) ([]portalEntry, error) {
	u, err := url.Parse(w.Endpoint)
	if err != nil {
		return nil, err
	}
	if w.ServiceKey != "" {
		q := u.Query()
		q.Set("serviceKey", w.ServiceKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("portal returned " + resp.Status)
	}

	const maxBytes = 50 << 20
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, err
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, err
	}

	out := make([]portalEntry, 0, len(raws))
	for _, raw := range raws {
		var e portalEntry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		e.Raw = raw
		out = append(out, e)
	}
	return out, nil
}
