package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	close(ch)

	var total float64
	for m := range ch {
		var out dto.Metric
		if err := m.Write(&out); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		switch {
		case out.Counter != nil:
			total += out.GetCounter().GetValue()
		case out.Gauge != nil:
			total += out.GetGauge().GetValue()
		}
	}
	return total
}

func TestRecorders(t *testing.T) {
	m := New()

	m.ObserveExtraction("Article", "page")
	m.ObserveExtraction("Article", "page")
	m.ObserveSaved("YouTube")
	m.ObserveThumbnail(ThumbnailFallback)
	m.ObservePageRetry()
	m.ObserveStoreError("get")
	m.ObserveFallbackRecord()
	m.ObserveExtractionPanic()
	m.SetReplicaSize(3)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{name: "extractions", c: m.Extractions.WithLabelValues("Article", "page"), want: 2},
		{name: "saved", c: m.BookmarksSaved.WithLabelValues("YouTube"), want: 1},
		{name: "thumbnails", c: m.Thumbnails.WithLabelValues(ThumbnailFallback), want: 1},
		{name: "retries", c: m.PageRetries, want: 1},
		{name: "store errors", c: m.StoreErrors.WithLabelValues("get"), want: 1},
		{name: "fallback records", c: m.FallbackRecords, want: 1},
		{name: "panics", c: m.ExtractionPanics, want: 1},
		{name: "replica size", c: m.ReplicaSize, want: 3},
	}
	for _, tt := range tests {
		if got := counterValue(t, tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestNilReceiver(t *testing.T) {
	var m *Metrics
	m.ObserveExtraction("Article", "page")
	m.ObserveSaved("Article")
	m.ObserveThumbnail(ThumbnailSkipped)
	m.ObservePageRetry()
	m.ObserveStoreError("set")
	m.ObserveFallbackRecord()
	m.ObserveExtractionPanic()
	m.SetReplicaSize(1)
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSaved("Twitter")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `shelf_bookmarks_saved_total{source="Twitter"} 1`) {
		t.Errorf("exposition missing saved counter:\n%s", body)
	}
}
