package stats

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	r := New()
	r.IncrementWeatherStat("Rain")
	r.IncrementWeatherStat("Rain")
	r.IncrementWeatherStat("Frost")
	r.ObserveNotify("rows")
	r.ObserveAlert("weather", "play")
	r.ObserveFeed("shop_snapshot", "error")

	if got := testutil.ToFloat64(r.weatherSeen.WithLabelValues("Rain")); got != 2 {
		t.Errorf("Rain sightings = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.notifies.WithLabelValues("rows")); got != 1 {
		t.Errorf("rows notifies = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.weatherSeen); got != 2 {
		t.Errorf("weather series = %d, want 2", got)
	}
}

func TestHandlerExposesCounters(t *testing.T) {
	r := New()
	r.IncrementWeatherStat("Rain")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `gardenwatch_weather_sightings_total{weather="Rain"} 1`) {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
