package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rafaelpmaio/authcore"
)

type fakeSource struct {
	snapshot authcore.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() authcore.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                      { return f.dropped }

func TestRender(t *testing.T) {
	src := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{
				authcore.MetricLoginSuccess: 12,
				authcore.MetricRefreshReuse: 2,
			},
			Histograms: map[authcore.MetricID][]uint64{
				authcore.MetricVerifyLatency: {5, 1, 0, 0, 0, 0, 0, 0},
			},
		},
		dropped: 3,
	}

	out := NewExporterFromSource(src).Render()

	for _, want := range []string{
		"# TYPE authcore_login_success_total counter",
		"authcore_login_success_total 12",
		"authcore_refresh_reuse_detected_total 2",
		`authcore_verify_latency_seconds_bucket{le="0.005"} 5`,
		`authcore_verify_latency_seconds_bucket{le="+Inf"} 6`,
		"authcore_verify_latency_seconds_count 6",
		"authcore_audit_dropped_total 3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptySource(t *testing.T) {
	src := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters:   map[authcore.MetricID]uint64{},
			Histograms: map[authcore.MetricID][]uint64{},
		},
	}
	if out := NewExporterFromSource(src).Render(); out != "" {
		t.Errorf("empty source rendered %q", out)
	}
}

func TestHandler(t *testing.T) {
	src := &fakeSource{
		snapshot: authcore.MetricsSnapshot{
			Counters: map[authcore.MetricID]uint64{
				authcore.MetricLogout: 1,
			},
			Histograms: map[authcore.MetricID][]uint64{},
		},
	}

	rec := httptest.NewRecorder()
	NewExporterFromSource(src).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "authcore_logout_total 1") {
		t.Errorf("body = %q", rec.Body.String())
	}
}
