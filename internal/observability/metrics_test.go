package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/danmuck/duochat/internal/logging"
	"github.com/danmuck/duochat/internal/testutil/testlog"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)
	RegisterMetrics()
	RegisterMetrics()

	RecordFrameSent("initiator", "name", 5, false)
	RecordFrameSent("initiator", "message", 1023, true)
	RecordFrameReceived("responder", "message", 5)
	RecordSessionEnd("responder", "disconnected", 3*time.Second)
	RecordHTTPRequest("GET", "/metrics", 200)

	logging.Logf("observability/metrics: registration idempotent and recording paths executed")
}

func TestStartMetricsServesRegistry(t *testing.T) {
	testlog.Start(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, err := StartMetrics(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("start metrics: %v", err)
	}
	defer m.Close()
	RecordFrameSent("responder", "message", 2, false)

	resp, err := http.Get("http://" + m.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "duochat_frames_sent_total") {
		t.Fatalf("frames counter missing from scrape")
	}
}
