package observability

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// MetricsServer exposes the default prometheus registry on /metrics.
// It runs beside the chat session and shares no session state.
type MetricsServer struct {
	srv *http.Server
	ln  net.Listener
}

// StartMetrics binds addr and serves /metrics until ctx is done or Close is called.
func StartMetrics(ctx context.Context, addr string) (*MetricsServer, error) {
	RegisterMetrics()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	m := &MetricsServer{
		srv: &http.Server{
			Handler:           RequestLogger(log.Logger, mux),
			ReadHeaderTimeout: 5 * time.Second,
		},
		ln: ln,
	}
	go func() {
		if err := m.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn().Err(err).Str("addr", addr).Msg("observability.MetricsServer serve")
		}
	}()
	go func() {
		<-ctx.Done()
		_ = m.Close()
	}()
	return m, nil
}

func (m *MetricsServer) Addr() string {
	return m.ln.Addr().String()
}

func (m *MetricsServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.srv.Shutdown(ctx)
}
