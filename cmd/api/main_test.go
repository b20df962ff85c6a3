package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wolfman30/leadflow/internal/app/bootstrap"
	appconfig "github.com/wolfman30/leadflow/internal/config"
	"github.com/wolfman30/leadflow/pkg/logging"
)

func TestSetupMetricsExposesMetrics(t *testing.T) {
	handler, leadMetrics, _ := setupMetrics(prometheus.NewRegistry())
	if handler == nil || leadMetrics == nil {
		t.Fatalf("expected non-nil handler and metrics")
	}

	leadMetrics.ObserveOperation("create", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "leadflow_leads_operations_total") {
		t.Fatalf("expected lead operations counter to be exported")
	}
}

func TestBuildHandlerInMemory(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{JWTSecret: "test", AuthRateLimitRPS: 1, AuthRateLimitBurst: 5, DefaultPageLimit: 20}
	stores, err := bootstrap.BuildStores(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("build stores: %v", err)
	}
	defer stores.Close()

	handler, limiter, err := buildHandler(cfg, stores, logger, prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	if limiter == nil {
		t.Fatalf("expected auth rate limiter")
	}

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected health 200, got %d", rr.Code)
	}
}

func TestBuildHandlerRequiresSecret(t *testing.T) {
	logger := logging.New("error")
	cfg := &appconfig.Config{}
	stores, err := bootstrap.BuildStores(context.Background(), cfg, logger)
	if err != nil {
		t.Fatalf("build stores: %v", err)
	}
	defer stores.Close()

	if _, _, err := buildHandler(cfg, stores, logger, prometheus.NewRegistry()); err == nil {
		t.Fatalf("expected missing jwt secret to fail")
	}
}
