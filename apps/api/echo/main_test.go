package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	. "github.com/trezcool/admissions/apps/api/echo"
	"github.com/trezcool/admissions/core"
	metricsvc "github.com/trezcool/admissions/services/metrics"
	"github.com/trezcool/admissions/services/ratelimit"
)

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func testConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		AppName:  "Admissions",
		TestMode: true,
		Server: core.ServerConfig{
			DisableReqLogs:   true,
			CORSAllowOrigins: []string{"*"},
		},
	}
}

func newServer(t *testing.T, resolver StatusResolver, logger core.Logger, limiter *ratelimit.Limiter) (*Server, *metricsvc.Metrics) {
	t.Helper()
	return newServerWithConfig(t, testConfig(), resolver, logger, limiter)
}

func newServerWithConfig(t *testing.T, conf *core.Config, resolver StatusResolver, logger core.Logger, limiter *ratelimit.Limiter) (*Server, *metricsvc.Metrics) {
	t.Helper()
	metrics, err := metricsvc.New(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metricsvc.New(): %v", err)
	}
	return NewServer(ServerDeps{
		Conf:         conf,
		Logger:       logger,
		AdmissionSvc: resolver,
		Metrics:      metrics,
		Limiter:      limiter,
	}), metrics
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
