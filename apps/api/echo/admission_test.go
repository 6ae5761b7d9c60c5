package echoapi_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/pkg/errors"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/admissions/apps/api/echo"
	"github.com/trezcool/admissions/core/admission"
	metricsvc "github.com/trezcool/admissions/services/metrics"
	"github.com/trezcool/admissions/services/ratelimit"
	inmemdb "github.com/trezcool/admissions/storage/database/inmem"
	"github.com/trezcool/admissions/testutil"
)

const statusPath = "/v1/application-status"

type panickingResolver struct{}

func (panickingResolver) GetStatus(context.Context, admission.Query) (admission.StatusResult, error) {
	panic("nil map write")
}

type failingResolver struct{ err error }

func (r failingResolver) GetStatus(context.Context, admission.Query) (admission.StatusResult, error) {
	return admission.StatusResult{}, r.err
}

func errPayload(t *testing.T, msg string) []byte {
	return marshallObj(t, admission.ErrorResult{Error: msg})
}

func Test_admissionApi_getStatus(t *testing.T) {
	db := inmemdb.Open()
	logger := new(testutil.Logger)
	svc := testutil.NewAdmissionService(db, logger)
	testutil.SeedScenario(t, db)
	db.InsertApplicant(admission.PlusOneApplicant{
		ApplicationNumber: "P2024010",
		MobileNumber:      "9123456780",
		StudentName:       testutil.StrPtr("Nikhil Das"),
	})

	server, metrics := newServer(t, svc, logger, nil)

	scenario, err := svc.GetStatus(context.Background(), admission.Query{
		ApplicationNumber: testutil.ScenarioApplicationNumber,
		MobileNumber:      testutil.ScenarioMobileNumber,
	})
	require.NoError(t, err)
	scenarioBody := []byte(`{"applicationNumber":"KG2024001","mobileNumber":"9876543210"}`)

	plusOne, err := svc.GetStatus(context.Background(), admission.Query{ApplicationNumber: "P2024010", MobileNumber: "9123456780"})
	require.NoError(t, err)

	tests := []httpTest{
		{name: "scenario", path: statusPath, body: scenarioBody, wantData: marshallObj(t, scenario)},
		{name: "legacy path", path: "/functions/v1/get-application-status", body: scenarioBody, wantData: marshallObj(t, scenario)},
		{name: "trailing slash", path: statusPath + "/", body: scenarioBody, wantData: marshallObj(t, scenario)},
		{name: "empty inputs", path: statusPath, body: []byte(`{"applicationNumber":"","mobileNumber":""}`), wantData: errPayload(t, admission.MsgInputRequired)},
		{name: "blank inputs", path: statusPath, body: []byte(`{"applicationNumber":"   ","mobileNumber":"9876543210"}`), wantData: errPayload(t, admission.MsgInputRequired)},
		{name: "no body", path: statusPath, wantData: errPayload(t, admission.MsgInputRequired)},
		{name: "wrong type", path: statusPath, body: []byte(`{"applicationNumber":2024001,"mobileNumber":"9876543210"}`), wantData: errPayload(t, admission.MsgInputRequired)},
		{name: "malformed json", path: statusPath, body: []byte(`{"applicationNumber":`), wantData: errPayload(t, admission.MsgInputRequired)},
		{
			name: "not found", path: statusPath, body: []byte(`{"applicationNumber":"KG0000000","mobileNumber":"9876543210"}`),
			wantData: errPayload(t, admission.MsgNotFound),
		},
		{
			name: "plus one", path: statusPath, body: []byte(`{"applicationNumber":"P2024010","mobileNumber":"9123456780"}`),
			wantData: marshallObj(t, plusOne),
		},
		{
			name: "mobile of another applicant", path: statusPath, body: []byte(`{"applicationNumber":"P2024010","mobileNumber":"9876543210"}`),
			wantData: errPayload(t, admission.MsgNotFound),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, tt.path, tt.body)
			server.ServeHTTP(rec, req)
			tt.wantCode = http.StatusOK
			checkCodeAndData(t, tt, rec)
		})
	}

	assert.Equal(t, 4.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeFound)))
	assert.Equal(t, 5.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeInvalidInput)))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeNotFound)))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeLoadFailed)))
	assert.Empty(t, logger.Entries("error"))
}

func Test_admissionApi_getStatus_loadFailure(t *testing.T) {
	tests := []struct {
		name    string
		failOn  string
		appNo   string
		mobile  string
		wantMsg string
	}{
		{name: "first table fails", failOn: "FindApplicant:kg_std", appNo: "P2024010", mobile: "9123456780", wantMsg: admission.MsgLoadFailed},
		{name: "second table fails", failOn: "FindApplicant:plus_one", appNo: "P2024010", mobile: "9123456780", wantMsg: admission.MsgLoadFailed},
		{name: "match before the failing table", failOn: "FindApplicant:plus_one", appNo: "KG2024001", mobile: "9876543210"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := inmemdb.Open()
			logger := new(testutil.Logger)
			testutil.SeedScenario(t, db)
			db.InsertApplicant(admission.PlusOneApplicant{ApplicationNumber: "P2024010", MobileNumber: "9123456780"})
			db.FailOn(tt.failOn, errors.New("relation does not exist"))
			server, metrics := newServer(t, testutil.NewAdmissionService(db, logger), logger, nil)

			body := []byte(`{"applicationNumber":"` + tt.appNo + `","mobileNumber":"` + tt.mobile + `"}`)
			req, rec := newRequest(http.MethodPost, statusPath, body)
			server.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)

			if tt.wantMsg == "" {
				assert.Contains(t, rec.Body.String(), `"applicationType":"kg_std"`)
				assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeFound)))
				return
			}
			checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: errPayload(t, tt.wantMsg)}, rec)
			assert.NotContains(t, rec.Body.String(), "relation")
			assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeLoadFailed)))
		})
	}
}

func Test_admissionApi_getStatus_scenarioMarks(t *testing.T) {
	db := inmemdb.Open()
	logger := new(testutil.Logger)
	testutil.SeedScenario(t, db)
	server, _ := newServer(t, testutil.NewAdmissionService(db, logger), logger, nil)

	req, rec := newRequest(http.MethodPost, statusPath, []byte(`{"applicationNumber":"KG2024001","mobileNumber":"9876543210"}`))
	server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `"applicationType":"kg_std"`)
	assert.Contains(t, body, `"academicYear":"2024-2025"`)
	assert.Contains(t, body, `"status":"interview_complete"`)
	assert.Contains(t, body, `"interviewMarks":[`+
		`{"subject_name":"English","marks_obtained":20,"max_marks":25,"display_order":1},`+
		`{"subject_name":"Mathematics","marks_obtained":22,"max_marks":25,"display_order":2},`+
		`{"subject_name":"Science","marks_obtained":null,"max_marks":25,"display_order":3}]`)
	assert.NotContains(t, body, `"email"`)
}

func Test_admissionApi_getStatus_unexpected(t *testing.T) {
	tests := []struct {
		name     string
		resolver StatusResolver
	}{
		{name: "unknown error", resolver: failingResolver{err: errors.New("context deadline exceeded")}},
		{name: "panic", resolver: panickingResolver{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := new(testutil.Logger)
			server, metrics := newServer(t, tt.resolver, logger, nil)

			req, rec := newRequest(http.MethodPost, statusPath, []byte(`{"applicationNumber":"KG1","mobileNumber":"9"}`))
			server.ServeHTTP(rec, req)

			checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: errPayload(t, admission.MsgUnexpected)}, rec)
			assert.NotContains(t, rec.Body.String(), "deadline")
			assert.Len(t, logger.Entries("error"), 1)
			assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeUnexpected)))
		})
	}
}

func TestServer_cors(t *testing.T) {
	logger := new(testutil.Logger)
	server, _ := newServer(t, testutil.NewAdmissionService(inmemdb.Open(), logger), logger, nil)

	t.Run("preflight", func(t *testing.T) {
		req, rec := newRequest(http.MethodOptions, statusPath)
		req.Header.Set("Origin", "https://school.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		allowHeaders := rec.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"authorization", "x-client-info", "apikey", "content-type"} {
			assert.Contains(t, allowHeaders, h)
		}
		assert.True(t, strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost))
	})

	t.Run("simple request", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, statusPath, []byte(`{}`))
		req.Header.Set("Origin", "https://school.example")
		server.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestServer_rateLimit(t *testing.T) {
	logger := new(testutil.Logger)
	server, metrics := newServer(t, testutil.NewAdmissionService(inmemdb.Open(), logger), logger, ratelimit.New(0.001, 2, 0))

	body := []byte(`{"applicationNumber":"KG1","mobileNumber":"9000000000"}`)
	for i := 0; i < 2; i++ {
		req, rec := newRequest(http.MethodPost, statusPath, body)
		server.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: errPayload(t, admission.MsgNotFound)}, rec)
	}

	req, rec := newRequest(http.MethodPost, statusPath, body)
	server.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusTooManyRequests, wantData: []byte(`{"error":"too many requests"}`)}, rec)

	// another client keeps its own bucket
	req, rec = newRequest(http.MethodPost, statusPath, body)
	req.RemoteAddr = "198.51.100.7:4242"
	server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeRateLimited)))
}

func TestServer_rateLimit_forwardedHeaders(t *testing.T) {
	body := []byte(`{"applicationNumber":"KG1","mobileNumber":"9000000000"}`)
	post := func(server *Server, remoteAddr, forwardedFor string) int {
		req, rec := newRequest(http.MethodPost, statusPath, body)
		req.RemoteAddr = remoteAddr
		if forwardedFor != "" {
			req.Header.Set("X-Forwarded-For", forwardedFor)
			req.Header.Set("X-Real-IP", forwardedFor)
		}
		server.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("spoofed headers share the socket bucket", func(t *testing.T) {
		logger := new(testutil.Logger)
		server, metrics := newServer(t, testutil.NewAdmissionService(inmemdb.Open(), logger), logger, ratelimit.New(0.001, 2, 0))

		limited := 0
		for i := 0; i < 50; i++ {
			if post(server, "192.0.2.1:1234", fmt.Sprintf("10.0.0.%d", i)) == http.StatusTooManyRequests {
				limited++
			}
		}
		assert.Equal(t, 48, limited)
		assert.Equal(t, 48.0, promtestutil.ToFloat64(metrics.Lookups(metricsvc.OutcomeRateLimited)))
	})

	t.Run("trusted proxy forwards client addresses", func(t *testing.T) {
		logger := new(testutil.Logger)
		conf := testConfig()
		conf.Server.TrustedProxies = []string{"192.0.2.0/24"}
		server, _ := newServerWithConfig(t, conf, testutil.NewAdmissionService(inmemdb.Open(), logger), logger, ratelimit.New(0.001, 2, 0))

		proxy := "192.0.2.1:1234"
		assert.Equal(t, http.StatusOK, post(server, proxy, "203.0.113.5"))
		assert.Equal(t, http.StatusOK, post(server, proxy, "203.0.113.5"))
		assert.Equal(t, http.StatusTooManyRequests, post(server, proxy, "203.0.113.5"))
		assert.Equal(t, http.StatusOK, post(server, proxy, "203.0.113.6"), "distinct client behind the proxy")

		// an untrusted peer cannot pick its own bucket
		untrusted := "198.51.100.7:4242"
		assert.Equal(t, http.StatusOK, post(server, untrusted, "203.0.113.10"))
		assert.Equal(t, http.StatusOK, post(server, untrusted, "203.0.113.11"))
		assert.Equal(t, http.StatusTooManyRequests, post(server, untrusted, "203.0.113.12"))
	})

	t.Run("invalid proxy ranges are ignored", func(t *testing.T) {
		logger := new(testutil.Logger)
		conf := testConfig()
		conf.Server.TrustedProxies = []string{"not-a-cidr"}
		server, _ := newServerWithConfig(t, conf, testutil.NewAdmissionService(inmemdb.Open(), logger), logger, ratelimit.New(0.001, 1, 0))

		assert.Len(t, logger.Entries("warn"), 1)
		assert.Equal(t, http.StatusOK, post(server, "192.0.2.1:1234", "10.0.0.1"))
		assert.Equal(t, http.StatusTooManyRequests, post(server, "192.0.2.1:1234", "10.0.0.2"))
	})
}

func TestServer_routes(t *testing.T) {
	logger := new(testutil.Logger)
	server, _ := newServer(t, testutil.NewAdmissionService(inmemdb.Open(), logger), logger, nil)

	t.Run("home", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/")
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Welcome to the Admissions API!", rec.Body.String())
	})

	tests := []httpTest{
		{name: "unknown route", method: http.MethodGet, path: "/v1/applications", wantCode: http.StatusNotFound, wantData: []byte(`{"error":"Not Found"}`)},
		{name: "wrong method", method: http.MethodGet, path: statusPath, wantCode: http.StatusMethodNotAllowed, wantData: []byte(`{"error":"Method Not Allowed"}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			server.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
