package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	headerlottery "github.com/ericselin/header-lottery"
	"github.com/ericselin/header-lottery/cache"
	"github.com/ericselin/header-lottery/csp3"
	"github.com/ericselin/header-lottery/headers"
	"github.com/ericselin/header-lottery/snapshot"

	"github.com/rs/zerolog"
)

func newTestRouterWith(opts Options) http.Handler {
	logger := zerolog.Nop()
	classifier := headerlottery.CreateClassifier(headerlottery.Config{
		Cache:  cache.NewMemCache(),
		Logger: &logger,
	})
	return NewRouter(classifier, logger, opts)
}

func newTestRouter() http.Handler {
	return newTestRouterWith(Options{})
}

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	req, err := http.NewRequest("POST", path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestHealthz(t *testing.T) {
	req, _ := http.NewRequest("GET", "/healthz", nil)
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("Status %d, body %s", rr.Code, rr.Body.String())
	}
}

func TestClassify(t *testing.T) {
	rr := post(t, newTestRouter(), "/classify", `{
		"headers": {
			"Content-Security-Policy": "frame-ancestors 'self' https://www.example.com",
			"X-Frame-Options": "DENY"
		},
		"url": "https://www.example.com/index.html"
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Status %d, body %s", rr.Code, rr.Body.String())
	}
	var r headers.Result
	if err := json.NewDecoder(rr.Body).Decode(&r); err != nil {
		t.Fatal(err)
	}
	if r.CSP == nil || r.CSP.FA != csp3.FASelf {
		t.Fatalf("CSP is %v", r.CSP)
	}
	if r.XFO == nil || *r.XFO != headers.XFODeny {
		t.Fatalf("XFO is %v", r.XFO)
	}
}

func TestClassifyArchived(t *testing.T) {
	rr := post(t, newTestRouter(), "/classify", `{
		"headers": {
			"X-Archive-Orig-X-Frame-Options": "SAMEORIGIN",
			"X-Frame-Options": "DENY"
		},
		"archived": true
	}`)
	var r headers.Result
	if err := json.NewDecoder(rr.Body).Decode(&r); err != nil {
		t.Fatal(err)
	}
	if r.XFO == nil || *r.XFO != headers.XFOSameOrigin {
		t.Fatalf("XFO is %v", r.XFO)
	}
}

func TestClassifyDefaultOrigin(t *testing.T) {
	h := newTestRouterWith(Options{DefaultOrigin: "https://a.com"})
	rr := post(t, h, "/classify", `{"headers": {"Content-Security-Policy": "frame-ancestors https://a.com"}}`)
	var r headers.Result
	if err := json.NewDecoder(rr.Body).Decode(&r); err != nil {
		t.Fatal(err)
	}
	if r.CSP == nil || r.CSP.FA != csp3.FASelf {
		t.Fatalf("CSP is %v", r.CSP)
	}
}

func TestClassifyNormalizesOrigin(t *testing.T) {
	rr := post(t, newTestRouter(), "/classify", `{
		"headers": {"Content-Security-Policy": "frame-ancestors https://a.com"},
		"origin": "https://A.com/"
	}`)
	var r headers.Result
	if err := json.NewDecoder(rr.Body).Decode(&r); err != nil {
		t.Fatal(err)
	}
	if r.CSP == nil || r.CSP.FA != csp3.FASelf {
		t.Fatalf("CSP is %v", r.CSP)
	}
	if rr := post(t, newTestRouter(), "/classify", `{"headers": {}, "origin": "a.com"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("Status %d", rr.Code)
	}
}

func TestClassifyBadRequest(t *testing.T) {
	h := newTestRouter()
	if rr := post(t, h, "/classify", `{"headers": `); rr.Code != http.StatusBadRequest {
		t.Fatalf("Status %d", rr.Code)
	}
	if rr := post(t, h, "/classify", `{"headers": {}, "url": "no-origin"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("Status %d", rr.Code)
	}
}

func TestNormalize(t *testing.T) {
	rr := post(t, newTestRouter(), "/normalize", `{"headers": {"Permissions-Policy": "b=(), a=()", "Server": "x"}}`)
	var s map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if len(s) != 1 || s["permissions-policy"] != "a=(),b=()" {
		t.Fatalf("Normalized to %v", s)
	}
}

func TestCompare(t *testing.T) {
	h := newTestRouter()
	rr := post(t, h, "/compare", `{"header": "strict-transport-security", "earlier": "max-age=10; includeSubDomains", "later": "max-age=99999999"}`)
	var res CompareResponse
	if err := json.NewDecoder(rr.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.AtLeastAsProtective {
		t.Fatal("Dropping includeSubDomains is not a regression")
	}
	if rr := post(t, h, "/compare", `{"header": "content-security-policy"}`); rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Status %d", rr.Code)
	}
	if rr := post(t, h, "/compare", `{"header": "server"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("Status %d", rr.Code)
	}
}

func TestDiff(t *testing.T) {
	rr := post(t, newTestRouter(), "/diff", `{
		"earlier": {"archive": "live", "headers": {"X-Frame-Options": "DENY"}},
		"later": {"archive": "live", "headers": {"X-Frame-Options": "SAMEORIGIN"}}
	}`)
	var report snapshot.Report
	if err := json.NewDecoder(rr.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.Verdict != snapshot.Regressed {
		t.Fatalf("Verdict is %s", report.Verdict)
	}
}
