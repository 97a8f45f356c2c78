package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestAPICrudRoundTrip(t *testing.T) {
	app, _ := newTestApp(t, "")

	// create
	resp, err := app.Test(jsonReq("POST", "/api/v1/sodas", `{"name":"Cola","quantity":10,"price":150}`))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	decodeJSON(t, resp, &created)
	if created.ID == 0 {
		t.Fatal("create returned no id")
	}

	// read back, counters defaulted
	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/sodas/1", nil))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	decodeJSON(t, resp, &got)
	if got["name"] != "Cola" || got["quantity"] != float64(10) || got["price"] != float64(150) {
		t.Fatalf("round trip mismatch: %v", got)
	}
	if got["soldCount"] != float64(0) || got["gotCount"] != float64(0) {
		t.Fatalf("counters should default to zero: %v", got)
	}

	// partial update changes only price
	resp, err = app.Test(jsonReq("PUT", "/api/v1/sodas/1", `{"price":175}`))
	if err != nil {
		t.Fatal(err)
	}
	var upd struct {
		Affected int64 `json:"affected"`
	}
	decodeJSON(t, resp, &upd)
	if upd.Affected != 1 {
		t.Fatalf("update expected 1 affected, got %d", upd.Affected)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/sodas/1", nil))
	decodeJSON(t, resp, &got)
	if got["price"] != float64(175) || got["name"] != "Cola" || got["quantity"] != float64(10) {
		t.Fatalf("patch touched more than price: %v", got)
	}

	// delete, then 404-as-empty
	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/v1/sodas/1", nil))
	if err != nil {
		t.Fatal(err)
	}
	decodeJSON(t, resp, &upd)
	if upd.Affected != 1 {
		t.Fatalf("delete expected 1 affected, got %d", upd.Affected)
	}
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/sodas/1", nil))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing id expected 404, got %d", resp.StatusCode)
	}
}

func TestAPIValidationRejectsAndWritesNothing(t *testing.T) {
	app, db := newTestApp(t, "")

	cases := []string{
		`{"quantity":10,"price":150}`,
		`{"name":"   ","price":150}`,
		`{"name":"Cola","quantity":10}`,
		`{"name":"Cola","quantity":-2,"price":150}`,
	}
	for _, body := range cases {
		resp, err := app.Test(jsonReq("POST", "/api/v1/sodas", body))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %s expected 400, got %d", body, resp.StatusCode)
		}
	}
	if n := sodaCount(t, db); n != 0 {
		t.Fatalf("rejected inserts wrote %d rows", n)
	}
}

func TestAPIProjection(t *testing.T) {
	app, _ := newTestApp(t, "")
	if _, err := app.Test(jsonReq("POST", "/api/v1/sodas", `{"name":"Cola","quantity":10,"price":150}`)); err != nil {
		t.Fatal(err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/sodas?fields=name,quantity", nil))
	if err != nil {
		t.Fatal(err)
	}
	var rows []map[string]any
	decodeJSON(t, resp, &rows)
	if len(rows) != 1 {
		t.Fatalf("want one row, got %v", rows)
	}
	if len(rows[0]) != 2 || rows[0]["name"] != "Cola" || rows[0]["quantity"] != float64(10) {
		t.Fatalf("projection wrong: %v", rows[0])
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/sodas?fields=name,password", nil))
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown projection field expected 400, got %d", resp.StatusCode)
	}
}

func TestAPISellGuardAndRevision(t *testing.T) {
	app, _ := newTestApp(t, "")
	if _, err := app.Test(jsonReq("POST", "/api/v1/sodas", `{"name":"Cola","quantity":1,"price":150}`)); err != nil {
		t.Fatal(err)
	}

	var rev struct {
		Revision uint64 `json:"revision"`
	}
	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/sodas/revision", nil))
	decodeJSON(t, resp, &rev)
	before := rev.Revision

	var sell struct {
		Sold bool `json:"sold"`
	}
	resp, _ = app.Test(httptest.NewRequest("POST", "/api/v1/sodas/1/sell", nil))
	decodeJSON(t, resp, &sell)
	if !sell.Sold {
		t.Fatal("first sell should succeed")
	}
	resp, _ = app.Test(httptest.NewRequest("POST", "/api/v1/sodas/1/sell", nil))
	decodeJSON(t, resp, &sell)
	if sell.Sold {
		t.Fatal("sell at zero should report false")
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/sodas/revision", nil))
	decodeJSON(t, resp, &rev)
	// exactly one effective mutation since the baseline
	if rev.Revision != before+1 {
		t.Fatalf("revision moved from %d to %d, want +1", before, rev.Revision)
	}

	var got map[string]any
	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/sodas/1", nil))
	decodeJSON(t, resp, &got)
	if got["quantity"] != float64(0) || got["soldCount"] != float64(1) {
		t.Fatalf("sell bookkeeping wrong: %v", got)
	}
}

func TestAPINullQuantitySerializesAsNull(t *testing.T) {
	app, _ := newTestApp(t, "")
	if _, err := app.Test(jsonReq("POST", "/api/v1/sodas", `{"name":"Tonic","price":99}`)); err != nil {
		t.Fatal(err)
	}

	resp, _ := app.Test(httptest.NewRequest("GET", "/api/v1/sodas/1", nil))
	var got map[string]any
	decodeJSON(t, resp, &got)
	if v, present := got["quantity"]; !present || v != nil {
		t.Fatalf("omitted quantity should read back as null, got %v", got)
	}
}

func TestAPIDeleteAll(t *testing.T) {
	app, _ := newTestApp(t, "")
	for _, body := range []string{
		`{"name":"Cola","quantity":10,"price":150}`,
		`{"name":"Tonic","quantity":3,"price":99}`,
	} {
		if _, err := app.Test(jsonReq("POST", "/api/v1/sodas", body)); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := app.Test(httptest.NewRequest("DELETE", "/api/v1/sodas", nil))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Affected int64 `json:"affected"`
	}
	decodeJSON(t, resp, &out)
	if out.Affected != 2 {
		t.Fatalf("delete-all expected 2 affected, got %d", out.Affected)
	}
}
