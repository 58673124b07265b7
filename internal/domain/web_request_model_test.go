package domain

import "testing"

func TestParseHTTPMethod(t *testing.T) {
	for _, input := range []string{"get", "GET", " Post "} {
		if _, err := ParseHTTPMethod(input); err != nil {
			t.Fatalf("ParseHTTPMethod(%q) returned error: %v", input, err)
		}
	}

	if _, err := ParseHTTPMethod("FETCH"); err == nil {
		t.Fatal("ParseHTTPMethod accepted an unknown method")
	}
	if HTTPMethod("get").Valid() {
		t.Fatal("lowercase method should not validate without ParseHTTPMethod")
	}
}

func TestWebRequestBeforeSaveDerivesHostColumns(t *testing.T) {
	r := WebRequest{Method: MethodGet, URL: "https://login.portal.example.co.uk:8443/admin?x=1"}

	if err := r.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	if r.Host != "login.portal.example.co.uk" {
		t.Fatalf("Host is %q", r.Host)
	}
	if r.RegistrableDomain != "example.co.uk" {
		t.Fatalf("RegistrableDomain is %q", r.RegistrableDomain)
	}
}

func TestWebRequestBeforeSaveWithIPHost(t *testing.T) {
	r := WebRequest{Method: MethodGet, URL: "http://192.0.2.10/robots.txt"}

	if err := r.BeforeSave(nil); err != nil {
		t.Fatalf("BeforeSave returned error: %v", err)
	}
	if r.Host != "192.0.2.10" {
		t.Fatalf("Host is %q", r.Host)
	}
	if r.RegistrableDomain != "" {
		t.Fatalf("IP hosts have no registrable domain, got %q", r.RegistrableDomain)
	}
}

func TestWebRequestValidate(t *testing.T) {
	errs := (&WebRequest{}).Validate()
	if !errs.HasField("method") || !errs.HasField("url") {
		t.Fatalf("expected method and url violations, got %v", errs)
	}

	relative := WebRequest{Method: MethodGet, URL: "/relative/path"}
	if errs := relative.Validate(); !errs.HasField("url") {
		t.Fatalf("expected url violation for relative URL, got %v", errs)
	}

	ok := WebRequest{Method: MethodPost, URL: "https://example.com/login"}
	if errs := ok.Validate(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}
}

func TestWebResponseValidate(t *testing.T) {
	errs := (&WebResponse{}).Validate()
	if !errs.HasField("web_request_id") || !errs.HasField("status_code") {
		t.Fatalf("expected web_request_id and status_code violations, got %v", errs)
	}

	ok := WebResponse{WebRequestID: 1, StatusCode: 200}
	if errs := ok.Validate(); len(errs) != 0 {
		t.Fatalf("expected no violations, got %v", errs)
	}

	bad := WebResponse{WebRequestID: 1, StatusCode: 700}
	if errs := bad.Validate(); !errs.HasField("status_code") {
		t.Fatalf("expected status_code violation, got %v", errs)
	}
}
