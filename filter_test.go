package web2pdf

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestBuildFilterOptions(t *testing.T) {
	opts, err := buildFilterOptions(1280, false)
	if err != nil {
		t.Fatalf("buildFilterOptions() unexpected error: %v", err)
	}
	if !gjson.Valid(opts) {
		t.Fatalf("options are not valid JSON: %s", opts)
	}

	res := gjson.Parse(opts)
	if got := res.Get("viewportWidth").Int(); got != 1280 {
		t.Errorf("viewportWidth = %d, want 1280", got)
	}
	if res.Get("showHeader").Bool() {
		t.Error("showHeader = true, want false")
	}
	if got := res.Get("headerAttr").String(); got != headerAttr {
		t.Errorf("headerAttr = %q, want %q", got, headerAttr)
	}
	if got := len(res.Get("adSelectors").Array()); got != len(adSelectors) {
		t.Errorf("adSelectors count = %d, want %d", got, len(adSelectors))
	}
	if got := len(res.Get("consentTokens").Array()); got != len(consentTokens) {
		t.Errorf("consentTokens count = %d, want %d", got, len(consentTokens))
	}
	if got := res.Get("maxImageRatio").Float(); got <= 0 || got >= 1 {
		t.Errorf("maxImageRatio = %v, want a fraction of the viewport", got)
	}
}

func TestParseFilterReport(t *testing.T) {
	raw := `{"ads":4,"popups":1,"images":2,"headers":3,"warnings":["popup removal: boom"]}`

	rep, err := parseFilterReport(raw)
	if err != nil {
		t.Fatalf("parseFilterReport() unexpected error: %v", err)
	}
	if rep.AdsRemoved != 4 || rep.PopupsRemoved != 1 || rep.ImagesDownscaled != 2 || rep.HeadersTagged != 3 {
		t.Errorf("counts = %+v", rep)
	}
	if len(rep.Warnings) != 1 || rep.Warnings[0] != "popup removal: boom" {
		t.Errorf("warnings = %v", rep.Warnings)
	}
}

func TestParseFilterReportEmpty(t *testing.T) {
	rep, err := parseFilterReport(`{"ads":0,"popups":0,"images":0,"headers":0,"warnings":[]}`)
	if err != nil {
		t.Fatalf("parseFilterReport() unexpected error: %v", err)
	}
	if rep.AdsRemoved != 0 || rep.PopupsRemoved != 0 || rep.ImagesDownscaled != 0 || rep.HeadersTagged != 0 {
		t.Errorf("counts = %+v, want all zero", rep)
	}
	if len(rep.Warnings) != 0 {
		t.Errorf("warnings = %v, want none", rep.Warnings)
	}
}

func TestParseFilterReportInvalid(t *testing.T) {
	if _, err := parseFilterReport("not json"); err == nil {
		t.Error("parseFilterReport() expected error for invalid JSON")
	}
}

// The page script is not executed here, but its shape is load-bearing:
// it must be a single arrow function that parses the options argument and
// returns the report as a JSON string.
func TestFilterScriptShape(t *testing.T) {
	if !strings.HasPrefix(filterScript, "(optsJSON) =>") {
		t.Error("filterScript must take the serialized options as its argument")
	}
	if !strings.Contains(filterScript, "JSON.parse(optsJSON)") {
		t.Error("filterScript must parse its options argument")
	}
	if !strings.Contains(filterScript, "JSON.stringify(report)") {
		t.Error("filterScript must return the report as JSON")
	}
	for _, step := range []string{"'ad removal'", "'popup removal'", "'image downscale'", "'header tagging'"} {
		if !strings.Contains(filterScript, step) {
			t.Errorf("filterScript missing %s pass", step)
		}
	}
}
