package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "detect", Stage("detect")},
		{"Scheme", KeyScheme, "MyKit", Scheme("MyKit")},
		{"Project", KeyProject, "MyApp", Project("MyApp")},
		{"Kind", KeyKind, "swift-package", Kind("swift-package")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"URL", KeyURL, "http://example", URL("http://example")},
		{"Tool", KeyTool, "docc", Tool("docc")},
		{"Target", KeyTarget, "pages", Target("pages")},
		{"Branch", KeyBranch, "gh-pages", Branch("gh-pages")},
		{"Trigger", KeyTrigger, "webhook", Trigger("webhook")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestErrorAttr(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Fatalf("nil error should render empty, got %q", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Fatalf("expected boom, got %q", got)
	}
}
