package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Slug", KeySlug, "hello-world", Slug("hello-world")},
		{"Locale", KeyLocale, "es", Locale("es")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Reason", KeyReason, "unreadable", Reason("unreadable")},
		{"Component", KeyComponent, "cache", Component("cache")},
		{"RequestID", KeyRequestID, "rid", RequestID("rid")},
		{"Error", KeyError, "boom", Error(errors.New("boom"))},
		{"NilError", KeyError, "", Error(nil)},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}
