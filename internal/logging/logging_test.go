package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewTo_Prefix(t *testing.T) {
	var buf bytes.Buffer
	NewTo(&buf, "sweep").Printf("sent %d", 2)
	if !strings.HasPrefix(buf.String(), "[sweep] ") || !strings.Contains(buf.String(), "sent 2") {
		t.Errorf("log line = %q", buf.String())
	}
}
