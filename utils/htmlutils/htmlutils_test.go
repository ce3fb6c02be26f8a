// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package htmlutils

import (
	"strings"
	"testing"

	"golang.org/x/net/html"
)

func TestNode2string(t *testing.T) {
	tests := []struct {
		expected string
		input    string
	}{
		{"foo bar", "<div><pre>foo</pre><span>bar</span>"},
		{"a b", "<p>a\n\n</p><script>var x;</script><p> b</p>"},
		{"", "<br>"},
	}

	for _, test := range tests {
		n, err := html.Parse(strings.NewReader(test.input))
		if err != nil {
			t.Fatalf("parsing HTML `%s': %s", test.input, err)
		}

		sb := strings.Builder{}
		Node2string(n, &sb)

		if got := sb.String(); got != test.expected {
			t.Errorf("`%s': expected `%v' but got `%v'", test.input, test.expected, got)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		expected string
		input    string
	}{
		{"Contractor; Geo Tech", "  Contractor; Geo Tech "},
		{"Smith & Sons", "Smith &amp; Sons"},
		{"Contractor ; Home Owner", "<p>Contractor</p><p>; Home Owner</p>"},
		{"12 Main St Springfield", "<div>12 Main St<br>Springfield</div>"},
		{"", ""},
	}

	for _, test := range tests {
		if got := PlainText(test.input); got != test.expected {
			t.Errorf("PlainText(%q) = %q, want %q", test.input, got, test.expected)
		}
	}
}
