package markdown

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExpandShortcodes_Geodesic_InlineDistance(t *testing.T) {
	src := []byte(`The flight covers {{geodesic from="-74.006,40.7128" to="-0.1276,51.5074"}} of ocean.`)

	out, errs := ExpandShortcodes(src)
	require.Empty(t, errs)
	require.NotContains(t, string(out), "{{")
	// Thousands-separated kilometers, e.g. "5,585.23 km".
	require.Regexp(t, regexp.MustCompile(`\d,\d{3}\.\d{2} km`), string(out))
}

func TestExpandShortcodes_Degrees_EmitsTable(t *testing.T) {
	out, errs := ExpandShortcodes([]byte(`{{degrees lat="60"}}`))
	require.Empty(t, errs)

	s := string(out)
	require.Contains(t, s, "| Decimal places | Degrees | N/S length | E/W length | Pins down |")
	require.Contains(t, s, "55.80 km")
	require.Contains(t, s, "country or large region")
	require.Contains(t, s, "| 8 | 0.00000001 |")
	require.Equal(t, 9+2, strings.Count(s, "\n")+1)
}

func TestExpandShortcodes_InsideFence_LeftVerbatim(t *testing.T) {
	src := []byte("```\n{{geodesic from=\"0,0\" to=\"1,0\"}}\n```\n")
	out, errs := ExpandShortcodes(src)
	require.Empty(t, errs)
	require.Equal(t, string(src), string(out))
}

func TestExpandShortcodes_InsideCodeSpan_LeftVerbatim(t *testing.T) {
	src := []byte("write `{{degrees lat=\"60\"}}` in the body")
	out, errs := ExpandShortcodes(src)
	require.Empty(t, errs)
	require.Equal(t, string(src), string(out))
}

func TestExpandShortcodes_MalformedPoint_ReportedAndKept(t *testing.T) {
	src := []byte(`{{geodesic from="not-a-point" to="0,0"}}`)
	out, errs := ExpandShortcodes(src)

	require.Equal(t, string(src), string(out))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "from")
}

func TestExpandShortcodes_UnknownDirective_ReportedAndKept(t *testing.T) {
	src := []byte(`{{sparkline data="1,2,3"}}`)
	out, errs := ExpandShortcodes(src)

	require.Equal(t, string(src), string(out))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Reason, "unknown directive")
}

func TestExpandShortcodes_BadLatitude_Reported(t *testing.T) {
	_, errs := ExpandShortcodes([]byte(`{{degrees lat="120"}}`))
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Reason, "not a latitude")
}
