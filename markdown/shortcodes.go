package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/eringen/geopress/geodesic"
)

// Geodesy directives let posts state computed figures instead of hand-typed
// ones:
//
//	{{geodesic from="LON,LAT" to="LON,LAT"}}   inline surface distance
//	{{degrees lat="60"}}                       precision table at a latitude
//
// Directives inside code fences and inline code spans are left alone so a
// post can document the syntax itself.

var (
	directivePattern = regexp.MustCompile(`\{\{\s*([a-z]+)\s*([^}]*)\}\}`)
	attrPattern      = regexp.MustCompile(`([a-zA-Z]+)\s*=\s*"([^"]*)"`)
)

// ShortcodeError describes a directive that could not be expanded. The
// directive stays verbatim in the output.
type ShortcodeError struct {
	Directive string
	Reason    string
}

func (e ShortcodeError) Error() string {
	return fmt.Sprintf("markdown: shortcode %s: %s", e.Directive, e.Reason)
}

// ExpandShortcodes replaces geodesy directives in a Markdown body with their
// computed Markdown. Unknown or malformed directives are kept verbatim and
// reported.
func ExpandShortcodes(body []byte) ([]byte, []ShortcodeError) {
	var errs []ShortcodeError
	var out strings.Builder
	out.Grow(len(body))

	inFence := false
	lines := strings.Split(string(body), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			out.WriteString(line)
		} else if inFence {
			out.WriteString(line)
		} else {
			out.WriteString(expandLine(line, &errs))
		}
		if i < len(lines)-1 {
			out.WriteByte('\n')
		}
	}
	return []byte(out.String()), errs
}

// expandLine expands directives in the segments of a line that sit outside
// inline code spans.
func expandLine(line string, errs *[]ShortcodeError) string {
	if !strings.Contains(line, "{{") {
		return line
	}
	parts := strings.Split(line, "`")
	for i := 0; i < len(parts); i += 2 {
		parts[i] = directivePattern.ReplaceAllStringFunc(parts[i], func(m string) string {
			return expandDirective(m, errs)
		})
	}
	return strings.Join(parts, "`")
}

func expandDirective(directive string, errs *[]ShortcodeError) string {
	groups := directivePattern.FindStringSubmatch(directive)
	name := groups[1]
	attrs := map[string]string{}
	for _, kv := range attrPattern.FindAllStringSubmatch(groups[2], -1) {
		attrs[kv[1]] = kv[2]
	}

	fail := func(reason string) string {
		*errs = append(*errs, ShortcodeError{Directive: directive, Reason: reason})
		return directive
	}

	switch name {
	case "geodesic":
		from, err := parsePoint(attrs["from"])
		if err != nil {
			return fail(fmt.Sprintf("from: %v", err))
		}
		to, err := parsePoint(attrs["to"])
		if err != nil {
			return fail(fmt.Sprintf("to: %v", err))
		}
		return formatKilometers(geodesic.New(from, to).Kilometers())
	case "degrees":
		raw, ok := attrs["lat"]
		if !ok {
			return fail(`missing lat="..." attribute`)
		}
		lat, err := strconv.ParseFloat(raw, 64)
		if err != nil || lat < -90 || lat > 90 {
			return fail(fmt.Sprintf("lat %q is not a latitude", raw))
		}
		return precisionTableMarkdown(lat)
	default:
		return fail("unknown directive")
	}
}

// parsePoint reads a "LON,LAT" pair in degrees.
func parsePoint(raw string) (geodesic.Cartographic, error) {
	lonRaw, latRaw, ok := strings.Cut(raw, ",")
	if !ok {
		return geodesic.Cartographic{}, fmt.Errorf("%q is not LON,LAT", raw)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(lonRaw), 64)
	if err != nil {
		return geodesic.Cartographic{}, fmt.Errorf("longitude %q: %w", lonRaw, err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latRaw), 64)
	if err != nil {
		return geodesic.Cartographic{}, fmt.Errorf("latitude %q: %w", latRaw, err)
	}
	return geodesic.FromDegrees(lon, lat), nil
}

func precisionTableMarkdown(latDeg float64) string {
	var b strings.Builder
	b.WriteString("| Decimal places | Degrees | N/S length | E/W length | Pins down |\n")
	b.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, row := range geodesic.PrecisionTable(latDeg) {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
			row.Decimals,
			strconv.FormatFloat(row.Degrees, 'f', row.Decimals, 64),
			formatLength(row.LatitudeMeters),
			formatLength(row.LongitudeMeters),
			row.Landmark)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatKilometers(km float64) string {
	return addThousands(strconv.FormatFloat(km, 'f', 2, 64)) + " km"
}

func formatLength(meters float64) string {
	switch {
	case meters >= 1000:
		return addThousands(strconv.FormatFloat(meters/1000, 'f', 2, 64)) + " km"
	case meters >= 1:
		return strconv.FormatFloat(meters, 'f', 2, 64) + " m"
	default:
		return strconv.FormatFloat(meters*1000, 'f', 2, 64) + " mm"
	}
}

func addThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}
