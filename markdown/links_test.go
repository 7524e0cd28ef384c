package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLinks_CollectsEveryKind(t *testing.T) {
	src := []byte(`Read [the intro](/posts/lat-lon-precision/) first.

![globe](/public/images/globe.png)

Autolink: <https://cesium.com/learn/>

Bare: https://example.com/bare

See [the survey][vincenty].

[vincenty]: https://example.com/vincenty-1975
`)
	links := ExtractLinks(src)

	byKind := map[LinkKind][]string{}
	for _, l := range links {
		byKind[l.Kind] = append(byKind[l.Kind], l.Destination)
	}

	require.Contains(t, byKind[LinkKindInline], "/posts/lat-lon-precision/")
	// Reference-style usage resolves to an inline link with the definition's
	// destination.
	require.Contains(t, byKind[LinkKindInline], "https://example.com/vincenty-1975")
	require.Contains(t, byKind[LinkKindImage], "/public/images/globe.png")
	require.Contains(t, byKind[LinkKindAuto], "https://cesium.com/learn/")
	require.Contains(t, byKind[LinkKindAuto], "https://example.com/bare")
	require.Contains(t, byKind[LinkKindReference], "https://example.com/vincenty-1975")
}

func TestExtractLinks_PlainProse_ReturnsEmpty(t *testing.T) {
	links := ExtractLinks([]byte("No destinations here, only prose.\n"))
	require.Empty(t, links)
}
