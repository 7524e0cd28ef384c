package staticgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// BrokenLink is an internal reference in the exported site that resolves to
// nothing on disk.
type BrokenLink struct {
	Page   string
	Target string
}

func (b BrokenLink) String() string {
	return fmt.Sprintf("%s -> %s", b.Page, b.Target)
}

// VerifyLinks walks the exported site and checks that every internal href
// and src resolves to a file in dir. baseURL lets absolute self-links count
// as internal.
func VerifyLinks(dir, baseURL string) ([]BrokenLink, error) {
	var broken []BrokenLink
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".html" {
			return nil
		}
		refs, err := extractRefs(path)
		if err != nil {
			return fmt.Errorf("staticgen: parse %s: %w", path, err)
		}
		rel, _ := filepath.Rel(dir, path)
		for _, ref := range refs {
			target, internal := normalizeRef(ref, baseURL)
			if !internal {
				continue
			}
			if !targetExists(dir, target) {
				broken = append(broken, BrokenLink{Page: rel, Target: ref})
			}
		}
		return nil
	})
	return broken, err
}

func extractRefs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, err
	}

	var refs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key == "href" || attr.Key == "src" {
					refs = append(refs, attr.Val)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return refs, nil
}

// normalizeRef reduces a reference to a site-relative path, reporting
// whether it points into the exported site at all.
func normalizeRef(ref, baseURL string) (string, bool) {
	if baseURL != "" && strings.HasPrefix(ref, baseURL) {
		ref = strings.TrimPrefix(ref, strings.TrimSuffix(baseURL, "/"))
	}
	if ref == "" || !strings.HasPrefix(ref, "/") {
		return "", false
	}
	if strings.HasPrefix(ref, "//") {
		return "", false
	}
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" {
		return "", false
	}
	return ref, true
}

func targetExists(dir, target string) bool {
	path := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(target, "/")))
	if strings.HasSuffix(target, "/") {
		path = filepath.Join(path, "index.html")
	}
	if _, err := os.Stat(path); err == nil {
		return true
	}
	// Pretty URL without the trailing slash.
	if !strings.Contains(filepath.Base(path), ".") {
		if _, err := os.Stat(filepath.Join(path, "index.html")); err == nil {
			return true
		}
	}
	return false
}
