package atelier

import (
	"crypto/rand"
	"encoding/json"
	"math/big"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Slugify converts a title to a URL-safe slug. Accented and non-Latin
// letters are transliterated first, so "Café Élan" becomes "cafe-elan".
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(unidecode.Unidecode(s)))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		case r == ' ', r == '\t', r == '\n', r == '\r', r == '-':
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

const accessCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateAccessCode returns an 8 character upper-case base-36 code.
func GenerateAccessCode() string {
	b := make([]byte, 8)
	max := big.NewInt(int64(len(accessCodeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("atelier: read random: " + err.Error())
		}
		b[i] = accessCodeAlphabet[n.Int64()]
	}
	return string(b)
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty removes empty/whitespace-only strings from a slice.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SplitKeywords splits a comma separated keyword list.
func SplitKeywords(s string) []string {
	return FilterEmpty(strings.Split(s, ","))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// StudioJsonLD returns a JSON-LD string describing the studio as a
// ProfessionalService.
func StudioJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "ProfessionalService",
		"name":        cfg.Name,
		"url":         BuildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["founder"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(post BlogPost, cfg SiteConfig) string {
	postURL := BuildURL(cfg.URL, "blog", post.Slug)
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    firstNonEmpty(post.SEOTitle, post.Title),
		"description": firstNonEmpty(post.SEODescription, post.Excerpt),
		"url":         postURL,
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.PublishedAt != nil {
		data["datePublished"] = post.PublishedAt.Format("2006-01-02")
	}
	if !post.UpdatedAt.IsZero() {
		data["dateModified"] = post.UpdatedAt.Format("2006-01-02")
	}
	if post.Image != "" {
		data["image"] = post.Image
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	if cfg.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  cfg.Name,
		}
	}
	if kw := SplitKeywords(post.SEOKeywords); len(kw) > 0 {
		data["keywords"] = strings.Join(kw, ", ")
	}
	if post.Category != "" {
		data["articleSection"] = post.Category
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
