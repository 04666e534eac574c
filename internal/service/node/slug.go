package node

import "strings"

// Slugify derives a URL-safe slug from a node name: lowercase, runs of
// non-alphanumerics collapsed to a single dash, leading/trailing dashes
// trimmed. An empty result falls back to "node".
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash

	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "node"
	}
	return slug
}

// BuildPath joins a parent's materialized path with a slug.
func BuildPath(parentPath, slug string) string {
	if parentPath == "" {
		return "/" + slug
	}
	return parentPath + "/" + slug
}
