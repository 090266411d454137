package domain

import "strings"

const tagSeparator = ","

// ParseTags turns the comma separated text typed in the editor into a tag list.
// Entries are trimmed and empty entries are dropped. The result is never nil.
func ParseTags(text string) []string {
	tags := make([]string, 0)
	for _, part := range strings.Split(text, tagSeparator) {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// NormalizeTags applies the same trimming rules as ParseTags to an existing list
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, len(tags))
	for _, t := range tags {
		if tag := strings.TrimSpace(t); tag != "" {
			normalized = append(normalized, tag)
		}
	}
	return normalized
}

// FormatTags renders a tag list back into editable text
func FormatTags(tags []string) string {
	return strings.Join(tags, tagSeparator+" ")
}
