package cache

import (
	"fmt"
	"strings"
)

// KeyBuilder builds namespaced cache keys.
type KeyBuilder struct {
	prefix string
	sep    string
}

// NewKeyBuilder creates a builder with the given prefix.
func NewKeyBuilder(prefix string) *KeyBuilder {
	return &KeyBuilder{
		prefix: prefix,
		sep:    ":",
	}
}

// WithSeparator sets the separator.
func (kb *KeyBuilder) WithSeparator(sep string) *KeyBuilder {
	kb.sep = sep
	return kb
}

// Build joins the parts under the prefix.
func (kb *KeyBuilder) Build(parts ...string) string {
	if len(parts) == 0 {
		return kb.prefix
	}
	return kb.prefix + kb.sep + strings.Join(parts, kb.sep)
}

// BuildID builds a key carrying a single ID.
func (kb *KeyBuilder) BuildID(id interface{}) string {
	return fmt.Sprintf("%s%s%v", kb.prefix, kb.sep, id)
}

// Predefined KeyBuilder instances.
var (
	// ImageList caches filtered listing pages. Keys embed the current
	// listing version so a version bump retires every cached page.
	ImageList = NewKeyBuilder("image_list")

	// ImageListVersion holds the listing version counter.
	ImageListVersion = NewKeyBuilder("image_list_version")

	// Thumbnail caches rendered thumbnail bytes.
	Thumbnail = NewKeyBuilder("thumbnail")

	// TagList caches the used-tags listing.
	TagList = NewKeyBuilder("tag_list")

	// Stats caches catalog statistics.
	Stats = NewKeyBuilder("stats")
)
