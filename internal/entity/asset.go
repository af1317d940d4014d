package entity

import "strings"

type AssetKind int

const (
	AssetNone AssetKind = iota
	AssetDurable
	AssetInline
	AssetEphemeral
	AssetUnsupported
)

const (
	InlinePrefix    = "data:"
	EphemeralPrefix = "blob:"
)

// ClassifyAsset tells durable URIs apart from references that cannot outlive
// the current process (inline data URIs and uploaded blobs).
func ClassifyAsset(ref string) AssetKind {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)
	switch {
	case ref == "":
		return AssetNone
	case strings.HasPrefix(lower, InlinePrefix):
		return AssetInline
	case strings.HasPrefix(lower, EphemeralPrefix):
		return AssetEphemeral
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return AssetDurable
	default:
		return AssetUnsupported
	}
}

func IsDurable(ref string) bool {
	return ClassifyAsset(ref) == AssetDurable
}
