package domain

import "context"

// ResultItem is one ranked catalog entry returned by search or recommendations.
// Name is the identity used to join ratings and metadata onto cards; two
// catalog entries sharing a display name are indistinguishable at this layer.
type ResultItem struct {
	Name  string
	Score float64
	// Synopsis and ImageURL are only populated by the legacy enriched wire
	// shape. The attach pass discards them; series_meta is authoritative.
	Synopsis string
	ImageURL string
}

// MetaInfo is per-title media metadata, keyed by display name. Absent fields
// are empty strings.
type MetaInfo struct {
	ImageURL string
	Synopsis string
}

// CatalogAPI is the backend contract consumed by the client. Search and
// recommendations share one endpoint server-side; they stay separate
// operations here because they feed different panes.
type CatalogAPI interface {
	Search(ctx context.Context, query string, topN int) ([]ResultItem, error)
	Recommend(ctx context.Context, userID int, topN int) ([]ResultItem, error)
	SeriesMeta(ctx context.Context, names []string) (map[string]MetaInfo, error)
	Rate(ctx context.Context, name string, score int) error
	Unrate(ctx context.Context, name string) error
	MyRatings(ctx context.Context) (map[string]int, error)
}
