package model

import "time"

// EmbeddingCacheFile is the self-describing on-disk container for the
// embedding cache snapshot (spec §6.5): a JSON document carrying the model
// identity the entries were generated under, plus every cached entry.
// Restore rejects the snapshot if ModelName mismatches the currently
// configured model (spec §6.5, §4.3's "tolerate model swap").
type EmbeddingCacheFile struct {
	ModelName  string                 `json:"model_name"`
	Dimensions int                    `json:"dimensions"`
	CreatedAt  time.Time              `json:"created_at"`
	Entries    []EmbeddingCacheEntry  `json:"entries"`
}
