package hybrid

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"sync/atomic"
	"time"

	"hybridRecommender/business/catalog"
	"hybridRecommender/business/interaction"
	"hybridRecommender/domain"
)

// Snapshot bundles every lookup structure built from one load of the
// interaction table. It is immutable; a refresh builds a new one.
type Snapshot struct {
	Catalog *catalog.Resolver
	Users   *interaction.Encoder
	Items   *interaction.Encoder
	Index   *interaction.Index

	// content hash of the deduplicated records, stable across rebuilds
	Version      string
	BuiltAt      time.Time
	Interactions int
}

// BuildSnapshot dedupes records and builds encoders, index and catalog from
// them. searchLimit <= 0 keeps the catalog default.
func BuildSnapshot(records []domain.Interaction, searchLimit int) (*Snapshot, error) {
	records = interaction.Dedupe(records)

	userIDs := make([]string, 0, len(records))
	itemIDs := make([]string, 0, len(records))
	h := fnv.New64a()
	for _, r := range records {
		userIDs = append(userIDs, r.UserID)
		itemIDs = append(itemIDs, r.ItemID)
		_, _ = h.Write([]byte(r.UserID + "\x00" + r.ItemID + "\x00" + strconv.FormatFloat(r.Rating, 'f', -1, 64) + "\n"))
	}

	users := interaction.NewEncoder(userIDs)
	items := interaction.NewEncoder(itemIDs)

	index, err := interaction.NewIndex(records, users, items)
	if err != nil {
		return nil, fmt.Errorf("build interaction index: %w", err)
	}

	resolver := catalog.Build(interaction.Fragments(records))
	if searchLimit > 0 {
		resolver = resolver.WithSearchLimit(searchLimit)
	}

	return &Snapshot{
		Catalog:      resolver,
		Users:        users,
		Items:        items,
		Index:        index,
		Version:      fmt.Sprintf("%016x", h.Sum64()),
		BuiltAt:      time.Now(),
		Interactions: len(records),
	}, nil
}

// SnapshotStore publishes the current snapshot. Readers load it once per
// request and keep using that value even if a reload swaps it meanwhile.
type SnapshotStore struct {
	current atomic.Pointer[Snapshot]
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns nil until the first snapshot is stored.
func (s *SnapshotStore) Load() *Snapshot {
	return s.current.Load()
}

// Swap replaces the snapshot wholesale and returns the previous one.
func (s *SnapshotStore) Swap(next *Snapshot) *Snapshot {
	return s.current.Swap(next)
}
