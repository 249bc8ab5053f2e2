package abiexport

import (
	"github.com/samber/lo"
)

type keyedItem struct {
	key  string
	item Item
}

// UniqueFunctions returns every function across artifacts, deduplicated by
// signature. The first occurrence wins.
func UniqueFunctions(artifacts []*Artifact) ([]Item, error) {
	return uniqueOfType(artifacts, TypeFunction, Signature)
}

// UniqueEvents returns every event across artifacts, deduplicated by signature
// and indexed input count.
func UniqueEvents(artifacts []*Artifact) ([]Item, error) {
	return uniqueOfType(artifacts, TypeEvent, eventKey)
}

// UniqueErrors returns every error across artifacts, deduplicated by signature.
func UniqueErrors(artifacts []*Artifact) ([]Item, error) {
	return uniqueOfType(artifacts, TypeError, Signature)
}

func uniqueOfType(artifacts []*Artifact, itemType string, key func(Item) (string, error)) ([]Item, error) {
	items := lo.FlatMap(artifacts, func(artifact *Artifact, _ int) []Item {
		return lo.Filter(artifact.ABI, func(item Item, _ int) bool {
			return item.Type == itemType
		})
	})

	keyed := make([]keyedItem, 0, len(items))
	for _, item := range items {
		k, err := key(item)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, keyedItem{key: k, item: item})
	}

	unique := lo.UniqBy(keyed, func(k keyedItem) string {
		return k.key
	})
	return lo.Map(unique, func(k keyedItem, _ int) Item {
		return k.item
	}), nil
}
