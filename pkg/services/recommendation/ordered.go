package recommendation

import "github.com/jgirmay/learnpath/pkg/models"

// itemKey identifies a recommendation for deduplication.
type itemKey struct {
	conceptID  string
	resourceID string
}

// OrderedRecommendations is an insertion-ordered map of recommendations
// keyed by (concept id, resource id). Putting an existing key replaces the
// stored item but keeps the position of its first insertion.
type OrderedRecommendations struct {
	keys  []itemKey
	items map[itemKey]models.RecommendationItem
}

// NewOrderedRecommendations creates an empty collection.
func NewOrderedRecommendations() *OrderedRecommendations {
	return &OrderedRecommendations{items: make(map[itemKey]models.RecommendationItem)}
}

// Put inserts or replaces item.
func (o *OrderedRecommendations) Put(item models.RecommendationItem) {
	k := itemKey{item.ConceptID, item.ResourceID}
	if _, ok := o.items[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.items[k] = item
}

// PutAll inserts items in order.
func (o *OrderedRecommendations) PutAll(items []models.RecommendationItem) {
	for _, item := range items {
		o.Put(item)
	}
}

// Len returns the number of distinct keys.
func (o *OrderedRecommendations) Len() int {
	return len(o.keys)
}

// Values returns the items in insertion order.
func (o *OrderedRecommendations) Values() []models.RecommendationItem {
	out := make([]models.RecommendationItem, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.items[k])
	}
	return out
}

// First returns at most n items in insertion order.
func (o *OrderedRecommendations) First(n int) []models.RecommendationItem {
	values := o.Values()
	if n < len(values) {
		values = values[:n]
	}
	return values
}
