/*
reconcile.go - Item list merging on update

PURPOSE:
  An update request partially replaces an invoice's item collection. Each
  request entry either carries the identity of an existing item to update
  in place, or no identity to represent a new item. Items whose identity
  is not referenced are removed (and deleted by the store, since items
  are owned by their invoice).

ORDERING:
  Updated items keep their relative order within the current collection;
  new items are appended after.

SEE ALSO:
  - calculator.go: Recomputes each touched item's derived values
  - service.go: Runs reconciliation inside the update transaction
*/
package invoice

// ReconcileItems merges an update request's item entries against the
// invoice's current items by identity.
//
// Entries with an identity must refer to an item on this invoice;
// otherwise ItemNotFoundError is returned and nothing is merged.
func ReconcileItems(current []LineItem, updates []ItemInput) ([]LineItem, error) {
	index := make(map[ItemID]int, len(current))
	for i, it := range current {
		if it.ID != 0 {
			index[it.ID] = i
		}
	}

	merged := make([]LineItem, len(current))
	copy(merged, current)

	retained := make(map[ItemID]bool, len(updates))
	var appended []LineItem

	for _, in := range updates {
		if in.ID == 0 {
			appended = append(appended, CalculateItem(in))
			continue
		}

		i, ok := index[in.ID]
		if !ok {
			return nil, &ItemNotFoundError{ID: in.ID}
		}
		merged[i] = CalculateItem(in)
		retained[in.ID] = true
	}

	// Keep retained items in their current relative order, drop the rest,
	// append new items last.
	result := make([]LineItem, 0, len(retained)+len(appended))
	for _, it := range merged {
		if it.ID != 0 && retained[it.ID] {
			result = append(result, it)
		}
	}
	result = append(result, appended...)

	return result, nil
}
