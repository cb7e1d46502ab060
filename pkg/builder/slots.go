package builder

import (
	"fmt"
	"strings"

	"github.com/matst80/slask-builder/pkg/catalog"
)

// ShaftSlotKey is the single exclusive slot for the chosen shaft.
const ShaftSlotKey = "shaft"

// AccessorySlotKey builds the key for an independent accessory slot,
// e.g. "ball-0" or "pineapple-1".
func AccessorySlotKey(accessoryType string, index int) string {
	return fmt.Sprintf("%s-%d", accessoryType, index)
}

// SelectedProduct is one occupied slot in the selection.
type SelectedProduct struct {
	SlotKey   string `json:"slotKey"`
	VariantId uint   `json:"variantId"`
	Title     string `json:"title"`
	UnitPrice int    `json:"price"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
}

// SelectionSet maps slot keys to selected products. Entry order is
// insertion order and doubles as the summary display order. At most
// one entry exists per slot key.
type SelectionSet struct {
	Entries []SelectedProduct `json:"entries"`
}

func (s *SelectionSet) Len() int {
	return len(s.Entries)
}

func (s *SelectionSet) Get(slotKey string) (SelectedProduct, bool) {
	for _, e := range s.Entries {
		if e.SlotKey == slotKey {
			return e, true
		}
	}
	return SelectedProduct{}, false
}

func (s *SelectionSet) remove(slotKey string) bool {
	for i, e := range s.Entries {
		if e.SlotKey == slotKey {
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the whole set.
func (s *SelectionSet) Clear() bool {
	if len(s.Entries) == 0 {
		return false
	}
	s.Entries = nil
	return true
}

// ClearShaft removes the shaft slot occupant if present.
func (s *SelectionSet) ClearShaft() bool {
	return s.remove(ShaftSlotKey)
}

// ClearAccessories removes every accessory slot, leaving only the
// shaft slot (used when the accessory panels are hidden upstream).
func (s *SelectionSet) ClearAccessories() bool {
	kept := s.Entries[:0]
	changed := false
	for _, e := range s.Entries {
		if e.SlotKey == ShaftSlotKey {
			kept = append(kept, e)
		} else {
			changed = true
		}
	}
	s.Entries = kept
	return changed
}

func displayTitle(v catalog.ShaftVariant) string {
	if v.ProductTitle != "" {
		return v.ProductTitle
	}
	return v.Title
}

// ToggleShaft toggles the exclusive shaft slot. Selecting the current
// occupant again deselects it; any other variant replaces the occupant
// in place. A zero variant id is ignored.
func (s *SelectionSet) ToggleShaft(v catalog.ShaftVariant) bool {
	if v.Id == 0 {
		return false
	}
	return s.toggle(ShaftSlotKey, v)
}

// ToggleAccessory toggles one accessory slot. Slots are independent,
// keyed by accessory type and panel index.
func (s *SelectionSet) ToggleAccessory(accessoryType string, index int, v catalog.ShaftVariant) bool {
	if v.Id == 0 || strings.TrimSpace(accessoryType) == "" || index < 0 {
		return false
	}
	return s.toggle(AccessorySlotKey(accessoryType, index), v)
}

func (s *SelectionSet) toggle(slotKey string, v catalog.ShaftVariant) bool {
	product := SelectedProduct{
		SlotKey:   slotKey,
		VariantId: v.Id,
		Title:     displayTitle(v),
		UnitPrice: v.Price,
		Image:     v.Image,
		Quantity:  1,
	}
	for i, e := range s.Entries {
		if e.SlotKey != slotKey {
			continue
		}
		if e.VariantId == v.Id {
			// toggle off, quantity state is not preserved
			s.Entries = append(s.Entries[:i], s.Entries[i+1:]...)
		} else {
			// replace in place so the summary position is stable
			s.Entries[i] = product
		}
		return true
	}
	s.Entries = append(s.Entries, product)
	return true
}

// SetQuantity updates the quantity of an occupied slot. Quantities
// below one and unknown slots are ignored rather than rejected.
func (s *SelectionSet) SetQuantity(slotKey string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	for i, e := range s.Entries {
		if e.SlotKey == slotKey {
			s.Entries[i].Quantity = quantity
			return true
		}
	}
	return false
}
