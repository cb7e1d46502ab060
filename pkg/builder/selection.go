package builder

import (
	"slices"

	"github.com/matst80/slask-builder/pkg/catalog"
)

// SelectionPath is the three-level choice path. A later field is only
// ever set when every earlier field is set and the catalog links them.
type SelectionPath struct {
	Sport     string `json:"sport,omitempty"`
	ShaftType string `json:"shaftType,omitempty"`
	ShaftSize string `json:"shaftSize,omitempty"`
}

// StepTitles are the headings of the two dependent steps, replaceable
// per sport via the catalog label overrides.
type StepTitles struct {
	ShaftType string `json:"shaftType"`
	ShaftSize string `json:"shaftSize"`
}

const (
	defaultShaftTypeTitle = "Choose shaft type"
	defaultShaftSizeTitle = "Choose shaft size"
)

func defaultTitles() StepTitles {
	return StepTitles{
		ShaftType: defaultShaftTypeTitle,
		ShaftSize: defaultShaftSizeTitle,
	}
}

// State is the serializable part of a builder, persisted per session.
type State struct {
	Path       SelectionPath `json:"path"`
	Selections SelectionSet  `json:"selections"`
	Titles     StepTitles    `json:"titles"`
}

// Builder drives one configurator instance against a shared read-only
// catalog index. All mutations return the change events a presenter
// needs to redraw; invalid input leaves the state untouched and
// returns no events.
type Builder struct {
	catalog *catalog.Index
	State
}

func New(idx *catalog.Index) *Builder {
	return &Builder{
		catalog: idx,
		State:   State{Titles: defaultTitles()},
	}
}

// Restore rebuilds a builder from persisted session state.
func Restore(idx *catalog.Index, state State) *Builder {
	if state.Titles == (StepTitles{}) {
		state.Titles = defaultTitles()
	}
	return &Builder{catalog: idx, State: state}
}

// AccessoriesVisible reports whether the accessory panels are offered,
// which is exactly when the full path is chosen.
func (b *Builder) AccessoriesVisible() bool {
	return b.Path.ShaftSize != ""
}

func (b *Builder) applyTitles(sportHandle string) {
	b.Titles = defaultTitles()
	if o := b.catalog.LabelOverrideForSport(sportHandle); o != nil {
		if o.ShaftTypeStepTitle != "" {
			b.Titles.ShaftType = o.ShaftTypeStepTitle
		}
		if o.ShaftSizeStepTitle != "" {
			b.Titles.ShaftSize = o.ShaftSizeStepTitle
		}
	}
}

// ChooseSport starts a new path. Everything downstream of the sport is
// invalidated: shaft type, shaft size, the shaft slot and all
// accessory slots.
func (b *Builder) ChooseSport(handle string) []ChangeEvent {
	if _, ok := b.catalog.Sport(handle); !ok {
		return nil
	}
	choicesTotal.Inc()
	b.Path = SelectionPath{Sport: handle}
	b.applyTitles(handle)
	events := []ChangeEvent{EventShaftTypesChanged, EventAccessoriesHidden}
	if b.Selections.Clear() {
		events = append(events, EventSelectionChanged)
	}
	return events
}

// ChooseShaftType sets the second step. The shaft size, shaft slot and
// accessory slots are invalidated.
func (b *Builder) ChooseShaftType(handle string) []ChangeEvent {
	if b.Path.Sport == "" {
		return nil
	}
	t, ok := b.catalog.ShaftType(handle)
	if !ok || !slices.Contains(t.SportHandles, b.Path.Sport) {
		return nil
	}
	choicesTotal.Inc()
	b.Path.ShaftType = handle
	b.Path.ShaftSize = ""
	events := []ChangeEvent{EventShaftSizesChanged, EventAccessoriesHidden}
	changed := b.Selections.ClearShaft()
	if b.Selections.ClearAccessories() {
		changed = true
	}
	if changed {
		events = append(events, EventSelectionChanged)
	}
	return events
}

// ChooseShaftSize sets the final step and reveals the accessory
// panels. The prior shaft choice is always invalidated, even when the
// new size happens to offer the same variant id; variant identity is
// not stable across sizes in the catalog.
func (b *Builder) ChooseShaftSize(handle string) []ChangeEvent {
	if b.Path.ShaftType == "" {
		return nil
	}
	size, ok := b.catalog.ShaftSize(handle)
	if !ok || size.ShaftTypeHandle != b.Path.ShaftType {
		return nil
	}
	choicesTotal.Inc()
	b.Path.ShaftSize = handle
	events := []ChangeEvent{EventShaftProductChanged, EventAccessoriesShown}
	if b.Selections.ClearShaft() {
		events = append(events, EventSelectionChanged)
	}
	return events
}

// ToggleShaft toggles a shaft variant of the currently chosen size.
// The variant is resolved from the catalog so a stale id from an
// outdated card is a no-op.
func (b *Builder) ToggleShaft(variantId uint) []ChangeEvent {
	if b.Path.ShaftSize == "" {
		return nil
	}
	for _, v := range b.catalog.ShaftVariantsForSize(b.Path.ShaftSize) {
		if v.Id == variantId {
			if b.Selections.ToggleShaft(v) {
				togglesTotal.Inc()
				return []ChangeEvent{EventSelectionChanged}
			}
			return nil
		}
	}
	return nil
}

// ToggleAccessory toggles an independent accessory slot. Accessory
// cards carry their own variant data, so the payload is taken as is.
func (b *Builder) ToggleAccessory(accessoryType string, index int, v catalog.ShaftVariant) []ChangeEvent {
	if !b.AccessoriesVisible() {
		return nil
	}
	if b.Selections.ToggleAccessory(accessoryType, index, v) {
		togglesTotal.Inc()
		return []ChangeEvent{EventSelectionChanged}
	}
	return nil
}

// SetQuantity adjusts the quantity of an occupied slot.
func (b *Builder) SetQuantity(slotKey string, quantity int) []ChangeEvent {
	if b.Selections.SetQuantity(slotKey, quantity) {
		return []ChangeEvent{EventSelectionChanged}
	}
	return nil
}

// Reset returns the builder to its initial state and restores the
// default step titles.
func (b *Builder) Reset() []ChangeEvent {
	resetsTotal.Inc()
	b.Path = SelectionPath{}
	b.Titles = defaultTitles()
	events := []ChangeEvent{EventShaftTypesChanged, EventAccessoriesHidden}
	if b.Selections.Clear() {
		events = append(events, EventSelectionChanged)
	}
	return events
}

// Summary derives the current line items from the selection.
func (b *Builder) Summary() Summary {
	return Summarize(&b.Selections)
}
