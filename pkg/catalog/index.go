package catalog

import "slices"

// Index holds the normalized catalog lookups. It is immutable after
// load and safe to share between sessions without locking.
type Index struct {
	sports     []Sport
	shaftTypes []ShaftType
	shaftSizes []ShaftSize
	overrides  map[string]LabelOverride

	sportByHandle map[string]int
	typeByHandle  map[string]int
	sizeByHandle  map[string]int
}

func newIndex(sports []Sport, shaftTypes []ShaftType, shaftSizes []ShaftSize, labels []LabelOverride) *Index {
	// an absent feed still encodes as [] on the wire, not null
	if sports == nil {
		sports = []Sport{}
	}
	idx := &Index{
		sports:        sports,
		shaftTypes:    shaftTypes,
		shaftSizes:    shaftSizes,
		overrides:     make(map[string]LabelOverride, len(labels)),
		sportByHandle: make(map[string]int, len(sports)),
		typeByHandle:  make(map[string]int, len(shaftTypes)),
		sizeByHandle:  make(map[string]int, len(shaftSizes)),
	}
	for i, s := range sports {
		idx.sportByHandle[s.Handle] = i
	}
	for i, t := range shaftTypes {
		idx.typeByHandle[t.Handle] = i
	}
	for i, s := range shaftSizes {
		idx.sizeByHandle[s.Handle] = i
	}
	for _, l := range labels {
		idx.overrides[l.SportHandle] = l
	}
	return idx
}

// Empty returns an index with no entries, used when the feed is
// missing or failed to parse.
func Empty() *Index {
	return newIndex(nil, nil, nil, nil)
}

func (idx *Index) Sports() []Sport {
	return idx.sports
}

func (idx *Index) Sport(handle string) (Sport, bool) {
	i, ok := idx.sportByHandle[handle]
	if !ok {
		return Sport{}, false
	}
	return idx.sports[i], true
}

func (idx *Index) ShaftType(handle string) (ShaftType, bool) {
	i, ok := idx.typeByHandle[handle]
	if !ok {
		return ShaftType{}, false
	}
	return idx.shaftTypes[i], true
}

func (idx *Index) ShaftSize(handle string) (ShaftSize, bool) {
	i, ok := idx.sizeByHandle[handle]
	if !ok {
		return ShaftSize{}, false
	}
	return idx.shaftSizes[i], true
}

// ShaftTypesForSport returns the shaft types offered for a sport, in
// catalog order.
func (idx *Index) ShaftTypesForSport(sportHandle string) []ShaftType {
	ret := make([]ShaftType, 0)
	for _, t := range idx.shaftTypes {
		if slices.Contains(t.SportHandles, sportHandle) {
			ret = append(ret, t)
		}
	}
	return ret
}

// ShaftSizesForShaftType returns the sizes belonging to a shaft type,
// in catalog order.
func (idx *Index) ShaftSizesForShaftType(shaftTypeHandle string) []ShaftSize {
	ret := make([]ShaftSize, 0)
	for _, s := range idx.shaftSizes {
		if s.ShaftTypeHandle == shaftTypeHandle {
			ret = append(ret, s)
		}
	}
	return ret
}

// ShaftVariantsForSize returns the purchasable variants of a size,
// empty when the size is unknown.
func (idx *Index) ShaftVariantsForSize(shaftSizeHandle string) []ShaftVariant {
	size, ok := idx.ShaftSize(shaftSizeHandle)
	if !ok {
		return nil
	}
	return size.Variants
}

// LabelOverrideForSport returns the per-sport step heading override,
// nil when the sport has none.
func (idx *Index) LabelOverrideForSport(sportHandle string) *LabelOverride {
	l, ok := idx.overrides[sportHandle]
	if !ok {
		return nil
	}
	return &l
}
