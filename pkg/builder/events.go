package builder

// ChangeEvent tells a presentation layer which parts of the builder
// need redrawing after a mutation. The core never touches rendering.
type ChangeEvent string

const (
	EventShaftTypesChanged   ChangeEvent = "shaft-types-changed"
	EventShaftSizesChanged   ChangeEvent = "shaft-sizes-changed"
	EventShaftProductChanged ChangeEvent = "shaft-product-changed"
	EventAccessoriesShown    ChangeEvent = "accessories-shown"
	EventAccessoriesHidden   ChangeEvent = "accessories-hidden"
	EventSelectionChanged    ChangeEvent = "selection-changed"
)
