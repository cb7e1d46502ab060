package catalog

import (
	"fmt"

	"github.com/bytedance/sonic"
)

type Sport struct {
	Handle string `json:"handle"`
	Label  string `json:"label"`
}

type ShaftType struct {
	Handle       string   `json:"handle"`
	Name         string   `json:"name"`
	SportHandles []string `json:"sportHandles"`
}

type ShaftVariant struct {
	Id           uint   `json:"id"`
	Title        string `json:"title"`
	ProductTitle string `json:"productTitle,omitempty"`
	Price        int    `json:"price"`
	Image        string `json:"image,omitempty"`
}

type ShaftSize struct {
	Handle          string         `json:"handle"`
	Name            string         `json:"name"`
	ShaftTypeHandle string         `json:"shaftTypeHandle"`
	Variants        []ShaftVariant `json:"variants,omitempty"`
	// Variant is the legacy feed shape, one inline variant per size.
	Variant *ShaftVariant `json:"variant,omitempty"`
}

type LabelOverride struct {
	SportHandle        string `json:"sportHandle"`
	ShaftTypeStepTitle string `json:"shaftTypeStepTitle,omitempty"`
	ShaftSizeStepTitle string `json:"shaftSizeStepTitle,omitempty"`
}

// ParseError is returned when one of the feed documents cannot be
// decoded. It keeps the offending payload so the caller can log it.
type ParseError struct {
	Doc     string
	Payload []byte
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s feed: %v", e.Doc, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func decodeFeed[V any](doc string, data []byte) ([]V, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var out []V
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, &ParseError{Doc: doc, Payload: data, Err: err}
	}
	return out, nil
}

// Load parses the four feed documents into an Index. Any document may
// be nil or empty, yielding an empty list for that entity. A document
// that is present but malformed aborts the load with a ParseError.
func Load(sportsRaw, typesRaw, sizesRaw, labelsRaw []byte) (*Index, error) {
	sports, err := decodeFeed[Sport]("sports", sportsRaw)
	if err != nil {
		return nil, err
	}
	shaftTypes, err := decodeFeed[ShaftType]("shaft-types", typesRaw)
	if err != nil {
		return nil, err
	}
	shaftSizes, err := decodeFeed[ShaftSize]("shaft-sizes", sizesRaw)
	if err != nil {
		return nil, err
	}
	labels, err := decodeFeed[LabelOverride]("labels", labelsRaw)
	if err != nil {
		return nil, err
	}
	for i := range shaftSizes {
		normalizeVariants(&shaftSizes[i])
	}
	return newIndex(sports, shaftTypes, shaftSizes, labels), nil
}

// normalizeVariants folds the legacy single-variant feed shape into the
// variants sequence so the rest of the code only deals with one shape.
func normalizeVariants(size *ShaftSize) {
	if size.Variant != nil {
		if len(size.Variants) == 0 {
			size.Variants = []ShaftVariant{*size.Variant}
		}
		size.Variant = nil
	}
}
