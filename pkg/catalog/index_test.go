package catalog

import (
	"encoding/json"
	"errors"
	"testing"
)

var sportsFeed = []byte(`[{"handle":"baseball","label":"Baseball"},{"handle":"softball","label":"Softball"}]`)
var typesFeed = []byte(`[{"handle":"alloy","name":"Alloy","sportHandles":["baseball","softball"]},{"handle":"composite","name":"Composite","sportHandles":["softball"]}]`)
var sizesFeed = []byte(`[
	{"handle":"31in","name":"31 inch","shaftTypeHandle":"alloy","variants":[{"id":111,"title":"31in","price":29900},{"id":112,"title":"31in drop -8","price":31900}]},
	{"handle":"32in","name":"32 inch","shaftTypeHandle":"alloy","variant":{"id":211,"title":"32in","price":30900}},
	{"handle":"33in","name":"33 inch","shaftTypeHandle":"composite","variants":[{"id":311,"title":"33in","price":35900}]}
]`)
var labelsFeed = []byte(`[{"sportHandle":"softball","shaftTypeStepTitle":"Pick a softball shaft"}]`)

func TestLoadAndQueries(t *testing.T) {
	idx, err := Load(sportsFeed, typesFeed, sizesFeed, labelsFeed)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}

	if len(idx.Sports()) != 2 {
		t.Errorf("Expected 2 sports, got %d", len(idx.Sports()))
	}

	types := idx.ShaftTypesForSport("softball")
	if len(types) != 2 || types[0].Handle != "alloy" || types[1].Handle != "composite" {
		t.Errorf("Expected [alloy composite] for softball, got %v", types)
	}
	types = idx.ShaftTypesForSport("baseball")
	if len(types) != 1 || types[0].Handle != "alloy" {
		t.Errorf("Expected [alloy] for baseball, got %v", types)
	}

	sizes := idx.ShaftSizesForShaftType("alloy")
	if len(sizes) != 2 || sizes[0].Handle != "31in" || sizes[1].Handle != "32in" {
		t.Errorf("Expected [31in 32in] for alloy, got %v", sizes)
	}

	variants := idx.ShaftVariantsForSize("31in")
	if len(variants) != 2 || variants[0].Id != 111 || variants[1].Id != 112 {
		t.Errorf("Expected variants [111 112], got %v", variants)
	}
}

func TestLoadLegacySingleVariant(t *testing.T) {
	idx, err := Load(sportsFeed, typesFeed, sizesFeed, nil)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	variants := idx.ShaftVariantsForSize("32in")
	if len(variants) != 1 {
		t.Fatalf("Expected legacy variant to be normalized, got %v", variants)
	}
	if variants[0].Id != 211 || variants[0].Price != 30900 {
		t.Errorf("Expected variant 211 at 30900, got %v", variants[0])
	}
}

func TestLoadMissingFeeds(t *testing.T) {
	idx, err := Load(nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("Expected empty load to succeed, got %v", err)
	}
	if len(idx.Sports()) != 0 {
		t.Errorf("Expected no sports, got %d", len(idx.Sports()))
	}
	// an empty catalog must encode as [], not null
	if data, err := json.Marshal(idx.Sports()); err != nil || string(data) != "[]" {
		t.Errorf("Expected empty sports to encode as [], got %s (%v)", data, err)
	}
	if got := idx.ShaftTypesForSport("baseball"); len(got) != 0 {
		t.Errorf("Expected no shaft types, got %v", got)
	}
	if got := idx.ShaftVariantsForSize("31in"); len(got) != 0 {
		t.Errorf("Expected no variants for unknown size, got %v", got)
	}
}

func TestLoadMalformedFeed(t *testing.T) {
	_, err := Load(sportsFeed, []byte(`{not json`), nil, nil)
	if err == nil {
		t.Fatal("Expected a parse error")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("Expected ParseError, got %T", err)
	}
	if parseErr.Doc != "shaft-types" {
		t.Errorf("Expected offending doc shaft-types, got %s", parseErr.Doc)
	}
	if len(parseErr.Payload) == 0 {
		t.Error("Expected the offending payload to be kept")
	}
}

func TestLabelOverrideForSport(t *testing.T) {
	idx, err := Load(sportsFeed, typesFeed, sizesFeed, labelsFeed)
	if err != nil {
		t.Fatalf("Expected load to succeed, got %v", err)
	}
	o := idx.LabelOverrideForSport("softball")
	if o == nil || o.ShaftTypeStepTitle != "Pick a softball shaft" {
		t.Errorf("Expected softball override, got %v", o)
	}
	if idx.LabelOverrideForSport("baseball") != nil {
		t.Error("Expected no override for baseball")
	}
}
