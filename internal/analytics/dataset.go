package analytics

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidDataset is returned when a dataset fails record validation.
var ErrInvalidDataset = errors.New("analytics: invalid dataset")

// DailyRecord captures one day of storefront activity.
type DailyRecord struct {
	Date     string `json:"date" validate:"required"`
	Revenue  int64  `json:"revenue" validate:"gte=0"`
	Orders   int64  `json:"orders" validate:"gte=0"`
	Visitors int64  `json:"visitors" validate:"gte=0"`
}

// CategoryRecord is the revenue booked against a product category.
type CategoryRecord struct {
	Category string `json:"category" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Value    int64  `json:"value" validate:"gte=0"`
}

// ProductRecord is a single best-selling product.
type ProductRecord struct {
	Product string `json:"product" validate:"required"`
	Revenue int64  `json:"revenue" validate:"gte=0"`
	Units   int64  `json:"units" validate:"gte=0"`
}

// FunnelStage is one step of the purchase funnel.
type FunnelStage struct {
	Stage string `json:"stage" validate:"required"`
	Label string `json:"label" validate:"required"`
	Value int64  `json:"value" validate:"gte=0"`
}

// TrafficSource counts visitors arriving through one channel.
type TrafficSource struct {
	Source   string `json:"source" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Visitors int64  `json:"visitors" validate:"gte=0"`
}

// RegionRecord aggregates sales for a region.
type RegionRecord struct {
	Region  string `json:"region" validate:"required"`
	Revenue int64  `json:"revenue" validate:"gte=0"`
	Orders  int64  `json:"orders" validate:"gte=0"`
}

// Dataset bundles every record sequence rendered on the dashboard.
type Dataset struct {
	Title      string           `json:"title" validate:"required"`
	Subtitle   string           `json:"subtitle"`
	UpdatedAt  string           `json:"updated_at"`
	Daily      []DailyRecord    `json:"daily" validate:"dive"`
	Categories []CategoryRecord `json:"categories" validate:"unique=Category,dive"`
	Products   []ProductRecord  `json:"products" validate:"dive"`
	Funnel     []FunnelStage    `json:"funnel" validate:"unique=Stage,dive"`
	Traffic    []TrafficSource  `json:"traffic" validate:"unique=Source,dive"`
	Regions    []RegionRecord   `json:"regions" validate:"dive"`
}

// DatasetMeta is the descriptive part of a Dataset.
type DatasetMeta struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	UpdatedAt string `json:"updated_at"`
}

var datasetValidator = validator.New()

// Validate checks record level constraints. Ordering invariants such as the
// funnel monotonicity are reported by dedicated helpers and never enforced.
func (d Dataset) Validate() error {
	if err := datasetValidator.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("%w: %s failed %s", ErrInvalidDataset, first.Namespace(), first.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}
	return nil
}

// Clone returns a deep copy so callers never share backing arrays.
func (d Dataset) Clone() Dataset {
	out := d
	out.Daily = append([]DailyRecord(nil), d.Daily...)
	out.Categories = append([]CategoryRecord(nil), d.Categories...)
	out.Products = append([]ProductRecord(nil), d.Products...)
	out.Funnel = append([]FunnelStage(nil), d.Funnel...)
	out.Traffic = append([]TrafficSource(nil), d.Traffic...)
	out.Regions = append([]RegionRecord(nil), d.Regions...)
	return out
}

// ProductsSortedByRevenue reports whether products are ordered descending by revenue.
func ProductsSortedByRevenue(products []ProductRecord) bool {
	for i := 1; i < len(products); i++ {
		if products[i].Revenue > products[i-1].Revenue {
			return false
		}
	}
	return true
}

// FunnelMonotonic reports whether no stage exceeds the stage before it.
func FunnelMonotonic(stages []FunnelStage) bool {
	for i := 1; i < len(stages); i++ {
		if stages[i].Value > stages[i-1].Value {
			return false
		}
	}
	return true
}

// StaticSource serves a fixed dataset.
type StaticSource struct {
	dataset Dataset
}

// NewStaticSource validates the dataset once and keeps a private copy.
func NewStaticSource(d Dataset) (*StaticSource, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &StaticSource{dataset: d.Clone()}, nil
}

// Dataset returns a copy of the held records.
func (s *StaticSource) Dataset() Dataset {
	if s == nil {
		return Dataset{}
	}
	return s.dataset.Clone()
}
