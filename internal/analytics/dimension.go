package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDimension is returned for metric keys outside the closed set.
var ErrUnknownDimension = errors.New("analytics: unknown dimension")

// Dimension selects which daily metric drives the time-series chart.
type Dimension string

const (
	DimensionRevenue  Dimension = "revenue"
	DimensionOrders   Dimension = "orders"
	DimensionVisitors Dimension = "visitors"
)

// DefaultDimension is the selection used when none is supplied.
const DefaultDimension = DimensionRevenue

// DimensionConfig carries the display settings for a dimension.
type DimensionConfig struct {
	Label string
	Color string
	Unit  string
}

var dimensionOrder = []Dimension{DimensionRevenue, DimensionOrders, DimensionVisitors}

var dimensionConfigs = map[Dimension]DimensionConfig{
	DimensionRevenue:  {Label: "Выручка", Color: "#2563eb", Unit: "₽"},
	DimensionOrders:   {Label: "Заказы", Color: "#16a34a", Unit: "шт"},
	DimensionVisitors: {Label: "Посетители", Color: "#f97316"},
}

// Dimensions lists the selectable dimensions in display order.
func Dimensions() []Dimension {
	return append([]Dimension(nil), dimensionOrder...)
}

// ParseDimension resolves a metric key. Empty input yields DefaultDimension.
func ParseDimension(raw string) (Dimension, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return DefaultDimension, nil
	}
	d := Dimension(key)
	if _, ok := dimensionConfigs[d]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDimension, raw)
	}
	return d, nil
}

// Valid reports whether d belongs to the closed set.
func (d Dimension) Valid() bool {
	_, ok := dimensionConfigs[d]
	return ok
}

// Config returns the display settings; unknown dimensions yield the zero value.
func (d Dimension) Config() DimensionConfig {
	return dimensionConfigs[d]
}

func (d Dimension) String() string {
	return string(d)
}

// Value extracts the dimension's field from a daily record.
func (d Dimension) Value(r DailyRecord) int64 {
	switch d {
	case DimensionRevenue:
		return r.Revenue
	case DimensionOrders:
		return r.Orders
	case DimensionVisitors:
		return r.Visitors
	default:
		return 0
	}
}
