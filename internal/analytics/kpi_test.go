package analytics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumFieldGoldenTotals(t *testing.T) {
	daily := SampleDataset().Daily
	require.Len(t, daily, 30)

	manual := map[Dimension]int64{}
	for _, r := range daily {
		manual[DimensionRevenue] += r.Revenue
		manual[DimensionOrders] += r.Orders
		manual[DimensionVisitors] += r.Visitors
	}

	tests := []struct {
		dimension Dimension
		want      int64
	}{
		{DimensionRevenue, 6_479_000},
		{DimensionOrders, 2_002},
		{DimensionVisitors, 55_780},
	}
	for _, tt := range tests {
		t.Run(tt.dimension.String(), func(t *testing.T) {
			got := SumField(daily, tt.dimension)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, manual[tt.dimension], got)
		})
	}
}

func TestAverage(t *testing.T) {
	assert.Equal(t, int64(3236), Average(6_479_000, 2_002))
	assert.Equal(t, int64(0), Average(6_479_000, 0))
	assert.Equal(t, int64(0), Average(0, 0))
	assert.Equal(t, int64(3), Average(5, 2), "half rounds up")
	assert.Equal(t, int64(-2), Average(-5, 2), "half rounds towards +Inf")
}

func TestConversionRate(t *testing.T) {
	assert.Equal(t, "3.59", ConversionRate(2_002, 55_780))
	assert.Equal(t, "0.00", ConversionRate(10, 0))
	assert.Equal(t, "100.00", ConversionRate(7, 7))

	for _, pair := range [][2]int64{{1, 3}, {0, 9}, {2, 3}, {999, 1000}} {
		rate := ConversionRate(pair[0], pair[1])
		dot := strings.IndexByte(rate, '.')
		require.NotEqual(t, -1, dot, rate)
		assert.Len(t, rate[dot+1:], 2, rate)
	}
}

func TestPeriodGrowth(t *testing.T) {
	daily := SampleDataset().Daily
	first := SumField(daily[:15], DimensionRevenue)
	second := SumField(daily[15:], DimensionRevenue)
	assert.Equal(t, int64(2_703_000), first)
	assert.Equal(t, int64(3_776_000), second)
	assert.Equal(t, int64(40), PeriodGrowth(daily, 15))

	zeroFirst := []DailyRecord{{Date: "a"}, {Date: "b", Revenue: 100}}
	assert.Equal(t, int64(0), PeriodGrowth(zeroFirst, 1))
	assert.Equal(t, int64(0), PeriodGrowth(nil, 15))
	assert.Equal(t, int64(-100), PeriodGrowth(daily, 99), "split past the end leaves an empty second half")

	decline := []DailyRecord{{Date: "a", Revenue: 200}, {Date: "b", Revenue: 100}}
	assert.Equal(t, int64(-50), PeriodGrowth(decline, 1))
}

func TestTargetProgress(t *testing.T) {
	progress := TargetProgress(6_479_000, 7_000_000)
	assert.Equal(t, Progress{Percent: 93, Width: 93}, progress)

	over := TargetProgress(9_000_000, 7_000_000)
	assert.Equal(t, int64(129), over.Percent)
	assert.Equal(t, int64(100), over.Width)

	assert.Equal(t, Progress{}, TargetProgress(100, 0))
	assert.Equal(t, Progress{}, TargetProgress(100, -5))
}

func TestBuildKPISummary(t *testing.T) {
	summary := BuildKPISummary(SampleDataset().Daily, DefaultSalesTarget)
	assert.Equal(t, int64(6_479_000), summary.TotalRevenue)
	assert.Equal(t, int64(2_002), summary.TotalOrders)
	assert.Equal(t, int64(55_780), summary.TotalVisitors)
	assert.Equal(t, int64(3236), summary.AvgOrderValue)
	assert.Equal(t, "3.59", summary.ConversionRate)
	assert.Equal(t, int64(40), summary.GrowthPercent)
	assert.Equal(t, int64(93), summary.Target.Percent)
	assert.Equal(t, summary.TotalOrders, summary.Total(DimensionOrders))
	assert.Equal(t, int64(0), summary.Total(Dimension("bogus")))

	again := BuildKPISummary(SampleDataset().Daily, DefaultSalesTarget)
	assert.Equal(t, summary, again)
}

func TestBuildKPISummaryEmptyDataset(t *testing.T) {
	summary := BuildKPISummary(nil, DefaultSalesTarget)
	assert.Equal(t, int64(0), summary.TotalRevenue)
	assert.Equal(t, int64(0), summary.AvgOrderValue)
	assert.Equal(t, "0.00", summary.ConversionRate)
	assert.Equal(t, int64(0), summary.GrowthPercent)
	assert.Equal(t, Progress{}, summary.Target)
}
