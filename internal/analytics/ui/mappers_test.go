package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salesdash/salesdash/internal/analytics"
)

func sampleSummary() analytics.KPISummary {
	d := analytics.SampleDataset()
	return analytics.BuildKPISummary(d.Daily, analytics.DefaultSalesTarget)
}

func TestBuildCards(t *testing.T) {
	cards := BuildCards(sampleSummary())
	require.Len(t, cards, 3)

	assert.Equal(t, "6.48M\u00a0₽", cards[0].Value)
	assert.Equal(t, "+40%", cards[0].Badge)
	assert.True(t, cards[0].BadgePositive)

	assert.Equal(t, analytics.FormatGrouped(2002), cards[1].Value)
	assert.Equal(t, "Средний чек: "+analytics.FormatRoubles(3236), cards[1].Detail)
	assert.Equal(t, "Конверсия: 3.59%", cards[2].Detail)
}

func TestBuildCardsNegativeAndFlatGrowth(t *testing.T) {
	cards := BuildCards(analytics.KPISummary{GrowthPercent: -12})
	assert.Equal(t, "-12%", cards[0].Badge)
	assert.False(t, cards[0].BadgePositive)

	cards = BuildCards(analytics.KPISummary{})
	assert.Equal(t, "0%", cards[0].Badge)
	assert.False(t, cards[0].BadgePositive)
}

func TestBuildTargetCard(t *testing.T) {
	card := BuildTargetCard(sampleSummary())
	assert.Equal(t, int64(93), card.Percent)
	assert.Equal(t, int64(93), card.Width)
	assert.Equal(t, analytics.FormatRoubles(7_000_000), card.Target)
}

func TestBuildTabsMarksExactlyOneActive(t *testing.T) {
	summary := sampleSummary()
	for _, d := range analytics.Dimensions() {
		tabs := BuildTabs(summary, d, "/dashboard")
		require.Len(t, tabs, 3)
		active := 0
		for _, tab := range tabs {
			if tab.Active {
				active++
				assert.Equal(t, d, tab.Dimension)
			}
			assert.Equal(t, "/dashboard?metric="+tab.Dimension.String(), tab.Href)
		}
		assert.Equal(t, 1, active)
	}

	tabs := BuildTabs(summary, analytics.DimensionOrders, "/dashboard")
	assert.Equal(t, "Выручка", tabs[0].Label)
	assert.Equal(t, "6.48M\u00a0₽", tabs[0].Value)
	assert.Equal(t, analytics.FormatGrouped(55_780), tabs[2].Value)
}

func TestToDailyPointsFollowsDimension(t *testing.T) {
	daily := analytics.SampleDataset().Daily
	points := ToDailyPoints(daily, analytics.DimensionOrders)
	require.Len(t, points, 30)
	assert.Equal(t, int64(42), points[0].Value)
	assert.Equal(t, "01.12: 42 шт", points[0].Tooltip)

	points = ToDailyPoints(daily, analytics.DimensionVisitors)
	assert.Equal(t, int64(1250), points[0].Value)
	assert.Empty(t, ToDailyPoints(nil, analytics.DimensionRevenue))
}

func TestToCategorySlices(t *testing.T) {
	slices := ToCategorySlices(analytics.SampleDataset().Categories)
	require.Len(t, slices, 5)
	assert.Equal(t, "36.0", slices[0].Share)
	assert.Equal(t, "Электроника: 2.85M\u00a0₽", slices[0].Tooltip)
	assert.Equal(t, "#2563eb", slices[0].Color)
}

func TestToProductRows(t *testing.T) {
	rows := ToProductRows(analytics.SampleDataset().Products)
	require.Len(t, rows, 10)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "1245k", rows[0].Label)
	assert.True(t, strings.HasSuffix(rows[0].Tooltip, "(415 шт)"))
}

func TestToFunnelRows(t *testing.T) {
	rows := ToFunnelRows(analytics.SampleDataset().Funnel)
	require.Len(t, rows, 5)
	got := make([]string, 0, len(rows))
	for _, r := range rows {
		got = append(got, r.Conversion)
	}
	assert.Equal(t, []string{"100.0", "60.0", "40.0", "40.0", "38.0"}, got)
	assert.True(t, strings.HasSuffix(rows[1].Tooltip, "(60.0% от пред.)"))
}

func TestToTrafficRows(t *testing.T) {
	rows := ToTrafficRows(analytics.SampleDataset().Traffic)
	require.Len(t, rows, 5)
	assert.Equal(t, "35.1", rows[0].Share)
	assert.True(t, strings.HasSuffix(rows[0].Tooltip, "(35.1%)"))
}

func TestToRegionRows(t *testing.T) {
	rows := ToRegionRows(analytics.SampleDataset().Regions)
	require.Len(t, rows, 8)
	assert.Equal(t, "3.3M", rows[0].Label)
	assert.True(t, strings.HasSuffix(rows[0].Tooltip, "1024 шт"))
}
