package forecast

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateOrdersEmptyInput(t *testing.T) {
	cleaned, report := ValidateOrders(nil)

	assert.Nil(t, cleaned)
	assert.False(t, report.IsValid)
	assert.Contains(t, report.Issues[0], "empty")
}

func TestValidateOrdersMissingField(t *testing.T) {
	records := []Record{{"demand": 10.0}, {"demand": 20.0}}

	cleaned, report := ValidateOrders(records)

	assert.Nil(t, cleaned)
	assert.False(t, report.IsValid)
	assert.Contains(t, report.Issues[0], "orders")
}

func TestValidateOrdersCleansDirtySeries(t *testing.T) {
	// One negative removed, one zero remapped to 1, the rest kept.
	values := []float64{10, 20, 15, -5, 0, 30, 25, 18, 22, 19, 21}
	cleaned, report := ValidateOrders(RecordsFromValues(values))

	require.True(t, report.IsValid)
	assert.Len(t, cleaned, 10)
	assert.Equal(t, 10, report.DataPoints)
	assert.Contains(t, report.Issues, "1 negative values removed")
	assert.Contains(t, report.Issues, "1 zero values adjusted")
	assert.Contains(t, cleaned, 1.0)
	assert.NotContains(t, cleaned, -5.0)
	for _, v := range cleaned {
		assert.GreaterOrEqual(t, v, 1.0)
	}
}

func TestValidateOrdersCountsMissing(t *testing.T) {
	records := []Record{
		{OrdersField: 10.0},
		{OrdersField: "not-a-number"},
		{OrdersField: nil},
		{"other": 1.0},
		{OrdersField: "25"},
		{OrdersField: 30},
		{OrdersField: 12.5},
		{OrdersField: 18.0},
	}

	cleaned, report := ValidateOrders(records)

	require.True(t, report.IsValid)
	assert.Equal(t, 3, report.MissingValues)
	assert.Equal(t, []float64{10, 25, 30, 12.5, 18}, cleaned)
}

func TestValidateOrdersInsufficientPoints(t *testing.T) {
	cleaned, report := ValidateOrders(RecordsFromValues([]float64{10, 20, 30, 40}))

	assert.Len(t, cleaned, 4)
	assert.False(t, report.IsValid)
	assert.Contains(t, report.Issues, "insufficient data points: 4 < 5")
}

func TestValidateOrdersSignificantDataLoss(t *testing.T) {
	// 10 raw rows, 4 dropped: above the 30% loss threshold but still >= 5 left.
	records := []Record{
		{OrdersField: 10.0}, {OrdersField: "x"}, {OrdersField: "y"},
		{OrdersField: -1.0}, {OrdersField: -2.0}, {OrdersField: 20.0},
		{OrdersField: 30.0}, {OrdersField: 40.0}, {OrdersField: 50.0},
		{OrdersField: 60.0},
	}

	cleaned, report := ValidateOrders(records)

	require.True(t, report.IsValid)
	assert.Len(t, cleaned, 6)
	assert.Contains(t, report.Issues, "significant data loss: 6/10")
}

func TestValidateOrdersHighVariability(t *testing.T) {
	// Mostly tiny values with one huge spike push CV well past 2.0.
	values := []float64{1, 1, 1, 1, 1, 1, 1, 1, 1, 1000}
	_, report := ValidateOrders(RecordsFromValues(values))

	require.True(t, report.IsValid)
	found := false
	for _, issue := range report.Issues {
		if strings.HasPrefix(issue, "high variability") {
			found = true
		}
	}
	assert.True(t, found, "expected a high variability issue, got %v", report.Issues)
}

func TestValidateOrdersOutlierDetection(t *testing.T) {
	values := []float64{100, 101, 99, 100, 102, 98, 100, 101, 500}
	_, report := ValidateOrders(RecordsFromValues(values))

	require.True(t, report.IsValid)
	assert.Contains(t, report.Issues, "many outliers detected: 2")
}

func TestValidateOrdersCleanSeriesHasNoIssues(t *testing.T) {
	values := []float64{100, 102, 98, 101, 99, 100, 103, 97}
	cleaned, report := ValidateOrders(RecordsFromValues(values))

	assert.True(t, report.IsValid)
	assert.Empty(t, report.Issues)
	assert.Equal(t, values, cleaned)
	assert.Equal(t, 0, report.MissingValues)
}
