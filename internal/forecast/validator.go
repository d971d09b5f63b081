package forecast

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// OrdersField is the record field the validator reads demand observations from.
const OrdersField = "orders"

// Record is a single row of order history as received from callers,
// typically decoded straight from JSON.
type Record map[string]any

// DataQualityReport summarizes the outcome of validating one input series.
// Issues are advisory unless IsValid is false.
type DataQualityReport struct {
	IsValid       bool     `json:"is_valid"`
	Issues        []string `json:"issues"`
	DataPoints    int      `json:"data_points"`
	MissingValues int      `json:"missing_values"`
}

// RecordsFromValues wraps raw demand values in the record shape ValidateOrders
// expects. Convenient for callers that already hold a plain series.
func RecordsFromValues(values []float64) []Record {
	records := make([]Record, len(values))
	for i, v := range values {
		records[i] = Record{OrdersField: v}
	}
	return records
}

// ValidateOrders cleans the raw order history and scores its quality.
//
// The checks run in a fixed order: presence of data and the orders field,
// numeric coercion (non-numeric entries count as missing and are dropped),
// removal of negative values, remapping exact zeros to 1, the minimum-size
// floor, and finally variability and outlier diagnostics. Only an empty or
// column-less input and the <5 point floor invalidate the series; every
// other finding is recorded as an advisory issue.
func ValidateOrders(records []Record) ([]float64, *DataQualityReport) {
	report := &DataQualityReport{IsValid: true, Issues: []string{}}

	if len(records) == 0 {
		report.IsValid = false
		report.Issues = append(report.Issues, "empty order history")
		return nil, report
	}

	hasColumn := false
	for _, rec := range records {
		if _, ok := rec[OrdersField]; ok {
			hasColumn = true
			break
		}
	}
	if !hasColumn {
		report.IsValid = false
		report.Issues = append(report.Issues, fmt.Sprintf("missing %q field", OrdersField))
		return nil, report
	}

	originalLength := len(records)
	values := make([]float64, 0, originalLength)
	missing := 0
	for _, rec := range records {
		v, ok := coerceNumeric(rec[OrdersField])
		if !ok {
			missing++
			continue
		}
		values = append(values, v)
	}
	report.MissingValues = missing

	negatives := 0
	kept := values[:0]
	for _, v := range values {
		if v < 0 {
			negatives++
			continue
		}
		kept = append(kept, v)
	}
	values = kept
	if negatives > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d negative values removed", negatives))
	}

	// Zero demand is treated as a near-zero positive observation so that
	// multiplicative and log-based models stay stable downstream.
	zeros := 0
	for i, v := range values {
		if v == 0 {
			zeros++
			values[i] = 1
		}
	}
	if zeros > 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("%d zero values adjusted", zeros))
	}

	finalLength := len(values)
	report.DataPoints = finalLength

	if finalLength < 5 {
		report.IsValid = false
		report.Issues = append(report.Issues, fmt.Sprintf("insufficient data points: %d < 5", finalLength))
	} else if float64(finalLength) < float64(originalLength)*0.7 {
		report.Issues = append(report.Issues, fmt.Sprintf("significant data loss: %d/%d", finalLength, originalLength))
	}

	if finalLength >= 5 {
		m := mean(values)
		cv := math.Inf(1)
		if m > 0 {
			cv = stdDev(values) / m
		}
		if cv > 2.0 {
			report.Issues = append(report.Issues, fmt.Sprintf("high variability detected (CV: %.2f)", cv))
		}

		q1 := quantile(values, 0.25)
		q3 := quantile(values, 0.75)
		iqr := q3 - q1
		outliers := 0
		for _, v := range values {
			if v < q1-1.5*iqr || v > q3+1.5*iqr {
				outliers++
			}
		}
		if float64(outliers) > float64(finalLength)*0.1 {
			report.Issues = append(report.Issues, fmt.Sprintf("many outliers detected: %d", outliers))
		}
	}

	return values, report
}

// coerceNumeric converts a raw record value to a float64 observation.
// Anything that is not cleanly numeric is treated as missing.
func coerceNumeric(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return coerceNumeric(float64(v))
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return coerceNumeric(f)
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return coerceNumeric(f)
	default:
		return 0, false
	}
}
