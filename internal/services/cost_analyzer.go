package services

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Vendor describes one logistics carrier.
type Vendor struct {
	Name             string          `json:"vendor"`
	CostPerKm        decimal.Decimal `json:"cost_per_km"`
	EmissionPerKm    decimal.Decimal `json:"emission_per_km"`
	ReliabilityScore decimal.Decimal `json:"reliability_score"`
	DeliverySpeed    string          `json:"delivery_speed"`
	ServiceQuality   decimal.Decimal `json:"service_quality"`
	MaxCapacityKg    decimal.Decimal `json:"max_capacity_kg"`
}

// VendorAnalysis is one vendor's scored line in a comparison.
type VendorAnalysis struct {
	Vendor              Vendor          `json:"vendor"`
	TotalCost           decimal.Decimal `json:"total_cost"`
	CO2Emission         decimal.Decimal `json:"co2_emission"`
	CostEfficiency      decimal.Decimal `json:"cost_efficiency"`
	EcoEfficiency       decimal.Decimal `json:"eco_efficiency"`
	ServiceScore        decimal.Decimal `json:"service_score"`
	CompositeScore      decimal.Decimal `json:"composite_score"`
	WeightFeasible      bool            `json:"weight_feasible"`
	OverweightSurcharge bool            `json:"overweight_surcharge"`
	Rank                int             `json:"rank"`
}

// VendorComparison is the result of comparing all vendors for a shipment.
type VendorComparison struct {
	BestVendor string           `json:"best_vendor"`
	BestPrice  decimal.Decimal  `json:"best_price"`
	Vendors    []VendorAnalysis `json:"vendors"`
}

// SustainabilityReport summarizes the fleet's emission profile for a route.
type SustainabilityReport struct {
	RouteDistanceKm        float64         `json:"total_route_distance"`
	AverageCO2Emission     decimal.Decimal `json:"average_co2_emission"`
	BestEcoVendor          string          `json:"best_eco_vendor"`
	WorstEcoVendor         string          `json:"worst_eco_vendor"`
	LowCarbonOptions       int             `json:"low_carbon_options"`
	MediumCarbonOptions    int             `json:"medium_carbon_options"`
	HighCarbonOptions      int             `json:"high_carbon_options"`
	CarbonSavingsPotential decimal.Decimal `json:"carbon_savings_potential"`
	EcoRecommendations     []string        `json:"eco_recommendations"`
}

// Composite score weights per optimization priority.
var priorityWeights = map[string]map[string]decimal.Decimal{
	"cost":     {"cost": dec(0.6), "service": dec(0.2), "eco": dec(0.1), "reliability": dec(0.1)},
	"speed":    {"service": dec(0.4), "reliability": dec(0.3), "cost": dec(0.2), "eco": dec(0.1)},
	"eco":      {"eco": dec(0.5), "service": dec(0.2), "reliability": dec(0.2), "cost": dec(0.1)},
	"balanced": {"cost": dec(0.3), "service": dec(0.25), "eco": dec(0.25), "reliability": dec(0.2)},
}

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// CostAnalyzer compares logistics vendors on cost, service, and emissions.
// Vendor data comes from a CSV file when configured, otherwise a built-in
// sample fleet.
type CostAnalyzer struct {
	vendors []Vendor
	logger  *logrus.Logger
}

// NewCostAnalyzer loads vendor data from the given file, falling back to
// the sample fleet when the file is missing or malformed.
func NewCostAnalyzer(vendorFile string, logger *logrus.Logger) *CostAnalyzer {
	ca := &CostAnalyzer{logger: logger}

	if vendorFile != "" {
		vendors, err := loadVendorCSV(vendorFile)
		if err != nil {
			logger.WithError(err).WithField("file", vendorFile).Warn("failed to load vendor data, using sample fleet")
		} else {
			ca.vendors = vendors
		}
	}
	if len(ca.vendors) == 0 {
		ca.vendors = sampleVendors()
	}

	logger.WithField("vendors", len(ca.vendors)).Info("cost analyzer initialized")
	return ca
}

// Vendors returns the loaded vendor fleet.
func (ca *CostAnalyzer) Vendors() []Vendor {
	out := make([]Vendor, len(ca.vendors))
	copy(out, ca.vendors)
	return out
}

// CompareVendors scores every vendor for a shipment of weightKg over
// distanceKm and ranks them under the given priority ("cost", "speed",
// "eco", or "balanced"). When no vendor can carry the weight, all vendors
// are kept with a 25% overweight surcharge.
func (ca *CostAnalyzer) CompareVendors(distanceKm, weightKg float64, priority string) *VendorComparison {
	if distanceKm <= 0 {
		ca.logger.Warn("invalid route distance, using default")
		distanceKm = 1000
	}
	if weightKg <= 0 {
		weightKg = 1000
	}

	distance := decimal.NewFromFloat(distanceKm)
	weight := decimal.NewFromFloat(weightKg)

	analyses := make([]VendorAnalysis, 0, len(ca.vendors))
	anyFeasible := false
	for _, v := range ca.vendors {
		feasible := v.MaxCapacityKg.GreaterThanOrEqual(weight)
		anyFeasible = anyFeasible || feasible
		analyses = append(analyses, VendorAnalysis{
			Vendor:         v,
			TotalCost:      v.CostPerKm.Mul(distance),
			CO2Emission:    v.EmissionPerKm.Mul(distance),
			ServiceScore:   v.ReliabilityScore.Add(v.ServiceQuality).Div(dec(2)),
			WeightFeasible: feasible,
		})
	}

	if anyFeasible {
		kept := analyses[:0]
		for _, a := range analyses {
			if a.WeightFeasible {
				kept = append(kept, a)
			}
		}
		analyses = kept
	} else {
		ca.logger.WithField("weight_kg", weightKg).Warn("no vendor can carry cargo, applying overweight surcharge")
		surcharge := dec(1.25)
		for i := range analyses {
			analyses[i].TotalCost = analyses[i].TotalCost.Mul(surcharge)
			analyses[i].OverweightSurcharge = true
		}
	}

	scoreEfficiencies(analyses)

	weights, ok := priorityWeights[priority]
	if !ok {
		weights = priorityWeights["balanced"]
	}
	for i := range analyses {
		a := &analyses[i]
		a.CompositeScore = weights["cost"].Mul(a.CostEfficiency).
			Add(weights["service"].Mul(a.ServiceScore)).
			Add(weights["eco"].Mul(a.EcoEfficiency)).
			Add(weights["reliability"].Mul(a.Vendor.ReliabilityScore))
	}

	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].CompositeScore.GreaterThan(analyses[j].CompositeScore)
	})
	for i := range analyses {
		analyses[i].Rank = i + 1
	}

	best := analyses[0]
	ca.logger.WithFields(logrus.Fields{
		"vendor": best.Vendor.Name,
		"price":  best.TotalCost,
	}).Info("best vendor selected")

	return &VendorComparison{
		BestVendor: best.Vendor.Name,
		BestPrice:  best.TotalCost,
		Vendors:    analyses,
	}
}

// GetSustainabilityReport analyzes the fleet's emission profile for a route.
func (ca *CostAnalyzer) GetSustainabilityReport(distanceKm float64) *SustainabilityReport {
	if distanceKm <= 0 {
		distanceKm = 1000
	}
	distance := decimal.NewFromFloat(distanceKm)

	lowThreshold := dec(0.4)
	highThreshold := dec(0.7)

	report := &SustainabilityReport{RouteDistanceKm: distanceKm}
	var totalEmission, minEmission, maxEmission decimal.Decimal
	for i, v := range ca.vendors {
		emission := v.EmissionPerKm.Mul(distance)
		totalEmission = totalEmission.Add(emission)

		if i == 0 || emission.LessThan(minEmission) {
			minEmission = emission
			report.BestEcoVendor = v.Name
		}
		if i == 0 || emission.GreaterThan(maxEmission) {
			maxEmission = emission
			report.WorstEcoVendor = v.Name
		}

		switch {
		case v.EmissionPerKm.LessThan(lowThreshold):
			report.LowCarbonOptions++
		case v.EmissionPerKm.LessThan(highThreshold):
			report.MediumCarbonOptions++
		default:
			report.HighCarbonOptions++
		}
	}

	count := decimal.NewFromInt(int64(len(ca.vendors)))
	report.AverageCO2Emission = totalEmission.Div(count)
	report.CarbonSavingsPotential = maxEmission.Sub(minEmission)

	if minEmission.LessThan(report.AverageCO2Emission.Mul(dec(0.7))) {
		report.EcoRecommendations = append(report.EcoRecommendations,
			fmt.Sprintf("Choose %s for 30%%+ emission reduction", report.BestEcoVendor))
	}
	if report.LowCarbonOptions > 1 {
		report.EcoRecommendations = append(report.EcoRecommendations,
			fmt.Sprintf("%d low-carbon vendors available", report.LowCarbonOptions))
	}
	if len(report.EcoRecommendations) == 0 {
		report.EcoRecommendations = append(report.EcoRecommendations,
			"Consider rail or consolidated shipping for better eco-efficiency")
	}
	return report
}

// scoreEfficiencies fills the 0-10 cost and eco efficiency scores, inverted
// so that cheaper and cleaner vendors score higher.
func scoreEfficiencies(analyses []VendorAnalysis) {
	if len(analyses) == 0 {
		return
	}

	minCost, maxCost := analyses[0].TotalCost, analyses[0].TotalCost
	minEco, maxEco := analyses[0].CO2Emission, analyses[0].CO2Emission
	for _, a := range analyses[1:] {
		if a.TotalCost.LessThan(minCost) {
			minCost = a.TotalCost
		}
		if a.TotalCost.GreaterThan(maxCost) {
			maxCost = a.TotalCost
		}
		if a.CO2Emission.LessThan(minEco) {
			minEco = a.CO2Emission
		}
		if a.CO2Emission.GreaterThan(maxEco) {
			maxEco = a.CO2Emission
		}
	}

	costRange := maxCost.Sub(minCost)
	ecoRange := maxEco.Sub(minEco)
	ten := dec(10)
	for i := range analyses {
		if costRange.IsZero() {
			analyses[i].CostEfficiency = ten
		} else {
			analyses[i].CostEfficiency = maxCost.Sub(analyses[i].TotalCost).Div(costRange).Mul(ten)
		}
		if ecoRange.IsZero() {
			analyses[i].EcoEfficiency = ten
		} else {
			analyses[i].EcoEfficiency = maxEco.Sub(analyses[i].CO2Emission).Div(ecoRange).Mul(ten)
		}
	}
}

// loadVendorCSV reads vendor records from a CSV file with a header row of
// vendor, cost_per_km, emission_per_km, reliability_score and optional
// delivery_speed, service_quality, max_capacity_kg columns.
func loadVendorCSV(path string) ([]Vendor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse vendor CSV: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("vendor CSV %s has no data rows", path)
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[name] = i
	}
	for _, required := range []string{"vendor", "cost_per_km", "emission_per_km", "reliability_score"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("vendor CSV missing required column %q", required)
		}
	}

	field := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	var vendors []Vendor
	for _, row := range rows[1:] {
		cost, err1 := decimal.NewFromString(field(row, "cost_per_km"))
		emission, err2 := decimal.NewFromString(field(row, "emission_per_km"))
		reliability, err3 := decimal.NewFromString(field(row, "reliability_score"))
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}

		v := Vendor{
			Name:             field(row, "vendor"),
			CostPerKm:        cost,
			EmissionPerKm:    emission,
			ReliabilityScore: reliability,
			DeliverySpeed:    "Standard",
			ServiceQuality:   dec(8.0),
			MaxCapacityKg:    dec(5000),
		}
		if s := field(row, "delivery_speed"); s != "" {
			v.DeliverySpeed = s
		}
		if s := field(row, "service_quality"); s != "" {
			if q, err := decimal.NewFromString(s); err == nil {
				v.ServiceQuality = q
			}
		}
		if s := field(row, "max_capacity_kg"); s != "" {
			if c, err := decimal.NewFromString(s); err == nil {
				v.MaxCapacityKg = c
			}
		}
		vendors = append(vendors, v)
	}
	if len(vendors) == 0 {
		return nil, fmt.Errorf("vendor CSV %s has no valid rows", path)
	}
	return vendors, nil
}

// sampleVendors is the built-in fleet used when no vendor file is available.
func sampleVendors() []Vendor {
	mk := func(name string, cost, emission, reliability float64, speed string, quality, capacity float64) Vendor {
		return Vendor{
			Name:             name,
			CostPerKm:        dec(cost),
			EmissionPerKm:    dec(emission),
			ReliabilityScore: dec(reliability),
			DeliverySpeed:    speed,
			ServiceQuality:   dec(quality),
			MaxCapacityKg:    dec(capacity),
		}
	}
	return []Vendor{
		mk("LogiTech Express", 2.5, 0.8, 8.5, "Standard", 8.0, 5000),
		mk("GreenShip Co", 3.2, 0.3, 9.2, "Eco", 9.0, 3000),
		mk("FastTrack Logistics", 2.8, 0.6, 7.8, "Fast", 7.5, 8000),
		mk("EcoFreight Solutions", 3.5, 0.2, 9.5, "Eco+", 9.2, 4000),
		mk("SpeedyDelivery", 2.3, 0.9, 7.2, "Express", 6.8, 6000),
		mk("CargoMaster", 2.9, 0.7, 8.1, "Standard", 8.3, 7000),
		mk("BlueOcean Shipping", 2.7, 0.4, 8.8, "Eco", 8.7, 4500),
		mk("RailLink Express", 2.1, 0.15, 9.0, "Rail", 8.9, 10000),
	}
}
