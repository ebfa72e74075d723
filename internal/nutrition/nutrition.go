// Copyright (c) 2026 Platewise. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package nutrition folds the food detector's per-image reports into a meal total.

The detector is an external collaborator: images go in, one report per image
comes out, in the same order. This package checks that contract, sums the
reports and shapes the upload response.

# Architecture

  - Entities: Report, Nutrition, Summary, Result.
  - Aggregation: [Aggregate] and [Sum] are pure functions.
  - Collaborators: [Detector] (HTTP client) and [ImageArchive] (S3).
  - Service: orchestrates one upload request; holds no locks.
*/
package nutrition

import (
	"fmt"
	"math"
	"net/http"
	"slices"

	"github.com/taibuivan/platewise/internal/platform/apperr"
)

// # Domain Errors

var (
	// ErrAggregationMismatch is returned when detector output is not
	// index-aligned with the submitted images.
	ErrAggregationMismatch = apperr.Upstream("AGGREGATION_MISMATCH",
		"Detector output does not match the uploaded images", http.StatusBadGateway, nil)

	// ErrDetectorContract is returned when a report carries negative or
	// non-finite numbers, or cannot be decoded.
	ErrDetectorContract = apperr.Upstream("DETECTOR_CONTRACT",
		"Detector returned an invalid report", http.StatusBadGateway, nil)
)

func mismatch(format string, args ...any) error {
	failure := *ErrAggregationMismatch
	failure.Cause = fmt.Errorf(format, args...)
	return &failure
}

func contractViolation(format string, args ...any) error {
	failure := *ErrDetectorContract
	failure.Cause = fmt.Errorf(format, args...)
	return &failure
}

// # Domain Entities

// Macros are grams. JSON names follow the detector's wire format.
type Macros struct {
	Carbs   float64 `json:"Carbs"`
	Protein float64 `json:"Protein"`
	Fat     float64 `json:"Fat"`
	Fiber   float64 `json:"Fiber"`
}

// Micros are milligrams.
type Micros struct {
	Potassium float64 `json:"Potassium"`
	VitaminC  float64 `json:"Vitamin C"`
}

// Nutrition is the breakdown of one image. A missing nutrient is 0, never null.
type Nutrition struct {
	TotalCalories float64 `json:"total_calories"`
	Macros        Macros  `json:"macros"`
	Micros        Micros  `json:"micros"`
}

// Report is the detector's output for one image.
type Report struct {
	Filename   string
	Detections []string
	Nutrition  Nutrition
}

// Summary is the derived total of a meal. It is never persisted.
type Summary struct {
	Calories float64 `json:"calories"`
	Macros   Macros  `json:"macros"`
	Micros   Micros  `json:"micros"`
}

// DetectionEntry is one element of the response's "detections" array.
type DetectionEntry struct {
	Filename   string   `json:"filename"`
	Detections []string `json:"detections"`
}

// NutritionEntry is one element of the response's "nutrition" array.
type NutritionEntry struct {
	Filename  string    `json:"filename"`
	Nutrition Nutrition `json:"nutrition"`
}

// Result is the upload response: per-image passthrough plus the total.
type Result struct {
	Detections []DetectionEntry `json:"detections"`
	Nutrition  []NutritionEntry `json:"nutrition"`
	Total      Summary          `json:"total_nutrition"`
}

// # Aggregation

/*
Aggregate checks detector output against the submitted filenames and folds it
into a [Result].

Description: reports must match submitted one-to-one, by index and by
filename. A shorter, longer or reordered report list is an
ErrAggregationMismatch; it is never truncated to the common prefix.

Parameters:
  - submitted: []string (filenames in upload order)
  - reports: []Report (detector output, same order)

Returns:
  - *Result: Passthrough in input order plus [Sum] of the reports
  - error: ErrAggregationMismatch or ErrDetectorContract
*/
func Aggregate(submitted []string, reports []Report) (*Result, error) {
	if len(reports) != len(submitted) {
		return nil, mismatch("submitted %d images, detector returned %d reports", len(submitted), len(reports))
	}

	result := &Result{
		Detections: make([]DetectionEntry, 0, len(reports)),
		Nutrition:  make([]NutritionEntry, 0, len(reports)),
	}

	for index, report := range reports {
		if report.Filename != submitted[index] {
			return nil, mismatch("report %d is for %q, expected %q", index, report.Filename, submitted[index])
		}
		if err := checkReport(report); err != nil {
			return nil, err
		}

		detections := report.Detections
		if detections == nil {
			detections = []string{}
		}

		result.Detections = append(result.Detections, DetectionEntry{Filename: report.Filename, Detections: detections})
		result.Nutrition = append(result.Nutrition, NutritionEntry{Filename: report.Filename, Nutrition: report.Nutrition})
	}

	result.Total = Sum(reports)
	if err := checkTotal(result.Total); err != nil {
		return nil, err
	}
	return result, nil
}

// Sum adds every report field-wise. Each field is summed over its values in
// ascending order with a compensated sum, so the total does not depend on
// report order and small amounts are not absorbed by large ones. An empty
// input yields all zeros.
func Sum(reports []Report) Summary {
	field := func(pick func(Nutrition) float64) float64 {
		values := make([]float64, len(reports))
		for index, report := range reports {
			values[index] = pick(report.Nutrition)
		}
		slices.Sort(values)
		return compensatedSum(values)
	}

	return Summary{
		Calories: field(func(n Nutrition) float64 { return n.TotalCalories }),
		Macros: Macros{
			Carbs:   field(func(n Nutrition) float64 { return n.Macros.Carbs }),
			Protein: field(func(n Nutrition) float64 { return n.Macros.Protein }),
			Fat:     field(func(n Nutrition) float64 { return n.Macros.Fat }),
			Fiber:   field(func(n Nutrition) float64 { return n.Macros.Fiber }),
		},
		Micros: Micros{
			Potassium: field(func(n Nutrition) float64 { return n.Micros.Potassium }),
			VitaminC:  field(func(n Nutrition) float64 { return n.Micros.VitaminC }),
		},
	}
}

// compensatedSum is Neumaier's summation. An overflow returns +Inf.
func compensatedSum(values []float64) float64 {
	var sum, compensation float64
	for _, value := range values {
		next := sum + value
		if math.IsInf(next, 0) {
			return next
		}
		if math.Abs(sum) >= math.Abs(value) {
			compensation += (sum - next) + value
		} else {
			compensation += (value - next) + sum
		}
		sum = next
	}
	return sum + compensation
}

// checkTotal rejects a total that overflowed float64.
func checkTotal(total Summary) error {
	for _, value := range []float64{
		total.Calories,
		total.Macros.Carbs, total.Macros.Protein, total.Macros.Fat, total.Macros.Fiber,
		total.Micros.Potassium, total.Micros.VitaminC,
	} {
		if math.IsInf(value, 0) {
			return contractViolation("meal total overflows: %v", value)
		}
	}
	return nil
}

// checkReport enforces that every number is finite and non-negative.
func checkReport(report Report) error {
	n := report.Nutrition
	fields := []struct {
		name  string
		value float64
	}{
		{"total_calories", n.TotalCalories},
		{"macros.Carbs", n.Macros.Carbs},
		{"macros.Protein", n.Macros.Protein},
		{"macros.Fat", n.Macros.Fat},
		{"macros.Fiber", n.Macros.Fiber},
		{"micros.Potassium", n.Micros.Potassium},
		{"micros.Vitamin C", n.Micros.VitaminC},
	}

	for _, field := range fields {
		if math.IsNaN(field.value) || math.IsInf(field.value, 0) || field.value < 0 {
			return contractViolation("report for %q has invalid %s: %v", report.Filename, field.name, field.value)
		}
	}
	return nil
}
