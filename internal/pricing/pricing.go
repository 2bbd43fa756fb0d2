package pricing

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"time"

	"pricegov/internal/models"
)

const (
	DefaultCompliantMarkupPct = 5.0
	DefaultCeilingMarkupPct   = 10.0
)

// Policy holds the two markup thresholds: the compliance band applied to
// published prices and the hard ceiling used by price validation.
type Policy struct {
	CompliantMarkupPct float64
	CeilingMarkupPct   float64
}

func DefaultPolicy() Policy {
	return Policy{CompliantMarkupPct: DefaultCompliantMarkupPct, CeilingMarkupPct: DefaultCeilingMarkupPct}
}

// Evaluation is the outcome of checking a retailer price against a reference.
type Evaluation struct {
	Price                 models.Money
	Reference             models.Money
	Markup                float64
	Severity              string
	Compliant             bool
	AllowedMax            models.Money
	WithinCeiling         bool
	AdminApprovalRequired bool
}

// Markup returns the percentage over the reference price rounded to two decimals.
func Markup(price, reference models.Money) float64 {
	if reference <= 0 {
		return 0
	}
	m := math.Round(float64(price-reference)/float64(reference)*100*100) / 100
	if m == 0 {
		return 0
	}
	return m
}

// compareMarkup reports whether the exact markup of price over reference is
// below (-1), at (0) or above (+1) pct percent.
func compareMarkup(price, reference models.Money, pct float64) int {
	if reference <= 0 {
		return -1
	}
	limit := new(big.Rat).SetFloat64(pct)
	if limit == nil {
		return 1
	}
	limit.Mul(limit, new(big.Rat).SetInt64(int64(reference)))
	diff := new(big.Rat).SetInt64(int64(price-reference) * 100)
	return diff.Cmp(limit)
}

// Severity classifies the exact markup of price over reference. Selling below
// the reference is treated as severe, the same as gross overpricing.
func Severity(price, reference models.Money) string {
	switch {
	case reference > 0 && price < reference:
		return models.SeveritySevere
	case compareMarkup(price, reference, 1) <= 0:
		return models.SeverityNone
	case compareMarkup(price, reference, 3) <= 0:
		return models.SeverityMinor
	case compareMarkup(price, reference, 5) <= 0:
		return models.SeverityModerate
	case compareMarkup(price, reference, 10) <= 0:
		return models.SeverityMajor
	default:
		return models.SeveritySevere
	}
}

// AllowedMax is the highest whole-paise price within pct percent of the reference.
func AllowedMax(reference models.Money, pct float64) models.Money {
	limit := new(big.Rat).SetFloat64(pct)
	if limit == nil || reference <= 0 {
		return reference
	}
	limit.Add(limit, big.NewRat(100, 1))
	limit.Mul(limit, big.NewRat(int64(reference), 100))
	return models.Money(new(big.Int).Quo(limit.Num(), limit.Denom()).Int64())
}

// Evaluate classifies the exact markup; the rounded Markup is for display and storage only.
func (p Policy) Evaluate(price, reference models.Money) Evaluation {
	sev := Severity(price, reference)
	return Evaluation{
		Price:                 price,
		Reference:             reference,
		Markup:                Markup(price, reference),
		Severity:              sev,
		Compliant:             price >= reference && compareMarkup(price, reference, p.CompliantMarkupPct) <= 0,
		AllowedMax:            AllowedMax(reference, p.CeilingMarkupPct),
		WithinCeiling:         compareMarkup(price, reference, p.CeilingMarkupPct) <= 0,
		AdminApprovalRequired: sev == models.SeverityMajor || sev == models.SeveritySevere,
	}
}

// PublishReason is stored on a published price.
func (e Evaluation) PublishReason() string {
	return fmt.Sprintf("Markup: %.2f%% (Reference: ₹%s)", e.Markup, e.Reference)
}

// ValidationReason explains a validation verdict against the ceiling.
func (p Policy) ValidationReason(e Evaluation) string {
	if !e.WithinCeiling {
		return fmt.Sprintf("Price exceeds maximum allowed markup of %s%%. Reference price: %s, Maximum allowed: %s, Your price: %s",
			formatPct(p.CeilingMarkupPct), e.Reference, e.AllowedMax, e.Price)
	}
	return fmt.Sprintf("Price is compliant. Markup: %.2f%%", e.Markup)
}

func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// AlertSeverity maps a violation severity onto the alert scale. The second
// result is false when no alert is warranted.
func AlertSeverity(violation string) (string, bool) {
	switch violation {
	case models.SeverityMinor:
		return models.AlertLow, true
	case models.SeverityModerate:
		return models.AlertMedium, true
	case models.SeverityMajor:
		return models.AlertHigh, true
	case models.SeveritySevere:
		return models.AlertCritical, true
	}
	return "", false
}

// AlertText builds the title and message of a markup alert.
func AlertText(e Evaluation, retailerName, skuName string) (title, message string) {
	direction := "above"
	markup := e.Markup
	if e.Price < e.Reference {
		direction = "below"
		markup = math.Abs(markup)
	}
	lead := fmt.Sprintf("Retailer %s set price %.2f%% %s reference price for %s.", retailerName, markup, direction, skuName)
	switch e.Severity {
	case models.SeverityMinor:
		return "Minor Price Deviation - " + skuName,
			lead + " This is within acceptable limits but should be monitored."
	case models.SeverityModerate:
		return "Moderate Price Deviation - " + skuName,
			lead + " This exceeds recommended limits and requires attention."
	case models.SeverityMajor:
		return "Major Price Violation - " + skuName,
			lead + " This is a significant violation that requires immediate action."
	default:
		return "Severe Price Violation - " + skuName,
			lead + " This is a severe violation that requires immediate intervention."
	}
}

// Period is a half-open validity window; a nil Until is open ended.
type Period struct {
	From  time.Time
	Until *time.Time
}

// Overlaps reports whether two periods share any instant.
func Overlaps(a, b Period) bool {
	if a.Until != nil && !a.Until.After(b.From) {
		return false
	}
	if b.Until != nil && !a.From.Before(*b.Until) {
		return false
	}
	return true
}

// DifferencePercentage is the relative gap between a reported and a reference price.
func DifferencePercentage(reported, reference models.Money) (models.Money, float64) {
	diff := reported - reference
	if reference <= 0 {
		return diff, 0
	}
	return diff, math.Round(float64(diff)/float64(reference)*100*100) / 100
}
