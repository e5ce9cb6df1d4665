package utils

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCountryPrefix is the Mozambican dialing prefix.
const DefaultCountryPrefix = "258"

var phoneReplacer = strings.NewReplacer(" ", "", "\t", "", "-", "", "(", "", ")", "", "+", "")

// NormalizePhone converts a phone number to its international form without a plus sign.
// "0855075735" and "+258 85 507 5735" both become "258855075735".
func NormalizePhone(phone, countryPrefix string) string {
	if countryPrefix == "" {
		countryPrefix = DefaultCountryPrefix
	}

	normalized := phoneReplacer.Replace(strings.TrimSpace(phone))
	if normalized == "" {
		return ""
	}

	if !strings.HasPrefix(normalized, countryPrefix) {
		normalized = strings.TrimPrefix(normalized, "0")
		normalized = countryPrefix + normalized
	}

	return normalized
}

var portugueseMonths = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// FormatLongDate formats a date as "02 de outubro de 2025".
func FormatLongDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s de %d", t.Day(), portugueseMonths[t.Month()-1], t.Year())
}

// FormatShortDate formats a date as "02/10/2025".
func FormatShortDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// FormatMoney formats an amount in meticais with space-grouped thousands,
// a comma decimal separator and at most two decimals: "1 500,5 MT".
func FormatMoney(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	negative := rounded.IsNegative()
	rounded = rounded.Abs()

	intPart := rounded.Truncate(0)
	fracPart := rounded.Sub(intPart)

	digits := intPart.String()
	var grouped strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(' ')
		}
		grouped.WriteRune(r)
	}

	result := grouped.String()
	if !fracPart.IsZero() {
		frac := strings.TrimRight(fracPart.StringFixed(2)[2:], "0")
		result += "," + frac
	}
	if negative {
		result = "-" + result
	}

	return result + " MT"
}

// DaysBetweenCeil returns the number of started days from 'from' to 'to', rounded up.
// It returns 0 when to is not after from.
func DaysBetweenCeil(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

// DaysBetweenFloor returns the number of whole days elapsed from 'from' to 'to'.
func DaysBetweenFloor(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// ParseDate accepts "2006-01-02" or RFC3339 timestamps.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", value)
	}
	return t, nil
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
