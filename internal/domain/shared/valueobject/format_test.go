package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency Currency
		locale   string
		expected string
	}{
		{"us dollars in english", "1234.5", USD, "en-US", "$1,234.50"},
		{"euros in german", "1234.5", EUR, "de-DE", "€1.234,50"},
		{"yen has no minor unit", "1234.5", JPY, "ja", "¥1,235"},
		{"negative amount", "-1234.5", USD, "en", "-$1,234.50"},
		{"yuan suffix template", "1234.5", CNY, "zh-CN", "1,234.50 元"},
		{"french grouping", "1234567.891", EUR, "fr-FR", "€1\u202f234\u202f567,89"},
		{"swiss german override", "1234.5", "CHF", "de-CH", "1’234.50 CHF"},
		{"rupiah in indonesian", "1500000", IDR, "id-ID", "Rp1.500.000,00"},
		{"unknown locale keeps currency marks", "1234.5", "BRL", "", "R$1.234,50"},
		{"unparseable locale keeps currency marks", "1234.5", USD, "@@", "$1,234.50"},
		{"small amount is zero padded", "0.05", USD, "en", "$0.05"},
		{"rounds half away from zero", "2.345", USD, "en", "$2.35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatAmount(decimal.RequireFromString(tt.amount), tt.currency, tt.locale)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "12.50%", FormatPercent(decimal.RequireFromString("12.5"), "en"))
	assert.Equal(t, "12,50%", FormatPercent(decimal.RequireFromString("12.5"), "de-DE"))
	assert.Equal(t, "100.00%", FormatPercent(decimal.NewFromInt(100), ""))
}

func TestMoneyFormat(t *testing.T) {
	m := MustMoney("99.9", GBP)
	assert.Equal(t, "£99.90", m.Format("en-GB"))
	assert.Equal(t, "99.90 GBP", m.String())
}
