package valueobject

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// separators holds the decimal and grouping marks for a locale
type separators struct {
	decimal  string
	thousand string
}

const narrowNoBreakSpace = "\u202f"

var (
	dotComma   = separators{decimal: ".", thousand: ","}
	commaDot   = separators{decimal: ",", thousand: "."}
	commaSpace = separators{decimal: ",", thousand: narrowNoBreakSpace}
)

// Locale-specific overrides are checked before the base language.
var regionSeparators = map[string]separators{
	"de-CH": {decimal: ".", thousand: "’"},
}

var languageSeparators = map[string]separators{
	"en": dotComma,
	"zh": dotComma,
	"ja": dotComma,
	"ko": dotComma,
	"th": dotComma,
	"ms": dotComma,
	"de": commaDot,
	"id": commaDot,
	"it": commaDot,
	"es": commaDot,
	"pt": commaDot,
	"nl": commaDot,
	"tr": commaDot,
	"vi": commaDot,
	"fr": commaSpace,
	"ru": commaSpace,
	"pl": commaSpace,
	"sv": commaSpace,
}

// localeSeparators resolves a BCP 47 tag. ok is false for empty or unknown locales.
func localeSeparators(locale string) (separators, bool) {
	if locale == "" {
		return separators{}, false
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return separators{}, false
	}
	base, _ := tag.Base()
	if region, conf := tag.Region(); conf == language.Exact {
		if seps, ok := regionSeparators[base.String()+"-"+region.String()]; ok {
			return seps, true
		}
	}
	seps, ok := languageSeparators[base.String()]
	return seps, ok
}

// FormatAmount renders an amount the way a reader in locale expects to see it.
// Symbol, symbol placement and minor-unit digits come from the currency; the
// decimal and grouping marks come from the locale. Amounts are rounded half away
// from zero to the currency's minor unit.
//
//	FormatAmount(1234.5, USD, "en-US") == "$1,234.50"
//	FormatAmount(1234.5, EUR, "de-DE") == "€1.234,50"
func FormatAmount(amount decimal.Decimal, currency Currency, locale string) string {
	cur := currency.info()
	f := cur.Formatter()
	if seps, ok := localeSeparators(locale); ok {
		f = gomoney.NewFormatter(cur.Fraction, seps.decimal, seps.thousand, cur.Grapheme, cur.Template)
	}
	minor := amount.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction)).IntPart()
	return f.Format(minor)
}

// FormatPercent renders a percentage with two decimals using the locale's decimal mark
func FormatPercent(p decimal.Decimal, locale string) string {
	s := p.StringFixed(2)
	if seps, ok := localeSeparators(locale); ok {
		s = strings.Replace(s, ".", seps.decimal, 1)
	}
	return s + "%"
}
