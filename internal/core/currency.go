package core

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency is the currency selected on first run.
const DefaultCurrency = "USD"

// Currency describes one selectable display currency.
type Currency struct {
	Code   string
	Symbol string
	Name   string
}

var currencies = func() []Currency {
	list := []Currency{
		{"USD", "$", "United States Dollar"},
		{"EUR", "€", "Euro"},
		{"GBP", "£", "British Pound"},
		{"JPY", "¥", "Japanese Yen"},
		{"CNY", "¥", "Chinese Yuan"},
		{"INR", "₹", "Indian Rupee"},
		{"CAD", "C$", "Canadian Dollar"},
		{"AUD", "A$", "Australian Dollar"},
		{"CHF", "Fr", "Swiss Franc"},
		{"HKD", "HK$", "Hong Kong Dollar"},
		{"SGD", "S$", "Singapore Dollar"},
		{"SEK", "kr", "Swedish Krona"},
		{"KRW", "₩", "South Korean Won"},
		{"BRL", "R$", "Brazilian Real"},
		{"MXN", "$", "Mexican Peso"},
		{"RUB", "₽", "Russian Ruble"},
		{"ZAR", "R", "South African Rand"},
		{"TRY", "₺", "Turkish Lira"},
		{"NZD", "NZ$", "New Zealand Dollar"},
		{"NOK", "kr", "Norwegian Krone"},
		{"TWD", "NT$", "New Taiwan Dollar"},
		{"DKK", "kr", "Danish Krone"},
		{"PLN", "zł", "Polish Złoty"},
		{"THB", "฿", "Thai Baht"},
		{"IDR", "Rp", "Indonesian Rupiah"},
		{"HUF", "Ft", "Hungarian Forint"},
		{"CZK", "Kč", "Czech Koruna"},
		{"ILS", "₪", "Israeli New Shekel"},
		{"CLP", "$", "Chilean Peso"},
		{"PHP", "₱", "Philippine Peso"},
		{"AED", "د.إ", "UAE Dirham"},
		{"SAR", "﷼", "Saudi Riyal"},
		{"MYR", "RM", "Malaysian Ringgit"},
		{"VND", "₫", "Vietnamese Dong"},
		{"ARS", "$", "Argentine Peso"},
		{"EGP", "E£", "Egyptian Pound"},
		{"PKR", "₨", "Pakistani Rupee"},
		{"NGN", "₦", "Nigerian Naira"},
		{"BDT", "৳", "Bangladeshi Taka"},
		{"UAH", "₴", "Ukrainian Hryvnia"},
		{"COP", "$", "Colombian Peso"},
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return list
}()

// Currencies returns the selectable currencies ordered by code.
func Currencies() []Currency {
	return append([]Currency(nil), currencies...)
}

// LookupCurrency finds a catalogue entry by code, case-insensitively.
func LookupCurrency(code string) (Currency, bool) {
	code = NormalizeCurrencyCode(code)
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

// SearchCurrencies filters the catalogue by code, name or symbol.
func SearchCurrencies(query string) []Currency {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Currencies()
	}
	var out []Currency
	for _, c := range currencies {
		if strings.Contains(strings.ToLower(c.Code), q) ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Symbol), q) {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeCurrencyCode trims and uppercases a currency code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FormatCurrency renders amount for display in the given currency using
// en-US grouping, the en-US currency symbol and the currency's ISO 4217
// minor-unit digits, rounding half away from zero like Fixed2. Codes that
// are not recognised currencies fall back to "<CODE> <amount to 2 decimals>".
//
// Examples:
//
//	FormatCurrency(1234.5, "USD") -> "$1,234.50"
//	FormatCurrency(5, "MXN")      -> "MX$5.00"
//	FormatCurrency(3, "CHF")      -> "CHF 3.00"
//	FormatCurrency(-3, "EUR")     -> "-€3.00"
//	FormatCurrency(2.5, "nope")   -> "NOPE 2.50"
func FormatCurrency(amount float64, code string) string {
	code = NormalizeCurrencyCode(code)
	unit, err := currency.ParseISO(code)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return code + " " + Fixed2(amount)
	}

	p := message.NewPrinter(language.AmericanEnglish)
	symbol := p.Sprint(currency.Symbol(unit))
	if r, _ := utf8.DecodeLastRuneInString(symbol); unicode.IsLetter(r) {
		symbol += " "
	}

	scale, _ := currency.Standard.Rounding(unit)
	rounded := decimal.NewFromFloat(math.Abs(amount)).Round(int32(scale))
	digits := p.Sprint(number.Decimal(rounded.InexactFloat64(), number.Scale(scale)))

	if amount < 0 && !rounded.IsZero() {
		return "-" + symbol + digits
	}
	return symbol + digits
}
