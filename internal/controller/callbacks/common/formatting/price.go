package formatting

import "github.com/shopspring/decimal"

// FormatMoney форматирует сумму в долларах
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatMoneyShort форматирует сумму без центов, если они равны 0
func FormatMoneyShort(amount decimal.Decimal) string {
	if amount.Equal(amount.Truncate(0)) {
		return "$" + amount.StringFixed(0)
	}
	return FormatMoney(amount)
}
