// Package money реализует денежные суммы в целых центах.
// Вся арифметика и сравнение сумм в сервисе идут в центах,
// чтобы исключить дрейф плавающей точки на границе проверки.
package money

import (
	"fmt"
	"math"
	"strconv"
)

// Cents — денежная сумма в центах USD.
type Cents int64

// FromFloat переводит десятичную сумму (например, 167.00 из JSON)
// в центы с округлением до ближайшего цента.
func FromFloat(v float64) Cents {
	return Cents(math.Round(v * 100))
}

// Float64 возвращает сумму как десятичное число с двумя знаками.
func (c Cents) Float64() float64 {
	return float64(c) / 100
}

// String форматирует сумму как "167.00".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON сериализует сумму как JSON-число с двумя знаками после точки.
func (c Cents) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(c.Float64(), 'f', 2, 64)), nil
}

// UnmarshalJSON принимает JSON-число и округляет его до цента.
func (c *Cents) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("money: invalid amount %q: %w", string(data), err)
	}
	*c = FromFloat(v)
	return nil
}

// Diff возвращает абсолютную разницу двух сумм в центах.
func Diff(a, b Cents) Cents {
	if a > b {
		return a - b
	}
	return b - a
}
