package utils

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Para aritmetiği her yerde 2 ondalık basamakta (kuruş hassasiyeti) yapılır.
// Yuvarlama politikası: round-half-up (decimal.Round davranışı).
// Float biriktirme kayması olmaması için toplama/çıkarma decimal üzerinden yapılır.

// Round2 tutarı 2 ondalık basamağa yuvarlar
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// AddRound2 iki tutarı toplar ve 2 basamağa yuvarlar
func AddRound2(a, b float64) float64 {
	f, _ := decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).Float64()
	return f
}

// SubClampZero a-b'yi 2 basamağa yuvarlayıp hesaplar, negatifse 0'a sabitler
// Reversal sırasında kısmen çekilmiş bakiyenin negatife düşmemesi için
// bilinçli politika (bug değil)
func SubClampZero(a, b float64) float64 {
	d := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2)
	if d.IsNegative() {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ParseAmount string tutarı parse eder ve doğrular
// Negatif, NaN veya Inf tutarlar reddedilir
func ParseAmount(s string) (float64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("geçersiz tutar formatı: %q", s)
	}
	f, _ := d.Round(2).Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("tutar negatif veya sonlu değil: %q", s)
	}
	return f, nil
}

// ValidAmount tutarın sonlu ve negatif olmadığını kontrol eder
func ValidAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
