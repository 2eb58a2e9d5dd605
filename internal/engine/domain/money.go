package domain

import "math"

// RoundCents arredonda um valor fracionário de centavos para o inteiro
// mais próximo. Pagamentos nunca ficam negativos.
func RoundCents(v float64) int64 {
	if v < 0 {
		return 0
	}
	return int64(math.Round(v))
}
