package bitacora

import (
	"strings"
)

// CountInWords spells a non-negative count in Spanish, as official documents
// repeat quantities in letters: 4 -> "cuatro", 21 -> "veintiuno", 1500 -> "mil quinientos".
func CountInWords(n int) string {
	if n < 0 {
		return "menos " + CountInWords(-n)
	}
	if n == 0 {
		return "cero"
	}
	return spell(n)
}

func spell(n int) string {
	switch {
	case n < 10:
		return units[n]
	case n < 30:
		return specials[n]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + " y " + units[n%10]
	case n == 100:
		return "cien"
	case n < 1000:
		if n%100 == 0 {
			return hundreds[n/100]
		}
		return hundreds[n/100] + " " + spell(n%100)
	case n < 1_000_000:
		prefix := "mil"
		if n/1000 > 1 {
			prefix = apocope(spell(n/1000)) + " mil"
		}
		if n%1000 == 0 {
			return prefix
		}
		return prefix + " " + spell(n%1000)
	default:
		prefix := "un millón"
		if n/1_000_000 > 1 {
			prefix = apocope(spell(n/1_000_000)) + " millones"
		}
		if n%1_000_000 == 0 {
			return prefix
		}
		return prefix + " " + spell(n%1_000_000)
	}
}

// apocope shortens a trailing "uno" before mil/millones ("veintiún mil")
func apocope(words string) string {
	switch {
	case strings.HasSuffix(words, "veintiuno"):
		return strings.TrimSuffix(words, "veintiuno") + "veintiún"
	case strings.HasSuffix(words, "uno"):
		return strings.TrimSuffix(words, "uno") + "un"
	default:
		return words
	}
}

var units = [...]string{
	"", "uno", "dos", "tres", "cuatro", "cinco", "seis", "siete", "ocho", "nueve",
}

var specials = map[int]string{
	10: "diez", 11: "once", 12: "doce", 13: "trece", 14: "catorce", 15: "quince",
	16: "dieciséis", 17: "diecisiete", 18: "dieciocho", 19: "diecinueve",
	20: "veinte", 21: "veintiuno", 22: "veintidós", 23: "veintitrés", 24: "veinticuatro",
	25: "veinticinco", 26: "veintiséis", 27: "veintisiete", 28: "veintiocho", 29: "veintinueve",
}

var tens = [...]string{
	"", "", "veinte", "treinta", "cuarenta", "cincuenta", "sesenta", "setenta", "ochenta", "noventa",
}

var hundreds = [...]string{
	"", "ciento", "doscientos", "trescientos", "cuatrocientos", "quinientos", "seiscientos", "setecientos", "ochocientos", "novecientos",
}
