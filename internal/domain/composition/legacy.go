package composition

// Formulas in older corpora carry one known typo: a misplaced closing
// parenthesis in the tetramethylammonium copper cadmium cyanide entry. The
// exact string is rewritten before parsing. No other input is touched.
const (
	legacyMalformed = "((C H3)4 N) (Cu Cd (C N)4)) (C Cl4)"
	legacyCorrected = "((C H3)4 N) (Cu Cd (C N4)) (C Cl4)"
)

func patchLegacy(formula string) string {
	if formula == legacyMalformed {
		return legacyCorrected
	}
	return formula
}
