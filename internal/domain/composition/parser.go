package composition

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// atomPattern matches an element symbol and its optional count.
	atomPattern = regexp.MustCompile(`([A-Z][a-z]*)(\d*\.*\d*)`)
	// groupMultiplier matches the count following a closing bracket.
	groupMultiplier = regexp.MustCompile(`^\d+\.*\d*`)
)

const (
	openers = "([{"
	closers = ")]}"
)

// Parse reads a bracketed chemical formula into atom counts.
//
// Atoms are an uppercase letter, optional lowercase letters and an optional
// integer or decimal count ("Li1.104"). Groups are opened by ( [ { and closed
// by ) ] }; a count after the closer multiplies every atom inside the group.
// Characters that are neither atoms nor brackets (spaces, dots, a stray
// lowercase letter) are ignored. Counts for a symbol appearing in several
// places are summed.
//
//	Parse("(C H3)4 N") // C:4 H:12 N:1
func Parse(formula string) (Raw, error) {
	formula = patchLegacy(formula)
	if !balanced(formula) {
		return Raw{}, ErrMalformedFormula.WithDetailf("unbalanced brackets in %q", formula)
	}

	counts, consumed, closed, err := parseGroup(formula)
	if err != nil {
		return Raw{}, ErrMalformedFormula.WithDetailf("%s in %q", err.Error(), formula)
	}
	if closed {
		return Raw{}, ErrMalformedFormula.WithDetailf("closing bracket without opener before offset %d in %q", consumed, formula)
	}
	return Raw{counts: counts}, nil
}

// MustParse is Parse for formulas known to be valid. It panics on error.
func MustParse(formula string) Raw {
	r, err := Parse(formula)
	if err != nil {
		panic(err)
	}
	return r
}

func balanced(formula string) bool {
	for i := 0; i < len(openers); i++ {
		if strings.Count(formula, openers[i:i+1]) != strings.Count(formula, closers[i:i+1]) {
			return false
		}
	}
	return true
}

type parseError string

func (e parseError) Error() string { return string(e) }

// parseGroup parses s up to the first closer at its own nesting level, or to
// the end of s. It returns the counts found, the number of bytes consumed
// (closer and multiplier included) and whether a closer ended the group.
func parseGroup(s string) (map[string]float64, int, bool, error) {
	var (
		counts = map[string]float64{}
		atoms  strings.Builder
	)

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case strings.IndexByte(closers, c) >= 0:
			weight := 1.0
			if m := groupMultiplier.FindString(s[i+1:]); m != "" {
				w, err := strconv.ParseFloat(m, 64)
				if err != nil {
					return nil, 0, false, parseError("bad group multiplier " + strconv.Quote(m))
				}
				weight = w
				i += len(m)
			}
			level, err := atomCounts(atoms.String())
			if err != nil {
				return nil, 0, false, err
			}
			return fuse(counts, level, weight), i + 1, true, nil

		case strings.IndexByte(openers, c) >= 0:
			sub, n, closed, err := parseGroup(s[i+1:])
			if err != nil {
				return nil, 0, false, err
			}
			if !closed {
				return nil, 0, false, parseError("unclosed bracket at offset " + strconv.Itoa(i))
			}
			counts = fuse(counts, sub, 1)
			i += n

		default:
			atoms.WriteByte(c)
		}
	}

	level, err := atomCounts(atoms.String())
	if err != nil {
		return nil, 0, false, err
	}
	return fuse(counts, level, 1), len(s), false, nil
}

// atomCounts applies the atom pattern to the text of one nesting level.
func atomCounts(text string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, m := range atomPattern.FindAllStringSubmatch(text, -1) {
		n := 1.0
		// A bare run of dots ("H2O.") is punctuation, not a count.
		if strings.Trim(m[2], ".") != "" {
			v, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				return nil, parseError("bad count " + strconv.Quote(m[1]+m[2]))
			}
			n = v
		}
		out[m[1]] += n
	}
	return out, nil
}
