package composition

import (
	"testing"

	"github.com/turtacn/ChemHammer/internal/domain/element"
)

func BenchmarkParse(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := Parse("((C H3)4 N) (Cu Cd (C N4)) (C Cl4)"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFromFormula(b *testing.B) {
	table := element.Default()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FromFormula("Li1.3Al0.3Ti1.7(PO4)3", table); err != nil {
			b.Fatal(err)
		}
	}
}
