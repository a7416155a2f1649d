package chemhammer_test

import (
	"fmt"

	"github.com/turtacn/ChemHammer/pkg/chemhammer"
)

func ExampleDistanceFromStrings() {
	d, err := chemhammer.DistanceFromStrings("H2O", "NaCl")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("%.1f\n", d)
	// Output: 45.0
}

func ExampleCompositionOf() {
	c, err := chemhammer.CompositionOf("(C H3)4 N")
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, e := range c {
		fmt.Printf("%d %.4f\n", e.Position, e.Mass)
	}
	// Output:
	// 87 0.2353
	// 88 0.0588
	// 103 0.7059
}
