package math

import "testing"

func TestClamp(t *testing.T) {
	if Clamp(5, 0, 3) != 3 || Clamp(-1, 0, 3) != 0 || Clamp(2, 0, 3) != 2 {
		t.Error("int clamp")
	}
	if Clamp(1.5, 0.0, 1.0) != 1.0 {
		t.Error("float clamp")
	}
}

func TestFraction(t *testing.T) {
	cases := []struct {
		part, total int
		want        float64
	}{
		{1, 4, 0.25},
		{3, 4, 0.75},
		{4, 4, 1},
		{5, 4, 1},
		{0, 0, 1},
		{0, 3, 0},
	}
	for _, c := range cases {
		if got := Fraction(c.part, c.total); got != c.want {
			t.Errorf("Fraction(%d, %d) = %v, want %v", c.part, c.total, got, c.want)
		}
	}
}
