package donor

import "testing"

func TestComputeBMI(t *testing.T) {
	cases := []struct {
		weight float64
		height float64
		want   float64
	}{
		{70, 175, 22.9},
		{90, 180, 27.8},
		{50, 160, 19.5},
		{0, 175, 0},
		{70, 0, 0},
		{-5, 175, 0},
	}

	for _, tc := range cases {
		got := ComputeBMI(tc.weight, tc.height)
		if got != tc.want {
			t.Fatalf("ComputeBMI(%v, %v) = %v, want %v", tc.weight, tc.height, got, tc.want)
		}
	}
}
