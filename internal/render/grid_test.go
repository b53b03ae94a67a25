package render

import "testing"

func TestGridLayout(t *testing.T) {
	cases := []struct {
		total   int
		perRow  int
		minRows int
	}{
		{0, 1, 1},
		{1, 6, 1},
		{6, 6, 1},
		{7, 6, 2},
		{30, 6, 5},
	}

	for _, tc := range cases {
		perRow, rows := gridLayout(tc.total)
		if perRow != tc.perRow {
			t.Errorf("gridLayout(%d) perRow = %d, want %d", tc.total, perRow, tc.perRow)
		}
		if rows < tc.minRows {
			t.Errorf("gridLayout(%d) rows = %d, want at least %d", tc.total, rows, tc.minRows)
		}
	}
}

func TestGridLayout_LargeCountsFitAll(t *testing.T) {
	for _, total := range []int{31, 50, 100, 500} {
		perRow, rows := gridLayout(total)
		if perRow*rows < total {
			t.Errorf("gridLayout(%d) = %dx%d, holds only %d cells", total, perRow, rows, perRow*rows)
		}
	}
}
