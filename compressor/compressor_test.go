package compressor

import (
	"fmt"
	"testing"
)

func TestCompressor_Compress(t *testing.T) {
	x := 0 // an empty value

	allCompressors := func() []Compressor {
		return []Compressor{
			NewUniqueEntriesTable(),
			NewRowDisplacementTable(x),
		}
	}

	tests := []struct {
		original    []int
		rowCount    int
		colCount    int
		compressors []Compressor
	}{
		{
			original: []int{
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
				1, 1, 1, 1, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				x, x, x, x, x,
				x, x, x, x, x,
				x, x, x, x, x,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				1, 1, 1, 1, 1,
				x, x, x, x, x,
				1, 1, 1, 1, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				1, x, 1, 1, 1,
				1, 1, x, 1, 1,
				1, 1, 1, x, 1,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
		{
			original: []int{
				x, 2, x, x, x,
				1, x, x, x, x,
				x, x, x, 3, x,
			},
			rowCount:    3,
			colCount:    5,
			compressors: allCompressors(),
		},
	}
	for i, tt := range tests {
		for _, comp := range tt.compressors {
			t.Run(fmt.Sprintf("%T #%v", comp, i), func(t *testing.T) {
				dup := make([]int, len(tt.original))
				copy(dup, tt.original)

				orig, err := NewOriginalTable(tt.original, tt.colCount)
				if err != nil {
					t.Fatal(err)
				}
				err = comp.Compress(orig)
				if err != nil {
					t.Fatal(err)
				}
				rowCount, colCount := comp.OriginalTableSize()
				if rowCount != tt.rowCount || colCount != tt.colCount {
					t.Fatalf("unexpected table size; want: %vx%v, got: %vx%v", tt.rowCount, tt.colCount, rowCount, colCount)
				}
				for row := 0; row < tt.rowCount; row++ {
					for col := 0; col < tt.colCount; col++ {
						v, err := comp.Lookup(row, col)
						if err != nil {
							t.Fatal(err)
						}
						expected := dup[row*tt.colCount+col]
						if v != expected {
							t.Fatalf("unexpected entry; row: %v, col: %v, want: %v, got: %v", row, col, expected, v)
						}
					}
				}
			})
		}
	}
}

func TestNewOriginalTable(t *testing.T) {
	if _, err := NewOriginalTable(nil, 5); err == nil {
		t.Fatal("an empty entries must be rejected")
	}
	if _, err := NewOriginalTable([]int{1, 2, 3}, 0); err == nil {
		t.Fatal("a non-positive column count must be rejected")
	}
	if _, err := NewOriginalTable([]int{1, 2, 3}, 2); err == nil {
		t.Fatal("an entries length indivisible by the column count must be rejected")
	}
}
