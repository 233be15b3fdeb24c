package grid

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestClassify_RoundTripsEveryIndex(t *testing.T) {
	for i := 0; i < CellCount; i++ {
		a, err := Classify(i)
		if err != nil {
			t.Fatalf("Classify(%d): %v", i, err)
		}
		got, err := ToIndex(a)
		if err != nil {
			t.Fatalf("ToIndex(%v): %v", a, err)
		}
		if got != i {
			t.Fatalf("ToIndex(Classify(%d)) = %d (address %v)", i, got, a)
		}
	}
}

func TestClassify_ExactlyOneCenter(t *testing.T) {
	var centers []int
	for i := 0; i < CellCount; i++ {
		if MustClassify(i).Kind == KindCenter {
			centers = append(centers, i)
		}
	}
	if len(centers) != 1 || centers[0] != CenterIndex {
		t.Fatalf("expected only index %d to be the center, got %v", CenterIndex, centers)
	}
}

func TestClassify_EachThemeAppearsTwice(t *testing.T) {
	seen := map[int][]Address{}
	for i := 0; i < CellCount; i++ {
		a := MustClassify(i)
		if a.Kind == KindTheme {
			seen[a.Theme] = append(seen[a.Theme], a)
		}
	}
	for th := 0; th < ThemeCount; th++ {
		got := seen[th]
		if len(got) != 2 {
			t.Fatalf("theme %d: expected 2 cells, got %d", th, len(got))
		}
		if got[0].InCenterBlock == got[1].InCenterBlock {
			t.Fatalf("theme %d: expected one center-block copy and one header, got %+v", th, got)
		}
	}
}

func TestClassify_EachDetailAppearsOnce(t *testing.T) {
	count := map[[2]int]int{}
	for i := 0; i < CellCount; i++ {
		a := MustClassify(i)
		if a.Kind == KindDetail {
			count[[2]int{a.Theme, a.Detail}]++
		}
	}
	for th := 0; th < ThemeCount; th++ {
		for d := 0; d < DetailCount; d++ {
			if n := count[[2]int{th, d}]; n != 1 {
				t.Fatalf("detail (%d,%d): expected 1 cell, got %d", th, d, n)
			}
		}
	}
}

func TestClassify_Partition(t *testing.T) {
	byKind := map[Kind]int{}
	for _, a := range Addresses() {
		byKind[a.Kind]++
	}
	if byKind[KindCenter] != 1 || byKind[KindTheme] != 16 || byKind[KindDetail] != 64 {
		t.Fatalf("unexpected partition: %v", byKind)
	}
}

func TestClassify_KnownCells(t *testing.T) {
	cases := []struct {
		index int
		want  Address
	}{
		{40, Center()},
		{0, Detail(0, 0)},
		{1, Detail(0, 1)},
		{4, Detail(1, 1)},
		{10, ThemeTitle(0)},
		{30, ThemePreview(0)},
		{31, ThemePreview(1)},
		{39, ThemePreview(3)},
		{41, ThemePreview(4)},
		{50, ThemePreview(7)},
		{13, ThemeTitle(1)},
		{70, ThemeTitle(7)},
		{80, Detail(7, 7)},
		{36, Detail(3, 3)},
	}
	for _, tc := range cases {
		got, err := Classify(tc.index)
		if err != nil {
			t.Fatalf("Classify(%d): %v", tc.index, err)
		}
		if got != tc.want {
			t.Fatalf("Classify(%d) = %v, want %v", tc.index, got, tc.want)
		}
	}
}

func TestClassify_RejectsOutOfRange(t *testing.T) {
	for _, i := range []int{-1, 81, 1000} {
		_, err := Classify(i)
		var re *RangeError
		if !errors.As(err, &re) {
			t.Fatalf("Classify(%d): expected RangeError, got %v", i, err)
		}
		if re.Field != "index" || re.Value != i {
			t.Fatalf("unexpected range error: %+v", re)
		}
	}
}

func TestToIndex_RejectsOutOfDomainAddresses(t *testing.T) {
	bad := []Address{
		ThemeTitle(-1),
		ThemeTitle(8),
		ThemePreview(9),
		Detail(0, 8),
		Detail(8, 0),
		{Kind: 0},
		{Kind: 42},
	}
	for _, a := range bad {
		if _, err := ToIndex(a); err == nil {
			t.Fatalf("ToIndex(%+v): expected error", a)
		}
	}
}

func TestMustClassify_PanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustClassify(81)
}

func TestThemeIndexes(t *testing.T) {
	got, err := ThemeIndexes(0)
	if err != nil {
		t.Fatalf("ThemeIndexes: %v", err)
	}
	if got != [2]int{30, 10} {
		t.Fatalf("ThemeIndexes(0) = %v", got)
	}
	got, _ = ThemeIndexes(7)
	if got != [2]int{50, 70} {
		t.Fatalf("ThemeIndexes(7) = %v", got)
	}
}

func TestLocate(t *testing.T) {
	loc, err := Locate(30)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if loc.Row != 3 || loc.Col != 3 || loc.Label != "theme[0] (center block)" {
		t.Fatalf("Locate(30) = %+v", loc)
	}
	if len(loc.Twins) != 2 || loc.Twins[0] != 30 || loc.Twins[1] != 10 {
		t.Fatalf("twins: %v", loc.Twins)
	}
	loc, _ = Locate(0)
	if len(loc.Twins) != 1 || loc.Address != Detail(0, 0) {
		t.Fatalf("Locate(0) = %+v", loc)
	}
	if _, err := Locate(81); err == nil {
		t.Fatalf("expected range error")
	}
}

func TestAddress_JSONUsesKindNames(t *testing.T) {
	b, err := json.Marshal(ThemePreview(2))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"kind":"theme"`) || !strings.Contains(string(b), `"in_center_block":true`) {
		t.Fatalf("unexpected json: %s", b)
	}
	var a Address
	if err := json.Unmarshal(b, &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a != ThemePreview(2) {
		t.Fatalf("round trip: %+v", a)
	}
	if err := json.Unmarshal([]byte(`{"kind":"corner"}`), &a); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestRowColAndIndexAt(t *testing.T) {
	for i := 0; i < CellCount; i++ {
		r, c := RowCol(i)
		if IndexAt(r, c) != i {
			t.Fatalf("IndexAt(RowCol(%d)) mismatch", i)
		}
	}
	if IndexAt(9, 0) != -1 || IndexAt(0, -1) != -1 {
		t.Fatalf("expected -1 outside the grid")
	}
}

func TestAddress_SameSlot(t *testing.T) {
	if !ThemeTitle(2).SameSlot(ThemePreview(2)) {
		t.Fatalf("theme projections should share a slot")
	}
	if ThemeTitle(2).SameSlot(ThemeTitle(3)) {
		t.Fatalf("different themes must not share a slot")
	}
	if Detail(1, 2).SameSlot(Detail(2, 1)) {
		t.Fatalf("different details must not share a slot")
	}
}
