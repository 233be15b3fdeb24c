package grid

import "fmt"

const (
	// Size is the width and height of the full grid.
	Size = 9
	// CellCount is the number of flat indexes (0..80).
	CellCount = Size * Size
	// ThemeCount and DetailCount are fixed by the 3x3 layout minus its center.
	ThemeCount  = 8
	DetailCount = 8
	// CenterIndex is the flat index of the overarching goal.
	CenterIndex = 40
)

type Kind uint8

const (
	KindCenter Kind = iota + 1
	KindTheme
	KindDetail
)

func (k Kind) String() string {
	switch k {
	case KindCenter:
		return "center"
	case KindTheme:
		return "theme"
	case KindDetail:
		return "detail"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "center":
		*k = KindCenter
	case "theme":
		*k = KindTheme
	case "detail":
		*k = KindDetail
	default:
		return fmt.Errorf("grid: unknown cell kind %q", b)
	}
	return nil
}

// Address is the semantic identity of one cell.
//
// Theme titles appear twice in the grid: once around the center goal and once
// heading the theme's own block. InCenterBlock tells the two apart so that
// ToIndex can invert Classify; both copies address the same title.
type Address struct {
	Kind          Kind `json:"kind"`
	Theme         int  `json:"theme"`
	Detail        int  `json:"detail"`
	InCenterBlock bool `json:"in_center_block,omitempty"`
}

func Center() Address { return Address{Kind: KindCenter, Theme: -1, Detail: -1} }

// ThemeTitle addresses the header copy of theme t (the center of block t).
func ThemeTitle(t int) Address { return Address{Kind: KindTheme, Theme: t, Detail: -1} }

// ThemePreview addresses the copy of theme t placed around the center goal.
func ThemePreview(t int) Address {
	return Address{Kind: KindTheme, Theme: t, Detail: -1, InCenterBlock: true}
}

func Detail(t, d int) Address { return Address{Kind: KindDetail, Theme: t, Detail: d} }

// SameSlot reports whether a and b refer to the same stored text,
// ignoring which theme-title projection they came from.
func (a Address) SameSlot(b Address) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindCenter:
		return true
	case KindTheme:
		return a.Theme == b.Theme
	default:
		return a.Theme == b.Theme && a.Detail == b.Detail
	}
}

func (a Address) String() string {
	switch a.Kind {
	case KindCenter:
		return "center"
	case KindTheme:
		if a.InCenterBlock {
			return fmt.Sprintf("theme[%d] (center block)", a.Theme)
		}
		return fmt.Sprintf("theme[%d]", a.Theme)
	case KindDetail:
		return fmt.Sprintf("theme[%d].detail[%d]", a.Theme, a.Detail)
	default:
		return a.Kind.String()
	}
}

// Validate checks that a is inside the grid's domain.
func (a Address) Validate() error {
	switch a.Kind {
	case KindCenter:
		return nil
	case KindTheme:
		if a.Theme < 0 || a.Theme >= ThemeCount {
			return &RangeError{Field: "theme", Value: a.Theme, Max: ThemeCount - 1}
		}
		return nil
	case KindDetail:
		if a.Theme < 0 || a.Theme >= ThemeCount {
			return &RangeError{Field: "theme", Value: a.Theme, Max: ThemeCount - 1}
		}
		if a.Detail < 0 || a.Detail >= DetailCount {
			return &RangeError{Field: "detail", Value: a.Detail, Max: DetailCount - 1}
		}
		return nil
	default:
		return &RangeError{Field: "kind", Value: int(a.Kind), Max: int(KindDetail)}
	}
}

// RangeError reports an index, theme or detail outside the grid.
type RangeError struct {
	Field string
	Value int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("grid: %s %d out of range [0,%d]", e.Field, e.Value, e.Max)
}

// slotTable assigns theme (or detail) numbers to the eight non-center
// positions of a 3x3 block, row-major. The middle position is -1.
var slotTable = [3][3]int{
	{0, 1, 2},
	{3, -1, 4},
	{5, 6, 7},
}

// slotPositions is the inverse of slotTable.
var slotPositions = [8][2]int{
	{0, 0}, {0, 1}, {0, 2},
	{1, 0}, {1, 2},
	{2, 0}, {2, 1}, {2, 2},
}

// Coord is the block/inner decomposition of a flat index.
type Coord struct {
	BlockRow, BlockCol int
	InnerRow, InnerCol int
}

func (c Coord) inMiddleBlock() bool { return c.BlockRow == 1 && c.BlockCol == 1 }
func (c Coord) onMiddleCell() bool  { return c.InnerRow == 1 && c.InnerCol == 1 }

// Position decomposes index into its block and inner coordinates.
func Position(index int) (Coord, error) {
	if index < 0 || index >= CellCount {
		return Coord{}, &RangeError{Field: "index", Value: index, Max: CellCount - 1}
	}
	return Coord{
		BlockRow: index / 27,
		BlockCol: (index % 9) / 3,
		InnerRow: (index % 27) / 9,
		InnerCol: (index % 9) % 3,
	}, nil
}

// RowCol returns the display row and column of index.
func RowCol(index int) (row, col int) { return index / Size, index % Size }

// IndexAt is the inverse of RowCol. Out-of-range rows or columns return -1.
func IndexAt(row, col int) int {
	if row < 0 || row >= Size || col < 0 || col >= Size {
		return -1
	}
	return row*Size + col
}

// Classify maps a flat index in [0,80] to its semantic address.
func Classify(index int) (Address, error) {
	c, err := Position(index)
	if err != nil {
		return Address{}, err
	}
	switch {
	case c.inMiddleBlock() && c.onMiddleCell():
		return Center(), nil
	case c.inMiddleBlock():
		return ThemePreview(slotTable[c.InnerRow][c.InnerCol]), nil
	case c.onMiddleCell():
		return ThemeTitle(slotTable[c.BlockRow][c.BlockCol]), nil
	default:
		return Detail(slotTable[c.BlockRow][c.BlockCol], slotTable[c.InnerRow][c.InnerCol]), nil
	}
}

// MustClassify is Classify for indexes the caller already knows are valid.
func MustClassify(index int) Address {
	a, err := Classify(index)
	if err != nil {
		panic(err)
	}
	return a
}

// ToIndex maps an address back to its flat index.
func ToIndex(a Address) (int, error) {
	if err := a.Validate(); err != nil {
		return 0, err
	}
	var c Coord
	switch a.Kind {
	case KindCenter:
		return CenterIndex, nil
	case KindTheme:
		p := slotPositions[a.Theme]
		if a.InCenterBlock {
			c = Coord{BlockRow: 1, BlockCol: 1, InnerRow: p[0], InnerCol: p[1]}
		} else {
			c = Coord{BlockRow: p[0], BlockCol: p[1], InnerRow: 1, InnerCol: 1}
		}
	case KindDetail:
		b := slotPositions[a.Theme]
		in := slotPositions[a.Detail]
		c = Coord{BlockRow: b[0], BlockCol: b[1], InnerRow: in[0], InnerCol: in[1]}
	}
	return (c.BlockRow*3+c.InnerRow)*Size + c.BlockCol*3 + c.InnerCol, nil
}

func MustIndex(a Address) int {
	i, err := ToIndex(a)
	if err != nil {
		panic(err)
	}
	return i
}

// ThemeIndexes returns both flat indexes showing theme t's title:
// the center-block copy first, then the block header.
func ThemeIndexes(t int) ([2]int, error) {
	preview, err := ToIndex(ThemePreview(t))
	if err != nil {
		return [2]int{}, err
	}
	return [2]int{preview, MustIndex(ThemeTitle(t))}, nil
}

// Addresses lists the address of every index in order.
func Addresses() [CellCount]Address {
	var out [CellCount]Address
	for i := range out {
		out[i] = MustClassify(i)
	}
	return out
}

// Location describes where an index sits in the grid.
type Location struct {
	Index   int     `json:"index"`
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Address Address `json:"address"`
	Label   string  `json:"label"`
	// Twins lists every index showing the same text (two for theme titles).
	Twins []int `json:"twins"`
}

func Locate(index int) (Location, error) {
	a, err := Classify(index)
	if err != nil {
		return Location{}, err
	}
	row, col := RowCol(index)
	twins := []int{index}
	if a.Kind == KindTheme {
		pair := [2]int{MustIndex(ThemePreview(a.Theme)), MustIndex(ThemeTitle(a.Theme))}
		twins = pair[:]
	}
	return Location{Index: index, Row: row, Col: col, Address: a, Label: a.String(), Twins: twins}, nil
}
