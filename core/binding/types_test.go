package binding_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/anoideaopen/latebinding/core/binding"
)

// MyLateBindingTestType is the fixture most tests bind to.
type MyLateBindingTestType struct {
	MyField int32

	indexMock string
}

// NewMyLateBindingTestType sets MyField to 1, or to value through MyProp
// when one is given.
func NewMyLateBindingTestType(value ...int32) (*MyLateBindingTestType, error) {
	t := &MyLateBindingTestType{MyField: 1, indexMock: "default"}

	switch len(value) {
	case 0:
		return t, nil
	case 1:
		if err := t.SetMyProp(value[0]); err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("expected at most one value, got %d", len(value))
	}
}

func (t *MyLateBindingTestType) SimpleMethod() {}

func (t *MyLateBindingTestType) MulFiveRef(x *int32) {
	*x *= 5
}

func (t *MyLateBindingTestType) MulTenRef(x, y *int32) {
	*x *= 10
	*y *= 10
}

func (t *MyLateBindingTestType) AddTo(a int32, total *int32) {
	*total += a
}

func (t *MyLateBindingTestType) Sum(i1, i2 int32) int32 {
	return i1 + i2
}

func (t *MyLateBindingTestType) MyProp() int32 {
	return t.MyField
}

func (t *MyLateBindingTestType) SetMyProp(value int32) error {
	if value < 1 {
		return errors.New("value must be > 0")
	}
	t.MyField = value
	return nil
}

func (t *MyLateBindingTestType) Item(int) string {
	return t.indexMock
}

func (t *MyLateBindingTestType) SetItem(_ int, value string) {
	t.indexMock = "value:" + value
}

func (t *MyLateBindingTestType) Selection() *Selection {
	return &Selection{}
}

func (t *MyLateBindingTestType) Nothing() *Selection {
	return nil
}

type Selection struct {
	Text string
}

func (s *Selection) TypeText(text string) string {
	s.Text += text
	return s.Text
}

// Matrix has a two dimensional indexer.
type Matrix struct {
	cells [3][3]int
}

func (m *Matrix) Item(i, j int) int {
	return m.cells[i][j]
}

func (m *Matrix) SetItem(i, j, v int) {
	m.cells[i][j] = v
}

// Sheet names its indexer Cell.
type Sheet struct {
	cells map[string]string
}

func (s *Sheet) Cell(name string) string {
	return s.cells[name]
}

func (s *Sheet) SetCell(name, value string) {
	if s.cells == nil {
		s.cells = make(map[string]string)
	}
	s.cells[name] = value
}

// Counter only has fields.
type Counter struct {
	Count int
}

// Ledger has a Total field shadowed by a failing getter.
type Ledger struct {
	Total int
}

func (l *Ledger) GetTotal() (int, error) {
	return 0, errors.New("ledger is closed")
}

// Account reads its balance through another binding.
type Account struct {
	Balance int

	source *binding.Binding
}

func (a *Account) GetBalance() (int, error) {
	return binding.GetAs[int](context.Background(), a.source.Field("missing"))
}

// Gauge has a Level field and a Level getter that needs a scale.
type Gauge struct {
	Level int
}

func (g *Gauge) GetLevel(scale int) int {
	return g.Level * scale
}
