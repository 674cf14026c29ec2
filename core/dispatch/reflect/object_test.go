package reflect

import (
	"context"
	"errors"
	"testing"

	"github.com/anoideaopen/latebinding/core/dispatch"
	"github.com/stretchr/testify/require"
)

type Inner struct {
	Depth int
}

type Sample struct {
	*Inner

	MyField int32
	Label   string `latebinding:"caption"`
	hidden  int

	prop  int32
	items [4]string
}

func (s *Sample) MyProp() int32 { return s.prop }

func (s *Sample) SetMyProp(v int32) error {
	if v < 1 {
		return errors.New("value must be > 0")
	}
	s.prop = v
	return nil
}

func (s *Sample) GetTitle() string { return "sample" }

func (s *Sample) SetTitle(string) {}

func (s *Sample) Item(i int) (string, error) {
	if i < 0 || i >= len(s.items) {
		return "", errors.New("index out of range")
	}
	return s.items[i], nil
}

func (s *Sample) SetItem(i int, v string) error {
	if i < 0 || i >= len(s.items) {
		return errors.New("index out of range")
	}
	s.items[i] = v
	return nil
}

func dispatchTo(t *testing.T, obj *Object, kind dispatch.Kind, name string, values ...any) (dispatch.Reply, error) {
	t.Helper()

	params := make([]dispatch.Param, len(values))
	for i, v := range values {
		params[i] = dispatch.Param{Value: v}
	}

	return obj.Dispatch(context.Background(), dispatch.Request{Name: name, Kind: kind, Params: params})
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, dispatch.ErrNilTarget)

	_, err = New((*Sample)(nil))
	require.ErrorIs(t, err, dispatch.ErrNilTarget)

	// Struct values are copied behind a pointer.
	obj, err := New(Sample{MyField: 3})
	require.NoError(t, err)
	require.IsType(t, &Sample{}, obj.Target())
	require.Equal(t, BackendName, obj.Backend())

	reply, err := dispatchTo(t, obj, dispatch.FieldGet, "MyField")
	require.NoError(t, err)
	require.Equal(t, int32(3), reply.Value)
}

func TestProperties(t *testing.T) {
	sample := &Sample{Inner: &Inner{}}
	obj, err := New(sample)
	require.NoError(t, err)

	_, err = dispatchTo(t, obj, dispatch.PropertySet, "MyProp", 69)
	require.NoError(t, err)
	require.Equal(t, int32(69), sample.prop)

	reply, err := dispatchTo(t, obj, dispatch.PropertyGet, "myProp")
	require.NoError(t, err)
	require.Equal(t, int32(69), reply.Value)

	reply, err = dispatchTo(t, obj, dispatch.PropertyGet, "Title")
	require.NoError(t, err)
	require.Equal(t, "sample", reply.Value)

	_, err = dispatchTo(t, obj, dispatch.PropertySet, "MyProp", 0)
	require.ErrorIs(t, err, dispatch.ErrTargetFailed)

	_, err = dispatchTo(t, obj, dispatch.PropertyGet, "Missing")
	require.ErrorIs(t, err, dispatch.ErrMemberNotFound)

	_, err = dispatchTo(t, obj, dispatch.PropertySet, "Missing", 1)
	require.ErrorIs(t, err, dispatch.ErrMemberNotFound)

	// SetTitle returns nothing and is not a getter.
	_, err = dispatchTo(t, obj, dispatch.PropertyGet, "SetTitle")
	require.ErrorIs(t, err, dispatch.ErrMemberNotFound)
}

func TestIndexerMethods(t *testing.T) {
	obj, err := New(&Sample{})
	require.NoError(t, err)

	_, err = dispatchTo(t, obj, dispatch.PropertySet, dispatch.IndexerName, 1, "one")
	require.NoError(t, err)

	reply, err := dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, 1)
	require.NoError(t, err)
	require.Equal(t, "one", reply.Value)

	_, err = dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, 4)
	require.ErrorIs(t, err, dispatch.ErrTargetFailed)
}

func TestFields(t *testing.T) {
	sample := &Sample{Inner: &Inner{Depth: 2}}
	obj, err := New(sample)
	require.NoError(t, err)

	tests := []struct {
		name string
		want any
	}{
		{name: "MyField", want: int32(0)},
		{name: "myField", want: int32(0)},
		{name: "caption", want: ""},
		{name: "Depth", want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := dispatchTo(t, obj, dispatch.FieldGet, tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, reply.Value)
		})
	}

	_, err = dispatchTo(t, obj, dispatch.FieldSet, "myField", "17")
	require.NoError(t, err)
	require.Equal(t, int32(17), sample.MyField)

	_, err = dispatchTo(t, obj, dispatch.FieldSet, "caption", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", sample.Label)

	_, err = dispatchTo(t, obj, dispatch.FieldGet, "hidden")
	require.ErrorIs(t, err, dispatch.ErrMemberNotFound)

	_, err = dispatchTo(t, obj, dispatch.FieldSet, "MyField", "x")
	require.ErrorIs(t, err, dispatch.ErrInvalidArgumentValue)

	_, err = dispatchTo(t, obj, dispatch.FieldSet, "MyField", 1, 2)
	require.ErrorIs(t, err, dispatch.ErrArgumentCount)

	_, err = dispatchTo(t, obj, dispatch.FieldGet, "MyField", 1)
	require.ErrorIs(t, err, dispatch.ErrArgumentCount)

	// A nil embedded pointer makes the promoted field unreachable.
	obj, err = New(&Sample{})
	require.NoError(t, err)
	_, err = dispatchTo(t, obj, dispatch.FieldGet, "Depth")
	require.ErrorIs(t, err, dispatch.ErrTargetFailed)
}

func TestNativeIndexer(t *testing.T) {
	t.Run("map", func(t *testing.T) {
		m := map[string]int{"a": 1}
		obj, err := New(m)
		require.NoError(t, err)

		reply, err := dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, "a")
		require.NoError(t, err)
		require.Equal(t, 1, reply.Value)

		reply, err = dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, "b")
		require.NoError(t, err)
		require.Equal(t, 0, reply.Value)

		_, err = dispatchTo(t, obj, dispatch.PropertySet, dispatch.IndexerName, "b", int8(2))
		require.NoError(t, err)
		require.Equal(t, 2, m["b"])
	})

	t.Run("nested slices", func(t *testing.T) {
		matrix := [][]int{{1, 2}, {3, 4}}
		obj, err := New(matrix)
		require.NoError(t, err)

		reply, err := dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, 1, 0)
		require.NoError(t, err)
		require.Equal(t, 3, reply.Value)

		_, err = dispatchTo(t, obj, dispatch.PropertySet, dispatch.IndexerName, 0, 1, 20)
		require.NoError(t, err)
		require.Equal(t, 20, matrix[0][1])

		_, err = dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, 2, 0)
		require.ErrorIs(t, err, dispatch.ErrTargetFailed)

		_, err = dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, 0, 0, 0)
		require.ErrorIs(t, err, dispatch.ErrArgumentCount)
	})

	t.Run("array", func(t *testing.T) {
		obj, err := New([3]string{"x", "y", "z"})
		require.NoError(t, err)

		_, err = dispatchTo(t, obj, dispatch.PropertySet, dispatch.IndexerName, 2, "w")
		require.NoError(t, err)

		reply, err := dispatchTo(t, obj, dispatch.PropertyGet, dispatch.IndexerName, 2)
		require.NoError(t, err)
		require.Equal(t, "w", reply.Value)
	})
}

func TestDispatchValidates(t *testing.T) {
	obj, err := New(&Sample{})
	require.NoError(t, err)

	_, err = dispatchTo(t, obj, dispatch.Method, "")
	require.ErrorIs(t, err, dispatch.ErrEmptyName)

	_, err = dispatchTo(t, obj, dispatch.PropertySet, "MyProp")
	require.ErrorIs(t, err, dispatch.ErrArgumentCount)
}

func TestMembers(t *testing.T) {
	obj, err := New(&Sample{})
	require.NoError(t, err)

	members := obj.Members()
	require.Contains(t, members, dispatch.Member{Name: "SetMyProp", Kind: dispatch.Method})
	require.Contains(t, members, dispatch.Member{Name: "MyProp", Kind: dispatch.PropertyGet})
	require.Contains(t, members, dispatch.Member{Name: "Title", Kind: dispatch.PropertyGet})
	require.Contains(t, members, dispatch.Member{Name: "Item", Kind: dispatch.PropertyGet})
	require.Contains(t, members, dispatch.Member{Name: "MyField", Kind: dispatch.FieldGet})
	require.NotContains(t, members, dispatch.Member{Name: "hidden", Kind: dispatch.FieldGet})

	require.Equal(t, []string{"Depth", "Label", "MyField"}, Fields(Sample{}))
}
