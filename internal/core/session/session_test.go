package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vim-fall/fall.vim/internal/core/item"
)

func TestStore_SaveAndList(t *testing.T) {
	st := New(0)
	require.NoError(t, st.Save(Session{Name: "files", Context: item.Context{Query: "a"}}))
	require.NoError(t, st.Save(Session{Name: "files", Context: item.Context{Query: "b"}}))

	list := st.List()
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Context.Query, "most-recent-first")
	assert.Equal(t, "a", list[1].Context.Query)
}

func TestStore_RejectsReservedNames(t *testing.T) {
	st := New(0)
	err := st.Save(Session{Name: "@action"})
	require.Error(t, err)
	assert.Equal(t, 0, st.Len())

	err = st.Save(Session{Name: "@session"})
	require.Error(t, err)
}

func TestStore_EvictsOldestOverCapacity(t *testing.T) {
	st := New(2)
	require.NoError(t, st.Save(Session{Name: "a"}))
	require.NoError(t, st.Save(Session{Name: "b"}))
	require.NoError(t, st.Save(Session{Name: "c"}))

	list := st.List()
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].Name)
	assert.Equal(t, "b", list[1].Name)
}

func TestStore_LoadByNameAndNumber(t *testing.T) {
	st := New(0)
	require.NoError(t, st.Save(Session{Name: "files", Context: item.Context{Query: "1"}}))
	require.NoError(t, st.Save(Session{Name: "grep", Context: item.Context{Query: "2"}}))
	require.NoError(t, st.Save(Session{Name: "files", Context: item.Context{Query: "3"}}))

	s, ok := st.Load(LoadQuery{})
	require.True(t, ok)
	assert.Equal(t, "3", s.Context.Query, "default number=1 loads the most recent overall")

	s, ok = st.Load(LoadQuery{Name: "files"})
	require.True(t, ok)
	assert.Equal(t, "3", s.Context.Query)

	s, ok = st.Load(LoadQuery{Name: "files", Number: 2})
	require.True(t, ok)
	assert.Equal(t, "1", s.Context.Query, "second-most-recent files session")
}

func TestStore_LoadOutOfRangeReturnsFalse(t *testing.T) {
	st := New(0)
	_, ok := st.Load(LoadQuery{})
	assert.False(t, ok)

	require.NoError(t, st.Save(Session{Name: "files"}))
	_, ok = st.Load(LoadQuery{Number: 5})
	assert.False(t, ok)

	_, ok = st.Load(LoadQuery{Name: "nonexistent"})
	assert.False(t, ok)
}
