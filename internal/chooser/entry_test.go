package chooser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSort_DirectoriesFirst(t *testing.T) {
	entries := []Entry{
		{Name: "zebra.txt"},
		{Name: "apricot", IsDir: true},
		{Name: "banana.txt"},
	}
	Sort(entries, SortByName, false)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, "apricot", entries[0].Name)
}

func TestSort_ByNameCaseInsensitive(t *testing.T) {
	entries := []Entry{{Name: "Banana.txt"}, {Name: "apple.txt"}}
	Sort(entries, SortByName, false)
	assert.Equal(t, "apple.txt", entries[0].Name)
}

func TestSort_BySizeReverse(t *testing.T) {
	entries := []Entry{{Name: "a", Size: 10}, {Name: "b", Size: 30}, {Name: "c", Size: 20}}
	Sort(entries, SortBySize, true)
	assert.Equal(t, []int64{30, 20, 10}, []int64{entries[0].Size, entries[1].Size, entries[2].Size})
}

func TestSort_ByModTime(t *testing.T) {
	now := time.Unix(1000, 0)
	entries := []Entry{
		{Name: "old", ModTime: now},
		{Name: "new", ModTime: now.Add(time.Hour)},
	}
	Sort(entries, SortByModTime, false)
	assert.Equal(t, "old", entries[0].Name)
}

func TestToggleAndTagged(t *testing.T) {
	entries := []Entry{{Name: "a"}, {Name: "b"}, {Name: "c"}}
	Toggle(entries, 0)
	Toggle(entries, 2)
	tagged := Tagged(entries)
	assert.Len(t, tagged, 2)
	assert.Equal(t, "a", tagged[0].Name)
	assert.Equal(t, "c", tagged[1].Name)
}
