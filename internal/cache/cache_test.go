package cache

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGet(t *testing.T) {
	c := New[string]()
	stamp := HashBytes([]byte("class A {}"))

	_, ok := c.Get("src/A.java", stamp)
	assert.False(t, ok)

	c.Set("src/A.java", stamp, "parsed")
	v, ok := c.Get("src/A.java", stamp)
	require.True(t, ok)
	assert.Equal(t, "parsed", v)

	v, ok = c.Get("src/./A.java", stamp)
	assert.True(t, ok, "paths are cleaned")
	assert.Equal(t, "parsed", v)

	stats := c.GetStats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestStaleStamp(t *testing.T) {
	c := New[int]()
	c.Set("A.java", HashBytes([]byte("v1")), 1)

	_, ok := c.Get("A.java", HashBytes([]byte("v2")))
	assert.False(t, ok)

	c.Set("A.java", HashBytes([]byte("v2")), 2)
	v, ok := c.Get("A.java", HashBytes([]byte("v2")))
	require.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, 1, c.GetStats().Entries)
}

func TestInvalidateAndClear(t *testing.T) {
	c := New[int]()
	c.Set("A.java", "s", 1)
	c.Set("B.java", "s", 2)

	c.Invalidate("A.java")
	_, ok := c.Get("A.java", "s")
	assert.False(t, ok)

	c.Clear()
	assert.Zero(t, c.GetStats().Entries)
}

func TestHashBytes(t *testing.T) {
	a := HashBytes([]byte("hello"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashBytes([]byte("hello")))
	assert.NotEqual(t, a, HashBytes([]byte("world")))
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A {}"), 0o644))

	h, err := HashFile(path)
	require.NoError(t, err)
	assert.Equal(t, HashBytes([]byte("class A {}")), h)

	_, err = HashFile(filepath.Join(t.TempDir(), "missing.java"))
	assert.Error(t, err)
}

func TestStatStamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "A.java")
	require.NoError(t, os.WriteFile(path, []byte("class A {}"), 0o644))
	info, err := os.Stat(path)
	require.NoError(t, err)
	before := StatStamp(info)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.NotEqual(t, before, StatStamp(info))
}

func TestConcurrentAccess(t *testing.T) {
	c := New[int]()
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			path := filepath.Join("src", string(rune('A'+i%8))+".java")
			c.Set(path, "s", i)
			c.Get(path, "s")
		}()
	}
	wg.Wait()
	assert.Equal(t, 8, c.GetStats().Entries)
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("a/b/C.java"), Key("a/b/../b/C.java"))
	assert.NotEqual(t, Key("a/C.java"), Key("b/C.java"))
}
