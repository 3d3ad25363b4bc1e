package discovery_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/remnant/pkg/discovery"
	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := discovery.NewSet()
	s.Add("/b")
	s.AddAll("/a", "/b", "/c")
	s.Remove("/c")

	assert.True(t, s.Contains("/a"))
	assert.False(t, s.Contains("/c"))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"/a", "/b"}, s.Snapshot())
}

func TestSetConcurrentWriters(t *testing.T) {
	s := discovery.NewSet()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				s.Add(fmt.Sprintf("/root/%d", i))
				s.AddAll(fmt.Sprintf("/worker/%d/%d", w, i))
				_ = s.Contains("/root/0")
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 100+8*100, s.Len())
}
