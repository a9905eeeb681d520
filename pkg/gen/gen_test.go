package gen

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerial_Next(t *testing.T) {
	serial, err := NewSerial(1, "T")
	require.NoError(t, err)

	const n = 1000
	var mu sync.Mutex
	var wg sync.WaitGroup
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next := serial.Next()
			mu.Lock()
			seen[next] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for s := range seen {
		assert.True(t, strings.HasPrefix(s, "T"))
		break
	}
}

func TestNewSerial_InvalidNode(t *testing.T) {
	_, err := NewSerial(4096, "W")
	assert.Error(t, err)
}
