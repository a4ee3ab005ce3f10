package gpib

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/pressure"
)

// fakeAdapter emulates a Prologix controller: instrument commands are
// recorded and a "++read" request releases the canned reply to the last query.
type fakeAdapter struct {
	mu       sync.Mutex
	replies  map[string]string
	commands []string
	config   []string
	last     string
	out      bytes.Buffer
}

func (f *fakeAdapter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "++read"):
			f.out.WriteString(f.replies[f.last])
		case strings.HasPrefix(line, "++"):
			f.config = append(f.config, line)
		default:
			f.commands = append(f.commands, line)
			f.last = line
		}
	}
	return len(p), nil
}

func (f *fakeAdapter) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.out.Read(p)
}

func TestAddress_Validate(t *testing.T) {
	tests := []struct {
		addr  Address
		valid bool
	}{
		{Address{Primary: 0}, true},
		{Address{Primary: 30}, true},
		{Address{Primary: 5, Secondary: 96}, true},
		{Address{Primary: 5, Secondary: 126}, true},
		{Address{Primary: 31}, false},
		{Address{Primary: -1}, false},
		{Address{Primary: 5, Secondary: 95}, false},
		{Address{Primary: 5, Secondary: 127}, false},
	}
	for _, tt := range tests {
		t.Run(tt.addr.String(), func(t *testing.T) {
			err := tt.addr.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAddress)
			}
		})
	}
}

func TestNewBus_InvalidAddress(t *testing.T) {
	adapter := &fakeAdapter{}
	_, err := NewBus(adapter, Address{Primary: 42})
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Empty(t, adapter.commands)
}

func TestBus_WriteAndQuery(t *testing.T) {
	adapter := &fakeAdapter{replies: map[string]string{"Stable?": "YES\n"}}
	bus, err := NewBus(adapter, Address{Primary: 1})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, bus.Write(ctx, "Setpt 14.7\r"))
	assert.Equal(t, pressure.StatusSuccess, bus.LastStatus())

	resp, err := bus.Query(ctx, "Stable?\r")
	require.NoError(t, err)
	assert.Equal(t, "YES", strings.TrimSpace(resp))
	assert.Equal(t, pressure.StatusTermChar, bus.LastStatus())
	assert.Equal(t, []string{"Setpt 14.7", "Stable?"}, adapter.commands)
	assert.NoError(t, bus.Close())
}

func TestNewBus_SecondaryAddress(t *testing.T) {
	adapter := &fakeAdapter{}
	_, err := NewBus(adapter, Address{Primary: 5, Secondary: 96})
	require.NoError(t, err)
	assert.Contains(t, adapter.config, "++addr 5")
	assert.Equal(t, "++addr 5 96", adapter.config[len(adapter.config)-1])
}

func TestNewBus_PrimaryOnly(t *testing.T) {
	adapter := &fakeAdapter{}
	_, err := NewBus(adapter, Address{Primary: 7})
	require.NoError(t, err)
	assert.Contains(t, adapter.config, "++addr 7")
	for _, line := range adapter.config {
		assert.NotContains(t, line, "++addr 7 ")
	}
}
