package osbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/buzzbuster/internal/model"
)

func TestDecoder(t *testing.T) {
	input := strings.Join([]string{
		`{"package_name":"com.shop","app_name":"Shop","title":"Big","content":"SALE","key":"k1"}`,
		``,
		`not json`,
		`{"package_name":"com.music","is_ongoing":true,"key":"k2"}`,
		`{"title":"no package"}`,
	}, "\n")
	d := NewDecoder(strings.NewReader(input))

	n, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, model.PostedNotification{
		PackageName: "com.shop", AppName: "Shop", Title: "Big", Content: "SALE", DeliveryKey: "k1",
	}, n)

	_, err = d.Next()
	var le *LineError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 3, le.Line)

	n, err = d.Next()
	require.NoError(t, err)
	assert.True(t, n.IsOngoing)

	_, err = d.Next()
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 5, le.Line)

	_, err = d.Next()
	assert.True(t, errors.Is(err, io.EOF))
}

func TestDecoder_SkipsOversizedLine(t *testing.T) {
	big := `{"package_name":"com.news","key":"k0","content":"` + strings.Repeat("a", 2<<20) + `"}`
	valid := `{"package_name":"com.shop","title":"Big","key":"k1"}`
	d := NewDecoder(strings.NewReader(big + "\n" + valid + "\n"))

	_, err := d.Next()
	var le *LineError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 1, le.Line)
	assert.ErrorIs(t, err, ErrLineTooLong)

	n, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "k1", n.DeliveryKey)
	assert.Equal(t, "Big", n.Title)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_LastLineWithoutNewline(t *testing.T) {
	d := NewDecoder(strings.NewReader(`{"package_name":"com.shop","key":"k1"}`))

	n, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, "com.shop", n.PackageName)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecoder_OversizedLastLine(t *testing.T) {
	d := NewDecoder(strings.NewReader(strings.Repeat("x", maxLineBytes+10)))

	_, err := d.Next()
	assert.ErrorIs(t, err, ErrLineTooLong)

	_, err = d.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEmitter_WritesOneLinePerCommand(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)
	ctx := context.Background()

	require.NoError(t, e.Cancel(ctx, model.CancelNotification{DeliveryKey: "k1"}))
	require.NoError(t, e.Post(ctx, model.PostNotification{
		Channel: "buzzbuster_restored", ID: "restored-1", Title: "Big", Content: "SALE", Subtext: "Restored from Shop",
	}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"op":"cancel","key":"k1"}`, lines[0])
	assert.JSONEq(t, `{"op":"post","channel":"buzzbuster_restored","id":"restored-1","title":"Big","content":"SALE","subtext":"Restored from Shop"}`, lines[1])
}

func TestEmitter_CancelledContext(t *testing.T) {
	var buf bytes.Buffer
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewEmitter(&buf).Cancel(ctx, model.CancelNotification{DeliveryKey: "k"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, buf.Len())
}

func TestEmitter_ConcurrentWritesDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmitter(&buf)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Cancel(context.Background(), model.CancelNotification{DeliveryKey: strings.Repeat("x", 200)})
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 50)
	for _, l := range lines {
		var c map[string]string
		require.NoError(t, json.Unmarshal([]byte(l), &c))
		assert.Equal(t, "cancel", c["op"])
	}
}
