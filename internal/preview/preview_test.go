package preview

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/scan_colorizer/internal/data"
)

func TestDownsample(t *testing.T) {
	points := make([]data.Point, 10)
	for i := range points {
		points[i].X = float64(i)
	}

	assert.Len(t, Downsample(points, 0), 10)
	assert.Len(t, Downsample(points, 20), 10)

	sampled := Downsample(points, 3)
	require.Len(t, sampled, 3)
	assert.Equal(t, []float64{0, 4, 8}, []float64{sampled[0].X, sampled[1].X, sampled[2].X})
}

func TestRender(t *testing.T) {
	semantic := data.NewCloud("semantic", []data.Point{
		{X: 0, Y: 0, R: 171, G: 198, B: 230},
		{X: 1, Y: 1, R: 189, G: 189, B: 57},
	})
	instance := semantic.Clone("instance").Translate(0, 10, 0)

	path := filepath.Join(t.TempDir(), "scene.png")
	opts := DefaultOptions()
	opts.Title = "scene"
	require.NoError(t, Render(path, opts, semantic, instance))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestViewRange(t *testing.T) {
	semantic := data.NewCloud("semantic", []data.Point{{X: 0, Y: 0}, {X: 4, Y: 1}})
	instance := data.NewCloud("instance", []data.Point{{X: 1, Y: 10, Z: 3}})

	min, max, ok := viewRange(semantic, instance, nil)
	require.True(t, ok)
	// 4 x 10 bounds widened to a 10 x 10 square around their center
	assert.Equal(t, [2]float64{-3, 0}, min)
	assert.Equal(t, [2]float64{7, 10}, max)

	min, max, ok = viewRange(data.NewCloud("point", []data.Point{{X: 2, Y: 2}}))
	require.True(t, ok)
	assert.Equal(t, [2]float64{1.5, 1.5}, min)
	assert.Equal(t, [2]float64{2.5, 2.5}, max)

	_, _, ok = viewRange(data.NewCloud("empty", nil))
	assert.False(t, ok)
}

func TestRenderEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	err := Render(path, DefaultOptions(), data.NewCloud("empty", nil), nil)
	assert.ErrorIs(t, err, ErrNothingToDraw)
}

func TestServe(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.png"), []byte("png"), 0644))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, listener, dir) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/scene.png")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, "png", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
