package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecopia-map/scan_colorizer/internal/labels"
	"github.com/ecopia-map/scan_colorizer/internal/options"
)

func TestParseFlagsForCommandExport(t *testing.T) {
	flags, err := ParseFlagsForCommandExport([]string{
		"-d", "/data/ScanNet", "-result-set", "proposed", "-o", "/out", "-t", "0, 0, 3", "-m", "-b", "none", "-w", "2",
	})
	require.NoError(t, err)

	opts, err := flags.Options()
	require.NoError(t, err)
	assert.Equal(t, options.ModeExport, opts.Mode)
	assert.Equal(t, "/data/ScanNet", opts.DataRoot)
	assert.Equal(t, "proposed", opts.ResultSet)
	assert.Equal(t, "/out", opts.OutputDir)
	assert.Equal(t, [3]float64{0, 0, 3}, opts.InstanceOffset)
	assert.True(t, opts.Markers)
	assert.Equal(t, labels.BackgroundNone, opts.Background)
	assert.Equal(t, 2, opts.Workers)
	assert.Equal(t, options.DefaultSplit, opts.Split)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "colorizer.yaml")
	content := "dataRoot: /from/config\nresultSet: fusion\nsplit: train\noutputDir: /config/out\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	flags, err := ParseFlagsForCommandExport([]string{"-config", path, "-split", "val"})
	require.NoError(t, err)

	opts, err := flags.Options()
	require.NoError(t, err)
	assert.Equal(t, "/from/config", opts.DataRoot)
	assert.Equal(t, "fusion", opts.ResultSet)
	assert.Equal(t, "val", opts.Split)
	assert.Equal(t, "/config/out", opts.OutputDir)
	assert.Equal(t, [3]float64{0, 10, 0}, opts.InstanceOffset)
}

func TestParseFlagsForCommandView(t *testing.T) {
	flags, err := ParseFlagsForCommandView([]string{"-data-root", "/d", "-r", "x", "-o", "/preview", "-n", "100"})
	require.NoError(t, err)
	assert.True(t, flags.IsSet("preview-dir"))
	assert.False(t, flags.IsSet("output"))

	opts, err := flags.Options()
	require.NoError(t, err)
	assert.Equal(t, options.ModeView, opts.Mode)
	assert.Equal(t, "/preview", opts.PreviewDir)
	assert.Equal(t, 100, opts.PreviewMaxPoints)
}

func TestParseFlagsErrors(t *testing.T) {
	_, err := ParseFlagsForCommandVerify([]string{"-unknown"})
	assert.Error(t, err)

	flags, err := ParseFlagsForCommandStats([]string{"-b", "largest"})
	require.NoError(t, err)
	_, err = flags.Options(options.ModeStats)
	assert.Error(t, err)

	export, err := ParseFlagsForCommandExport([]string{"-offset", "1,2"})
	require.NoError(t, err)
	_, err = export.Options()
	assert.Error(t, err)
}

func TestParseOffset(t *testing.T) {
	offset, err := ParseOffset("0,10,0")
	require.NoError(t, err)
	assert.Equal(t, [3]float64{0, 10, 0}, offset)

	_, err = ParseOffset("a,b,c")
	assert.Error(t, err)
}
