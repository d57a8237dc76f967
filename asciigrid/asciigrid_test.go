package asciigrid

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/array"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const sample = `ncols 4
nrows 3
xllcorner 100
yllcorner 200
cellsize 10
NODATA_value -9999
1 2 3 4
5 -9999 7 8
9 10 11 12
`

func TestRead(t *testing.T) {
	g, err := Read(strings.NewReader(sample), "sample", "EPSG:3857")
	require.NoError(t, err)

	assert.Equal(t, 4, g.Width())
	assert.Equal(t, 3, g.Height())
	assert.Equal(t, "EPSG:3857", g.CRS())
	assert.Equal(t, orb.Bound{Min: orb.Point{100, 200}, Max: orb.Point{140, 230}}, g.Bounds())

	nodata, ok := g.Nodata()
	assert.True(t, ok)
	assert.Equal(t, -9999.0, nodata)

	assert.Equal(t, 1.0, g.Sample(0, 0, 0))
	assert.Equal(t, -9999.0, g.Sample(1, 1, 0))
	assert.Equal(t, 12.0, g.Sample(2, 3, 0))

	minValue, maxValue := g.Range()
	assert.Equal(t, 1.0, minValue)
	assert.Equal(t, 12.0, maxValue)
}

func TestReadCenterAndDxDy(t *testing.T) {
	content := `NCOLS 2
NROWS 2
XLLCENTER 5
YLLCENTER 2.5
DX 10
DY 5
1 2
3 4`

	g, err := Read(strings.NewReader(content), "", "")
	require.NoError(t, err)

	cellX, cellY := g.CellSize()
	assert.Equal(t, 10.0, cellX)
	assert.Equal(t, 5.0, cellY)
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{20, 10}}, g.Bounds())

	_, ok := g.Nodata()
	assert.False(t, ok)
}

func TestReadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "too few values", content: "ncols 2\nnrows 2\nxllcorner 0\nyllcorner 0\ncellsize 1\n1 2 3"},
		{name: "bad value", content: "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 1\nabc"},
		{name: "unknown header", content: "ncols 1\nnrows 1\nfoo 0\n1"},
		{name: "missing cellsize", content: "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\n1"},
		{name: "zero rows", content: "ncols 1\nnrows 0\nxllcorner 0\nyllcorner 0\ncellsize 1\n"},
		{name: "zero cellsize", content: "ncols 1\nnrows 1\nxllcorner 0\nyllcorner 0\ncellsize 0\n1"},
		{name: "overflowing size", content: "ncols 4294967296\nnrows 4294967296\nxllcorner 0\nyllcorner 0\ncellsize 1\n1"},
		{name: "too many cells", content: "ncols 100000\nnrows 100000\nxllcorner 0\nyllcorner 0\ncellsize 1\n1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tc.content), "", "")
			assert.Error(t, err)
		})
	}
}

func TestWriteRoundTrip(t *testing.T) {
	g, err := Read(strings.NewReader(sample), "sample", "EPSG:3857")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g, 0))
	assert.Equal(t, sample, buf.String())

	again, err := Read(&buf, "sample", "EPSG:3857")
	require.NoError(t, err)
	assert.True(t, again.Array().Equals(g.Array()))
	assert.Equal(t, g.Bounds(), again.Bounds())

	assert.Error(t, Write(&buf, g, 1))
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.asc")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	g, err := Open(path, "EPSG:3857", nil)
	require.NoError(t, err)
	assert.Equal(t, "input", g.Name())

	out := filepath.Join(dir, "output.asc")
	require.NoError(t, WriteFile(out, g, 0))

	again, err := ReadFile(out, "EPSG:3857")
	require.NoError(t, err)
	assert.True(t, again.Array().Equals(g.Array()))

	_, err = ReadFile(filepath.Join(dir, "missing.asc"), "")
	assert.Error(t, err)
}

func TestOpenURL(t *testing.T) {
	ln := fasthttputil.NewInmemoryListener()
	defer ln.Close()

	server := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			if string(ctx.Path()) != "/grids/remote.asc" {
				ctx.SetStatusCode(fasthttp.StatusNotFound)
				return
			}
			ctx.SetBodyString(sample)
		},
	}
	go server.Serve(ln)
	defer server.Shutdown()

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}

	g, err := Open("http://grids.test/grids/remote.asc", "EPSG:3857", client)
	require.NoError(t, err)
	assert.Equal(t, "remote", g.Name())
	assert.Equal(t, 4, g.Width())

	_, err = Open("http://grids.test/grids/missing.asc", "EPSG:3857", client)
	assert.Error(t, err)
}

func TestStack(t *testing.T) {
	transform := *affine.NorthUp(0, 20, 10, 10)
	newBand := func(value float64) *grid.Grid {
		g, err := grid.New(array.NewArray(2, 2, 1, value), grid.Options{Name: "b", CRS: "EPSG:3857", Transform: transform})
		require.NoError(t, err)
		return g
	}

	stacked, err := Stack(newBand(1), newBand(2), newBand(3))
	require.NoError(t, err)
	assert.Equal(t, 3, stacked.BandCount())
	for band := 0; band < 3; band++ {
		assert.Equal(t, float64(band+1), stacked.Sample(1, 1, band))
	}

	other, err := grid.New(array.NewArray(3, 2, 1), grid.Options{Transform: transform, CRS: "EPSG:3857"})
	require.NoError(t, err)
	_, err = Stack(newBand(1), other)
	assert.Error(t, err)

	_, err = Stack()
	assert.Error(t, err)
}
