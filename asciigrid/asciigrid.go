// Package asciigrid reads and writes single band ESRI ASCII grids
package asciigrid

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/brendan-ward/rastertransform/affine"
	"github.com/brendan-ward/rastertransform/array"
	"github.com/brendan-ward/rastertransform/grid"
	"github.com/valyala/fasthttp"
)

type header struct {
	ncols     int
	nrows     int
	xll       float64
	yll       float64
	center    bool
	cellSizeX float64
	cellSizeY float64
	nodata    float64
	hasNodata bool
}

// Read parses an ASCII grid. crs is recorded on the grid as is.
func Read(r io.Reader, name string, crs string) (*grid.Grid, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanWords)

	h, first, err := readHeader(scanner)
	if err != nil {
		return nil, err
	}

	data := array.NewArray(h.ncols, h.nrows, 1)
	buffer := data.Band(0)
	for i := range buffer {
		token := first
		first = ""
		if token == "" {
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil {
					return nil, err
				}
				return nil, fmt.Errorf("expected %v values, got %v", len(buffer), i)
			}
			token = scanner.Text()
		}
		v, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q at row %v, column %v: %w", token, i/h.ncols, i%h.ncols, err)
		}
		buffer[i] = v
	}

	xll, yll := h.xll, h.yll
	if h.center {
		xll -= h.cellSizeX / 2
		yll -= h.cellSizeY / 2
	}

	return grid.New(data, grid.Options{
		Name:      name,
		CRS:       crs,
		Transform: *affine.NorthUp(xll, yll+float64(h.nrows)*h.cellSizeY, h.cellSizeX, h.cellSizeY),
		Nodata:    h.nodata,
		HasNodata: h.hasNodata,
	})
}

// readHeader reads key / value pairs up to the first value. The first value
// is returned as it has been consumed from the scanner.
func readHeader(scanner *bufio.Scanner) (h header, first string, err error) {
	var hasX, hasY, hasCell bool
	for scanner.Scan() {
		key := scanner.Text()
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = key
			break
		}
		if !scanner.Scan() {
			return h, "", fmt.Errorf("missing value for header %q", key)
		}
		value := scanner.Text()

		switch strings.ToLower(key) {
		case "ncols":
			h.ncols, err = strconv.Atoi(value)
		case "nrows":
			h.nrows, err = strconv.Atoi(value)
		case "xllcorner", "xllcenter":
			h.xll, err = strconv.ParseFloat(value, 64)
			h.center = h.center || strings.EqualFold(key, "xllcenter")
			hasX = true
		case "yllcorner", "yllcenter":
			h.yll, err = strconv.ParseFloat(value, 64)
			h.center = h.center || strings.EqualFold(key, "yllcenter")
			hasY = true
		case "cellsize":
			h.cellSizeX, err = strconv.ParseFloat(value, 64)
			h.cellSizeY = h.cellSizeX
			hasCell = true
		case "dx":
			h.cellSizeX, err = strconv.ParseFloat(value, 64)
			hasCell = true
		case "dy":
			h.cellSizeY, err = strconv.ParseFloat(value, 64)
			hasCell = true
		case "nodata_value":
			h.nodata, err = strconv.ParseFloat(value, 64)
			h.hasNodata = true
		default:
			return h, "", fmt.Errorf("unknown header %q", key)
		}
		if err != nil {
			return h, "", fmt.Errorf("invalid value %q for header %q: %w", value, key, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return h, "", err
	}

	if h.ncols <= 0 || h.nrows <= 0 {
		return h, "", fmt.Errorf("ncols and nrows must be > 0, got %v and %v", h.ncols, h.nrows)
	}
	if err := array.CheckSize(h.ncols, h.nrows, 1); err != nil {
		return h, "", fmt.Errorf("grid is too large: %w", err)
	}
	if !hasX || !hasY || !hasCell {
		return h, "", errors.New("header must define xllcorner, yllcorner and cellsize")
	}

	return h, first, nil
}

// ReadFile reads an ASCII grid from path, named after the file
func ReadFile(path string, crs string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Read(bufio.NewReader(f), nameOf(path), crs)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	return g, nil
}

// Open reads an ASCII grid from a local path or an http(s) URL. client may
// be nil to use a default client.
func Open(pathOrURL string, crs string, client *fasthttp.Client) (*grid.Grid, error) {
	if !strings.HasPrefix(pathOrURL, "http://") && !strings.HasPrefix(pathOrURL, "https://") {
		return ReadFile(pathOrURL, crs)
	}

	if client == nil {
		client = &fasthttp.Client{}
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(pathOrURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	if err := client.Do(req, resp); err != nil {
		return nil, fmt.Errorf("could not fetch %q: %w", pathOrURL, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("could not fetch %q: status %v", pathOrURL, resp.StatusCode())
	}

	g, err := Read(bytes.NewReader(resp.Body()), nameOf(string(req.URI().Path())), crs)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", pathOrURL, err)
	}
	return g, nil
}

func nameOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Write writes one band of g as an ASCII grid
func Write(w io.Writer, g *grid.Grid, band int) error {
	if band < 0 || band >= g.BandCount() {
		return fmt.Errorf("band %v out of range, grid has %v band(s)", band, g.BandCount())
	}

	bw := bufio.NewWriter(w)
	bounds := g.Bounds()
	cellSizeX, cellSizeY := g.CellSize()

	fmt.Fprintf(bw, "ncols %v\nnrows %v\n", g.Width(), g.Height())
	fmt.Fprintf(bw, "xllcorner %v\nyllcorner %v\n", format(bounds.Min[0]), format(bounds.Min[1]))
	if cellSizeX == cellSizeY {
		fmt.Fprintf(bw, "cellsize %v\n", format(cellSizeX))
	} else {
		fmt.Fprintf(bw, "dx %v\ndy %v\n", format(cellSizeX), format(cellSizeY))
	}
	if nodata, ok := g.Nodata(); ok {
		fmt.Fprintf(bw, "NODATA_value %v\n", format(nodata))
	}

	var err error
	g.Lines(band, func(_ int, line []float64) bool {
		for i, v := range line {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(format(v))
		}
		_, err = bw.WriteString("\n")
		return err == nil
	})
	if err != nil {
		return err
	}

	return bw.Flush()
}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteFile writes one band of g to path
func WriteFile(path string, g *grid.Grid, band int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, g, band); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Stack combines single band grids with the same geometry into one
// multiband grid, taking metadata from the first grid.
func Stack(grids ...*grid.Grid) (*grid.Grid, error) {
	if len(grids) == 0 {
		return nil, errors.New("no grids to stack")
	}
	if len(grids) == 1 {
		return grids[0], nil
	}

	first := grids[0]
	data := array.NewArray(first.Width(), first.Height(), len(grids))
	for band, g := range grids {
		if g.BandCount() != 1 {
			return nil, fmt.Errorf("grid %q has %v bands, expected 1", g.Name(), g.BandCount())
		}
		if g.Width() != first.Width() || g.Height() != first.Height() || g.Transform() != first.Transform() {
			return nil, fmt.Errorf("grid %q does not have the same dimensions and transform as %q", g.Name(), first.Name())
		}
		if g.CRS() != first.CRS() {
			return nil, fmt.Errorf("grid %q has CRS %q, expected %q", g.Name(), g.CRS(), first.CRS())
		}

		g.Lines(0, func(row int, line []float64) bool {
			copy(data.Row(row, band), line)
			return true
		})
	}

	opts := first.Options()
	opts.HasRange = false
	return grid.New(data, opts)
}
