package previewserver

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eidolon/wordwrap"
	"github.com/gorilla/mux"
	"github.com/llgcode/draw2d/draw2dimg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/clip"
	"github.com/paulmach/orb/maptile"
	"github.com/paulmach/orb/planar"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	log "github.com/sirupsen/logrus"

	"sar-stac/util"
)

const (
	TileSize = 256
	MaxZoom  = 22

	// Error text is drawn in basicfont.Face7x13: 7px per glyph, 13px per line.
	errorLineHeight = 13
	errorColumns    = TileSize / 7
)

var wrapError = wordwrap.Wrapper(errorColumns, true)

var (
	coverageFill   = color.RGBA{0, 90, 200, 70}
	coverageStroke = color.RGBA{0, 60, 160, 200}
)

func tileFromRequest(r *http.Request) (maptile.Tile, error) {
	x, err := strconv.Atoi(mux.Vars(r)["x"])
	if err != nil {
		return maptile.Tile{}, err
	}
	y, err := strconv.Atoi(mux.Vars(r)["y"])
	if err != nil {
		return maptile.Tile{}, err
	}
	z, err := strconv.Atoi(mux.Vars(r)["z"])
	if err != nil {
		return maptile.Tile{}, err
	}
	if z < 0 || z > MaxZoom {
		return maptile.Tile{}, fmt.Errorf("zoom %d out of range", z)
	}
	if n := 1 << uint(z); x < 0 || y < 0 || x >= n || y >= n {
		return maptile.Tile{}, fmt.Errorf("tile %d/%d out of range at zoom %d", x, y, z)
	}
	return maptile.Tile{X: uint32(x), Y: uint32(y), Z: maptile.Zoom(z)}, nil
}

// dateFromRequest parses an optional calendar day. The zero time means no filter.
func dateFromRequest(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", v, util.LocationOrDie())
}

func blankImage() *image.RGBA {
	return image.NewRGBA(image.Rectangle{
		Min: image.Point{X: 0, Y: 0},
		Max: image.Point{X: TileSize, Y: TileSize},
	})
}

func writeTile(w http.ResponseWriter, code int, img image.Image) {
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(code)
	if err := png.Encode(w, img); err != nil {
		log.Errorf("tile encode: %v", err)
	}
}

func writeErrorTile(w http.ResponseWriter, err error) {
	img := blankImage()

	col := color.RGBA{255, 0, 0, 255}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
	}
	for i, line := range strings.Split(wrapError(err.Error()), "\n") {
		d.Dot = fixed.Point26_6{X: 0, Y: fixed.I(TileSize/2 + i*errorLineHeight)}
		d.DrawString(line)
	}

	writeTile(w, http.StatusBadRequest, img)
}

// tilePixel maps a lon/lat onto pixel coordinates within tile t.
func tilePixel(t maptile.Tile, p orb.Point) (float64, float64) {
	f := maptile.Fraction(p, t.Z)
	return (f[0] - float64(t.X)) * TileSize, (f[1] - float64(t.Y)) * TileSize
}

func drawPolygon(gc *draw2dimg.GraphicContext, t maptile.Tile, p orb.Polygon) {
	gc.BeginPath()
	for _, ring := range p {
		for i, pt := range ring {
			x, y := tilePixel(t, pt)
			if i == 0 {
				gc.MoveTo(x, y)
			} else {
				gc.LineTo(x, y)
			}
		}
		gc.Close()
	}
	gc.FillStroke()
}

// sameDay reports whether ts falls on the calendar day starting at day.
func sameDay(ts, day time.Time) bool {
	ts = ts.In(day.Location())
	return !ts.Before(day) && ts.Before(day.AddDate(0, 0, 1))
}

// serveTile renders the footprints of the catalog's items over one map tile, optionally
// restricted to acquisitions on a given day.
func (s *Server) serveTile(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()

	tile, err := tileFromRequest(r)
	if err != nil {
		writeErrorTile(w, fmt.Errorf("invalid tile argument: %v", err))
		return
	}
	day, err := dateFromRequest(r.Form.Get("date"))
	if err != nil {
		writeErrorTile(w, fmt.Errorf("invalid date %q: %v", r.Form.Get("date"), err))
		return
	}

	img := blankImage()
	gc := draw2dimg.NewGraphicContext(img)
	gc.SetFillColor(coverageFill)
	gc.SetStrokeColor(coverageStroke)
	gc.SetLineWidth(1)

	bound := tile.Bound()
	drawn := 0
	for _, col := range s.catalog.Collections() {
		for _, it := range col.Items() {
			if it.Geometry == nil || it.BBox == nil || !it.BBox.Intersects(bound) {
				continue
			}
			if !day.IsZero() && !sameDay(it.Start, day) {
				continue
			}
			clipped := clip.Polygon(bound, it.Geometry.Clone())
			if len(clipped) == 0 || planar.Area(clipped) == 0 {
				continue
			}
			drawPolygon(gc, tile, clipped)
			drawn++
		}
	}
	log.Debugf("Tile %v: %d footprints", tile, drawn)
	writeTile(w, http.StatusOK, img)
}
