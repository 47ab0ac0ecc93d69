package previewserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/jinzhu/copier"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	log "github.com/sirupsen/logrus"

	"sar-stac/assets"
	"sar-stac/util"
)

type searchRequest struct {
	Lat     float64
	Lng     float64
	GroupBy string
}

type searchEntry struct {
	ID         string            `json:"id"`
	Collection string            `json:"collection"`
	Acquired   time.Time         `json:"acquired"`
	Platform   string            `json:"platform,omitempty"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Thumb      string            `json:"thumb,omitempty"`
	Count      int               `json:"count"`

	Footprint orb.Polygon `json:"-"`
}

type searchResponse struct {
	Results []*searchEntry `json:"results"`
	Error   string         `json:"error,omitempty"`
}

func parseSearchRequest(r *http.Request) (*searchRequest, error) {
	r.ParseForm()
	req := &searchRequest{
		GroupBy: r.Form.Get("group_by"),
	}
	var err error
	lat := r.Form.Get("lat")
	if lat == "" {
		return nil, fmt.Errorf("missing lat")
	}
	req.Lat, err = strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad lat: %v", err)
	}
	lng := r.Form.Get("lng")
	if lng == "" {
		return nil, fmt.Errorf("missing lng")
	}
	req.Lng, err = strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, fmt.Errorf("bad lng: %v", err)
	}
	switch req.GroupBy {
	case "", "date", "satellite":
	default:
		return nil, fmt.Errorf("bad group_by %q", req.GroupBy)
	}
	return req, nil
}

func dateOfEntry(e *searchEntry) string {
	return e.Acquired.In(util.LocationOrDie()).Format("2006-01-02")
}

func sameDate(e1, e2 *searchEntry) bool {
	return dateOfEntry(e1) == dateOfEntry(e2)
}

// samePass groups acquisitions of one platform taken within an hour of each other.
func samePass(e1, e2 *searchEntry) bool {
	delta := e1.Acquired.Sub(e2.Acquired)
	if delta < 0 {
		delta = -1 * delta
	}
	return e1.Platform != "" && e1.Platform == e2.Platform && delta < time.Hour
}

func mergeEntry(base, other *searchEntry) *searchEntry {
	ret := &searchEntry{}
	copier.Copy(ret, base)

	ret.Count = base.Count + other.Count
	if other.Acquired.After(ret.Acquired) {
		ret.Acquired = other.Acquired
	}

	if samePass(base, other) {
		ret.Footprint = util.PolyUnion(base.Footprint, other.Footprint)
		ret.Geometry = geojson.NewGeometry(ret.Footprint)
	} else {
		ret.Footprint = nil
		ret.Geometry = nil
		ret.Platform = ""
	}
	ret.ID = ""
	ret.Thumb = ""
	return ret
}

type equality func(e1, e2 *searchEntry) bool

func flatten(isEqual equality, entries []*searchEntry) []*searchEntry {
	var ret []*searchEntry
outer:
	for _, ne := range entries {
		for i := len(ret) - 1; i >= 0; i-- {
			if isEqual(ne, ret[i]) {
				ret[i] = mergeEntry(ret[i], ne)
				continue outer
			}
		}
		ret = append(ret, ne)
	}
	return ret
}

// matching returns the items whose footprint contains p, most recent first.
func (s *Server) matching(p orb.Point) []*searchEntry {
	var out []*searchEntry
	for _, col := range s.catalog.Collections() {
		for _, it := range col.Items() {
			if it.Geometry == nil || !planar.PolygonContains(it.Geometry, p) {
				continue
			}
			e := &searchEntry{
				ID:         it.ID,
				Collection: col.ID,
				Acquired:   it.Start,
				Platform:   it.Platform,
				Geometry:   geojson.NewGeometry(it.Geometry),
				Count:      1,
				Footprint:  it.Geometry,
			}
			if _, _, ok := it.Assets.WithRole(assets.RoleThumbnail); ok {
				e.Thumb = s.mount + "/api/thumb/" + it.ID
			}
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Acquired.After(out[j].Acquired)
	})
	return out
}

func (s *Server) serveSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	jsonError := func(err error, code int) {
		w.WriteHeader(code)
		sr := &searchResponse{Error: err.Error()}
		if err := json.NewEncoder(w).Encode(sr); err != nil {
			log.Errorf("error encode: %v", err)
		}
	}

	req, err := parseSearchRequest(r)
	if err != nil {
		log.Errorf("search parseSearchRequest: %v", err)
		jsonError(err, http.StatusBadRequest)
		return
	}
	log.Debugf("Search request: %+v", spew.Sdump(req))

	entries := s.matching(orb.Point{req.Lng, req.Lat})
	switch req.GroupBy {
	case "date":
		entries = flatten(sameDate, entries)
	case "satellite":
		entries = flatten(samePass, entries)
	}

	sr := &searchResponse{Results: entries}
	if sr.Results == nil {
		sr.Results = []*searchEntry{}
	}
	if err := json.NewEncoder(w).Encode(sr); err != nil {
		log.Errorf("search encode: %v", err)
	}
}
