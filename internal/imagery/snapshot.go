package imagery

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"spacezoom-desktop/internal/common"
)

const (
	// Worldview Snapshots endpoint
	WorldviewSnapshotURL = "https://wvs.earthdata.nasa.gov/api/v1/snapshot"

	DefaultSnapshotSize   = 1536
	MaxSnapshotSize       = 4096
	DefaultSnapshotFormat = "image/png"
	DefaultSnapshotCRS    = "EPSG:4326"
)

// LayerOption is a Worldview imagery layer offered for comparison
type LayerOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Region is a named bounding box preset
type Region struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	BBox  string `json:"bbox"` // minLon,minLat,maxLon,maxLat
}

var layers = []LayerOption{
	{ID: "VIIRS_SNPP_CorrectedReflectance_TrueColor", Label: "True Color (VIIRS SNPP)"},
	{ID: "MODIS_Terra_CorrectedReflectance_TrueColor", Label: "True Color (MODIS Terra)"},
	{ID: "VIIRS_SNPP_DayNightBand_At_Sensor_Radiance", Label: "Night Lights (VIIRS DNB)"},
}

var regions = []Region{
	{ID: "global", Label: "Global", BBox: "-180,-90,180,90"},
	{ID: "california", Label: "California", BBox: "-125,32,-113,43"},
	{ID: "amazon", Label: "Amazon", BBox: "-75,-15,-50,5"},
	{ID: "himalayas", Label: "Himalayas", BBox: "70,20,100,40"},
}

// Layers returns the comparable Worldview layers
func Layers() []LayerOption {
	return append([]LayerOption(nil), layers...)
}

// Regions returns the bounding box presets
func Regions() []Region {
	return append([]Region(nil), regions...)
}

// FindRegion looks up a region preset by ID
func FindRegion(id string) (Region, bool) {
	return lo.Find(regions, func(r Region) bool { return r.ID == id })
}

// IsKnownLayer reports whether id is one of the offered layers
func IsKnownLayer(id string) bool {
	return lo.ContainsBy(layers, func(l LayerOption) bool { return l.ID == id })
}

// BBox is a geographic bounding box in degrees
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// ParseBBox parses "minLon,minLat,maxLon,maxLat"
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 4 {
		return BBox{}, fmt.Errorf("invalid bbox %q: expected minLon,minLat,maxLon,maxLat", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return BBox{}, fmt.Errorf("invalid bbox %q: bad number %q", s, p)
		}
		v[i] = f
	}
	b := BBox{MinLon: v[0], MinLat: v[1], MaxLon: v[2], MaxLat: v[3]}
	return b, b.Validate()
}

// Validate checks coordinate ranges and ordering
func (b BBox) Validate() error {
	if b.MinLon < -180 || b.MaxLon > 180 {
		return fmt.Errorf("bbox longitude out of range [-180, 180]")
	}
	if b.MinLat < -90 || b.MaxLat > 90 {
		return fmt.Errorf("bbox latitude out of range [-90, 90]")
	}
	if b.MinLon >= b.MaxLon || b.MinLat >= b.MaxLat {
		return fmt.Errorf("bbox min must be less than max")
	}
	return nil
}

func (b BBox) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.MinLon) + "," + f(b.MinLat) + "," + f(b.MaxLon) + "," + f(b.MaxLat)
}

// Snapshot is a single Worldview GetSnapshot request
type Snapshot struct {
	Time   string `json:"time"` // YYYY-MM-DD
	BBox   string `json:"bbox"`
	Layers string `json:"layers"` // comma-separated layer IDs
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format,omitempty"`
	CRS    string `json:"crs,omitempty"`
}

// Validate checks the snapshot parameters and fills defaults
func (s *Snapshot) Validate() error {
	if !common.ValidateISO8601(s.Time) {
		return fmt.Errorf("invalid snapshot date %q (must be YYYY-MM-DD)", s.Time)
	}
	b, err := ParseBBox(s.BBox)
	if err != nil {
		return err
	}
	s.BBox = b.String()
	if strings.TrimSpace(s.Layers) == "" {
		return fmt.Errorf("snapshot layers must not be empty")
	}
	if s.Width == 0 {
		s.Width = DefaultSnapshotSize
	}
	if s.Height == 0 {
		s.Height = DefaultSnapshotSize
	}
	if s.Width < 1 || s.Width > MaxSnapshotSize || s.Height < 1 || s.Height > MaxSnapshotSize {
		return fmt.Errorf("snapshot size %dx%d out of range (1-%d)", s.Width, s.Height, MaxSnapshotSize)
	}
	if s.Format == "" {
		s.Format = DefaultSnapshotFormat
	}
	if s.Format != "image/png" && s.Format != "image/jpeg" {
		return fmt.Errorf("invalid snapshot format: %s (must be image/png or image/jpeg)", s.Format)
	}
	if s.CRS == "" {
		s.CRS = DefaultSnapshotCRS
	}
	return nil
}

// Query returns the Worldview query parameters
func (s Snapshot) Query() url.Values {
	q := url.Values{}
	q.Set("REQUEST", "GetSnapshot")
	q.Set("TIME", s.Time)
	q.Set("BBOX", s.BBox)
	q.Set("CRS", s.CRS)
	q.Set("LAYERS", s.Layers)
	q.Set("FORMAT", s.Format)
	q.Set("WIDTH", strconv.Itoa(s.Width))
	q.Set("HEIGHT", strconv.Itoa(s.Height))
	return q
}

// URL builds the upstream snapshot URL
func (s Snapshot) URL() (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	return WorldviewSnapshotURL + "?" + s.Query().Encode(), nil
}

// SnapshotRequest describes both sides of a snapshot comparison
type SnapshotRequest struct {
	LeftDate   string `json:"leftDate"`
	RightDate  string `json:"rightDate"`
	LeftLayer  string `json:"leftLayer"`
	RightLayer string `json:"rightLayer"`
	Region     string `json:"region"`
	CustomBBox string `json:"customBbox,omitempty"` // overrides Region when set
	Sync       bool   `json:"sync"`                 // mirror the left layer and date onto the right
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
}

// DefaultSnapshotRequest compares today against yesterday over the first region
func DefaultSnapshotRequest(now time.Time) SnapshotRequest {
	return SnapshotRequest{
		LeftDate:   common.FormatISO8601(now),
		RightDate:  common.FormatISO8601(now.AddDate(0, 0, -1)),
		LeftLayer:  layers[0].ID,
		RightLayer: layers[0].ID,
		Region:     regions[0].ID,
		Width:      DefaultSnapshotSize,
		Height:     DefaultSnapshotSize,
	}
}

// BBox resolves the custom box or the region preset
func (r SnapshotRequest) BBox() (string, error) {
	if c := strings.TrimSpace(r.CustomBBox); c != "" {
		return c, nil
	}
	region, ok := FindRegion(r.Region)
	if !ok {
		if r.Region != "" {
			return "", fmt.Errorf("unknown region: %s", r.Region)
		}
		region = regions[0]
	}
	return region.BBox, nil
}

// Snapshots returns the left and right snapshot requests
func (r SnapshotRequest) Snapshots() (Snapshot, Snapshot, error) {
	bbox, err := r.BBox()
	if err != nil {
		return Snapshot{}, Snapshot{}, err
	}
	if r.Sync {
		r.RightLayer = r.LeftLayer
		r.RightDate = r.LeftDate
	}
	left := Snapshot{Time: r.LeftDate, BBox: bbox, Layers: r.LeftLayer, Width: r.Width, Height: r.Height}
	right := Snapshot{Time: r.RightDate, BBox: bbox, Layers: r.RightLayer, Width: r.Width, Height: r.Height}
	if err := left.Validate(); err != nil {
		return Snapshot{}, Snapshot{}, fmt.Errorf("left snapshot: %w", err)
	}
	if err := right.Validate(); err != nil {
		return Snapshot{}, Snapshot{}, fmt.Errorf("right snapshot: %w", err)
	}
	return left, right, nil
}

// ShiftDate moves an ISO date by delta days
func ShiftDate(date string, delta int) (string, error) {
	t, err := common.ParseISO8601(date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return common.FormatISO8601(t.AddDate(0, 0, delta)), nil
}
