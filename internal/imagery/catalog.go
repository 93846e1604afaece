package imagery

import (
	"fmt"

	"github.com/samber/lo"

	"spacezoom-desktop/internal/quality"
)

// NASA Image and Video Library asset host
const AssetBaseURL = "https://images-assets.nasa.gov/image"

// GalleryImage is a curated or searched image with per-tier sources
type GalleryImage struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Sources     quality.Sources `json:"sources"`
}

// AssetSources returns the thumb/medium/orig renditions of a NASA library asset
func AssetSources(nasaID string) quality.Sources {
	base := fmt.Sprintf("%s/%s/%s", AssetBaseURL, nasaID, nasaID)
	return quality.Sources{
		Low:    base + "~thumb.jpg",
		Medium: base + "~medium.jpg",
		High:   base + "~orig.jpg",
	}
}

var galleryImages = []GalleryImage{
	{
		ID:          "pillars-of-creation",
		Title:       "Pillars of Creation",
		Description: "Stunning view of the Eagle Nebula captured by the James Webb Space Telescope",
		Sources:     AssetSources("PIA23128"),
	},
	{
		ID:          "hubble-deep-field",
		Title:       "Hubble Deep Field",
		Description: "A glimpse into the distant universe showing thousands of galaxies",
		Sources:     AssetSources("GSFC_20171208_Archive_e001327"),
	},
	{
		ID:          "carina-nebula",
		Title:       "Carina Nebula",
		Description: "Cosmic cliffs in the Carina Nebula - one of Webb's first images",
		Sources:     AssetSources("PIA16695"),
	},
	{
		ID:          "jupiter",
		Title:       "Jupiter's Great Red Spot",
		Description: "Close-up view of Jupiter's iconic storm system",
		Sources:     AssetSources("PIA21775"),
	},
	{
		ID:          "andromeda",
		Title:       "Andromeda Galaxy",
		Description: "Our nearest spiral galaxy neighbor, 2.5 million light-years away",
		Sources:     AssetSources("GSFC_20171208_Archive_e000393"),
	},
	{
		ID:          "orion-nebula",
		Title:       "Orion Nebula",
		Description: "A stellar nursery where new stars are being born",
		Sources:     AssetSources("PIA04227"),
	},
}

// Gallery returns the curated space gallery
func Gallery() []GalleryImage {
	return append([]GalleryImage(nil), galleryImages...)
}

// FindGalleryImage looks up a curated image by ID
func FindGalleryImage(id string) (GalleryImage, bool) {
	return lo.Find(galleryImages, func(img GalleryImage) bool {
		return img.ID == id
	})
}

// CelestialBody is a planetary map. Each body has a single map asset, so
// every quality tier resolves to the same URL.
type CelestialBody struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	MapURL      string `json:"mapUrl"`
}

// Sources returns the tier sources of the body's map
func (b CelestialBody) Sources() quality.Sources {
	return quality.Single(b.MapURL)
}

var celestialBodies = []CelestialBody{
	{
		ID:          "earth",
		Name:        "Earth",
		Description: "Our home planet, the blue marble with diverse ecosystems and vast oceans.",
		Icon:        "🌍",
		MapURL:      "https://eoimages.gsfc.nasa.gov/images/imagerecords/73000/73909/world.topo.bathy.200412.3x5400x2700.jpg",
	},
	{
		ID:          "mars",
		Name:        "Mars",
		Description: "The red planet, a cold desert world with towering volcanoes and deep canyons.",
		Icon:        "🔴",
		MapURL:      "https://astrogeology.usgs.gov/cache/images/mars_viking_color_540s.jpg",
	},
	{
		ID:          "moon",
		Name:        "Moon",
		Description: "Earth's natural satellite, marked by ancient impact craters and vast maria.",
		Icon:        "🌙",
		MapURL:      "https://astrogeology.usgs.gov/cache/images/moon_clementine_750.jpg",
	},
}

// CelestialBodies returns the available planetary maps
func CelestialBodies() []CelestialBody {
	return append([]CelestialBody(nil), celestialBodies...)
}

// FindCelestialBody looks up a body by ID
func FindCelestialBody(id string) (CelestialBody, bool) {
	return lo.Find(celestialBodies, func(b CelestialBody) bool {
		return b.ID == id
	})
}

// DefaultCelestialBody is shown when the celestial viewer opens
func DefaultCelestialBody() CelestialBody {
	return celestialBodies[0]
}
