package common

// Provider identifiers used for cache keys and image proxy routes
const (
	// ProviderGallery is the curated space gallery
	ProviderGallery = "gallery"

	// ProviderCelestial is the planetary map catalog
	ProviderCelestial = "celestial"

	// ProviderNASAImages is the NASA Image and Video Library search
	ProviderNASAImages = "nasa_images"

	// ProviderAPOD is the Astronomy Picture of the Day
	ProviderAPOD = "apod"

	// ProviderWorldview is the Worldview snapshot service
	ProviderWorldview = "worldview"
)

// DisplayNames maps provider identifiers to the names shown in the UI
var DisplayNames = map[string]string{
	ProviderGallery:    "Space Gallery",
	ProviderCelestial:  "Celestial Bodies",
	ProviderNASAImages: "NASA Image Library",
	ProviderAPOD:       "Astronomy Picture of the Day",
	ProviderWorldview:  "NASA Worldview",
}

// IsProvider reports whether name is a known provider identifier
func IsProvider(name string) bool {
	_, ok := DisplayNames[name]
	return ok
}
