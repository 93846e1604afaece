package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"spacezoom-desktop/internal/common"
	"spacezoom-desktop/internal/imagery"
)

// searchLimit caps the number of search results returned to the frontend
const searchLimit = 24

// requestTimeout bounds NASA API calls made from bindings
const requestTimeout = 30 * time.Second

func (a *App) requestContext() (context.Context, context.CancelFunc) {
	parent := a.ctx
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, requestTimeout)
}

// GetGallery returns the curated space gallery
func (a *App) GetGallery() []imagery.GalleryImage {
	return imagery.Gallery()
}

// GetCelestialBodies returns the planetary maps
func (a *App) GetCelestialBodies() []imagery.CelestialBody {
	return imagery.CelestialBodies()
}

// GetLayers returns the Worldview layers offered for comparison
func (a *App) GetLayers() []imagery.LayerOption {
	return imagery.Layers()
}

// GetRegions returns the comparison region presets
func (a *App) GetRegions() []imagery.Region {
	return imagery.Regions()
}

// ShiftDate moves an ISO date by delta days, for the compare date steppers
func (a *App) ShiftDate(date string, delta int) (string, error) {
	return imagery.ShiftDate(date, delta)
}

// SearchImages queries the NASA Image Library. Results can be shown with
// SelectGalleryImage.
func (a *App) SearchImages(query string) ([]imagery.SearchResult, error) {
	ctx, cancel := a.requestContext()
	defer cancel()

	results, err := a.nasa.Search(ctx, query, searchLimit)
	if err != nil {
		log.Printf("Search %q failed: %v", query, err)
		return nil, err
	}

	a.mu.Lock()
	for _, r := range results {
		a.found[r.ID] = registeredImage{provider: common.ProviderNASAImages, sources: r.Sources}
	}
	a.mu.Unlock()

	a.emitLog(fmt.Sprintf("Search %q returned %d images", query, len(results)))
	return results, nil
}

// GetAPOD fetches the Astronomy Picture of the Day; an empty date means
// today. Image entries can be shown with SelectGalleryImage(apod.ID()).
func (a *App) GetAPOD(date string) (*imagery.APOD, error) {
	if date != "" && !common.ValidateISO8601(date) {
		return nil, fmt.Errorf("invalid date %q (must be YYYY-MM-DD)", date)
	}
	ctx, cancel := a.requestContext()
	defer cancel()

	apod, err := a.nasa.APOD(ctx, date)
	if err != nil {
		log.Printf("APOD %s failed: %v", date, err)
		return nil, err
	}
	if apod.IsImage() {
		a.mu.Lock()
		a.found[apod.ID()] = registeredImage{provider: common.ProviderAPOD, sources: apod.Sources()}
		a.mu.Unlock()
	}
	return apod, nil
}
