// Package capture grabs the monitored screen region and normalizes it to a
// fixed-resolution grayscale sample.
package capture

import (
	"errors"
	"fmt"
	"image"

	"github.com/Veraticus/activity-monitor/pkg/config"
)

// ErrEmptyRegion is returned when the configured region does not overlap the
// current screen.
var ErrEmptyRegion = errors.New("capture region is outside the screen")

// ResolveRegion turns the configured region into a rectangle inside bounds.
// An unset region becomes the centered half-width, half-height area. A set
// region is clipped to bounds, so it follows display reconfiguration.
func ResolveRegion(bounds image.Rectangle, r config.Region) (image.Rectangle, error) {
	if bounds.Empty() {
		return image.Rectangle{}, fmt.Errorf("screen bounds are empty")
	}

	var rect image.Rectangle
	if r.IsZero() {
		w, h := bounds.Dx()/2, bounds.Dy()/2
		origin := bounds.Min.Add(image.Pt((bounds.Dx()-w)/2, (bounds.Dy()-h)/2))
		rect = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}
	} else {
		origin := bounds.Min.Add(image.Pt(r.X, r.Y))
		rect = image.Rectangle{Min: origin, Max: origin.Add(image.Pt(r.Width, r.Height))}
	}

	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return image.Rectangle{}, ErrEmptyRegion
	}
	return rect, nil
}
