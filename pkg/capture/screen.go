package capture

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/kbinani/screenshot"
	"golang.org/x/image/draw"

	"github.com/Veraticus/activity-monitor/pkg/config"
	"github.com/Veraticus/activity-monitor/pkg/motion"
)

// ScreenCapturer captures the primary display.
type ScreenCapturer struct {
	region     config.Region
	resolution config.Resolution

	// Overridable for tests
	boundsFunc  func() (image.Rectangle, error)
	captureFunc func(image.Rectangle) (image.Image, error)
	now         func() time.Time
}

// NewScreenCapturer creates a capturer for region, producing samples at
// resolution.
func NewScreenCapturer(region config.Region, resolution config.Resolution) *ScreenCapturer {
	return &ScreenCapturer{
		region:      region,
		resolution:  resolution,
		boundsFunc:  primaryDisplayBounds,
		captureFunc: captureRect,
		now:         time.Now,
	}
}

func primaryDisplayBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() < 1 {
		return image.Rectangle{}, fmt.Errorf("no active display")
	}
	return screenshot.GetDisplayBounds(0), nil
}

func captureRect(r image.Rectangle) (image.Image, error) {
	return screenshot.CaptureRect(r)
}

// Capture grabs the region and returns it as a grayscale sample. Screen
// bounds are queried on every call.
func (c *ScreenCapturer) Capture(ctx context.Context) (*motion.Sample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds, err := c.boundsFunc()
	if err != nil {
		return nil, fmt.Errorf("failed to query screen bounds: %w", err)
	}

	rect, err := ResolveRegion(bounds, c.region)
	if err != nil {
		return nil, err
	}

	img, err := c.captureFunc(rect)
	if err != nil {
		return nil, fmt.Errorf("failed to capture %v: %w", rect, err)
	}

	return &motion.Sample{
		Time:   c.now(),
		Image:  Normalize(img, c.resolution),
		Region: rect,
	}, nil
}

// Normalize scales img to res and converts it to grayscale.
func Normalize(img image.Image, res config.Resolution) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, res.Width, res.Height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
