//go:build !cgo
// +build !cgo

package input

// unsupportedSource is used when the binary is built without cgo.
type unsupportedSource struct{}

// NewPlatformSource returns the input source for this build.
func NewPlatformSource() Source {
	return unsupportedSource{}
}

func (unsupportedSource) Start(func(Event)) error { return ErrUnsupported }

func (unsupportedSource) Stop() {}
