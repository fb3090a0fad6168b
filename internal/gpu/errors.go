package gpu

import "errors"

var (
	// ErrStaleGeometry is returned by GeometryBuffer.Draw when the buffer was
	// extended or cleared after its last Flush.
	ErrStaleGeometry = errors.New("gpu: geometry buffer drawn before flush")

	// ErrNoBackend is returned when the requested HAL backend is not
	// registered in this binary.
	ErrNoBackend = errors.New("gpu: backend not registered")

	// ErrNoAdapter is returned when the backend exposes no adapters.
	ErrNoAdapter = errors.New("gpu: no adapters found")

	// ErrProviderNotHAL is returned when a device provider does not expose
	// HAL device and queue accessors.
	ErrProviderNotHAL = errors.New("gpu: provider does not expose HAL device")

	// ErrNilContext is returned by constructors given a nil Context.
	ErrNilContext = errors.New("gpu: nil context")

	// ErrFrameNotBegun is returned when a frame is submitted after it was
	// already submitted or discarded.
	ErrFrameNotBegun = errors.New("gpu: frame not begun")

	// ErrEmptyAtlas is returned when uploading an atlas with no pixels.
	ErrEmptyAtlas = errors.New("gpu: atlas has zero size")
)
