package termtext

import "errors"

// Sentinel errors for termtext.
var (
	// ErrTextPassDirty is returned by TextPass.Record when an object changed
	// after the last Update.
	ErrTextPassDirty = errors.New("termtext: text pass recorded while dirty")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("termtext: invalid config")

	// ErrNoPane is returned for a pane index the terminal does not have.
	ErrNoPane = errors.New("termtext: no such pane")

	// ErrRendererClosed is returned by Renderer methods after Close.
	ErrRendererClosed = errors.New("termtext: renderer closed")
)
