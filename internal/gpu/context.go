package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ContextConfig selects how NewContext opens a device.
type ContextConfig struct {
	// Backend is the HAL backend to open. The backend package must be
	// linked into the binary (for example via hal/allbackends).
	// Default: gputypes.BackendVulkan
	Backend gputypes.Backend

	// PreferHardware picks a discrete or integrated adapter over a
	// software one when the backend exposes several.
	// Default: true
	PreferHardware bool

	// Format is the color format of render targets.
	// Default: gputypes.TextureFormatBGRA8Unorm
	Format gputypes.TextureFormat
}

// DefaultContextConfig returns default configuration.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{
		Backend:        gputypes.BackendVulkan,
		PreferHardware: true,
		Format:         gputypes.TextureFormatBGRA8Unorm,
	}
}

// Context owns the device and queue shared by every GPU object in termtext.
// It is created once and passed explicitly; nothing in this package keeps a
// global device.
type Context struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	format   gputypes.TextureFormat
	adapter  string

	// external is set when the device belongs to a host application and
	// must not be destroyed by Destroy.
	external bool
}

// NewContext opens a device on the configured backend.
func NewContext(cfg ContextConfig) (*Context, error) {
	if cfg.Format == gputypes.TextureFormatUndefined {
		cfg.Format = DefaultContextConfig().Format
	}

	backend, ok := hal.GetBackend(cfg.Backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoBackend, cfg.Backend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{})
	if err != nil {
		return nil, fmt.Errorf("gpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	if cfg.PreferHardware {
		for i := range adapters {
			t := adapters[i].Info.DeviceType
			if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
				selected = &adapters[i]
				break
			}
		}
	}

	openDev, err := selected.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("gpu: open device: %w", err)
	}

	slogger().Info("gpu device opened",
		"backend", cfg.Backend.String(),
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType.String())

	return &Context{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		format:   cfg.Format,
		adapter:  selected.Info.Name,
	}, nil
}

// halProvider is implemented by host applications that share their HAL
// device, such as gogpu windows.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// NewContextFromProvider wraps a host application's device. The provider
// must also expose HalDevice() and HalQueue() returning hal.Device and
// hal.Queue. The device is not destroyed by Context.Destroy.
func NewContextFromProvider(provider gpucontext.DeviceProvider) (*Context, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrProviderNotHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrProviderNotHAL, hp.HalDevice())
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrProviderNotHAL, hp.HalQueue())
	}

	format := provider.SurfaceFormat()
	if format == gputypes.TextureFormatUndefined {
		format = DefaultContextConfig().Format
	}
	info := provider.AdapterInfo()
	slogger().Info("gpu device shared by host",
		"adapter", info.Name,
		"type", info.Type.String())

	return &Context{
		device:   device,
		queue:    queue,
		format:   format,
		adapter:  info.Name,
		external: true,
	}, nil
}

// Device returns the HAL device.
func (c *Context) Device() hal.Device { return c.device }

// Queue returns the HAL queue.
func (c *Context) Queue() hal.Queue { return c.queue }

// Format returns the color format render targets use.
func (c *Context) Format() gputypes.TextureFormat { return c.format }

// AdapterName returns the name of the adapter the device was opened on.
func (c *Context) AdapterName() string { return c.adapter }

// Destroy releases the device and instance unless they belong to a host.
// Safe to call more than once.
func (c *Context) Destroy() {
	if c == nil {
		return
	}
	if !c.external && c.device != nil {
		c.device.Destroy()
	}
	if c.instance != nil {
		c.instance.Destroy()
	}
	c.device = nil
	c.queue = nil
	c.instance = nil
}
