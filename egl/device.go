package egl

import (
	"github.com/tinyrange/glctx/caps"
	"github.com/tinyrange/glctx/glerr"
	"github.com/tinyrange/glctx/rawhandle"
)

// Device is an EGLDeviceEXT, usually one GPU.
type Device struct {
	raw     uintptr
	exts    caps.Extensions
	drmFile string
	hasDRM  bool
}

// Raw returns the EGLDeviceEXT.
func (d Device) Raw() uintptr { return d.raw }

// Extensions returns the device extensions in lexical order.
func (d Device) Extensions() []string { return d.exts.Sorted() }

// DRMDeviceFile returns the DRM node of the device, when
// EGL_EXT_device_drm reports one.
func (d Device) DRMDeviceFile() (string, bool) { return d.drmFile, d.hasDRM }

// Display returns the handle that opens a display on the device.
func (d Device) Display() rawhandle.EGLDeviceDisplay {
	return rawhandle.EGLDeviceDisplay{Device: d.raw}
}

// Devices enumerates the devices lib can open displays on.
func Devices(lib Lib) ([]Device, error) {
	const op = "egl.Devices"
	client := clientInfoFor(lib)
	if !client.exts.HasAny("EGL_EXT_device_enumeration", "EGL_EXT_device_base") || !lib.Has(FnQueryDevicesEXT) {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: op, Reason: "EGL_EXT_device_enumeration is missing"}
	}
	n, ok := lib.QueryDevicesEXT(nil)
	if !ok {
		return nil, lastError(lib, FnQueryDevicesEXT)
	}
	if n == 0 {
		return nil, nil
	}
	raws := make([]uintptr, n)
	n, ok = lib.QueryDevicesEXT(raws)
	if !ok {
		return nil, lastError(lib, FnQueryDevicesEXT)
	}

	devices := make([]Device, 0, n)
	for _, raw := range raws[:n] {
		dev := Device{raw: raw, exts: caps.Extensions{}}
		if lib.Has(FnQueryDeviceStringEXT) {
			if s, ok := lib.QueryDeviceStringEXT(raw, _EGL_EXTENSIONS); ok {
				dev.exts = caps.ParseExtensions(s)
			} else {
				lib.GetError()
			}
			if dev.exts.Has("EGL_EXT_device_drm") {
				dev.drmFile, dev.hasDRM = lib.QueryDeviceStringEXT(raw, _EGL_DRM_DEVICE_FILE_EXT)
			}
		}
		devices = append(devices, dev)
	}
	return devices, nil
}
