// Package gl binds the handful of OpenGL entry points the command line
// tools call once a glctx context is current. Entry points are resolved
// through the display's GetProcAddress, so the same table works on EGL,
// GLX and WGL.
package gl

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/tinyrange/glctx/glerr"
)

const (
	// ColorBufferBit is a mask used with Clear to clear the color buffer.
	ColorBufferBit = 0x00004000

	// RGBA is a pixel format representing red/green/blue/alpha.
	RGBA = 0x1908
	// UnsignedByte is a pixel data type indicating 8-bit unsigned values.
	UnsignedByte = 0x1401

	// GetString parameters.
	Vendor                 = 0x1F00
	Renderer               = 0x1F01
	Version                = 0x1F02
	ShadingLanguageVersion = 0x8B8C

	// GetIntegerv parameters, valid on 3.0+ contexts.
	MajorVersion = 0x821B
	MinorVersion = 0x821C

	NoError = 0
)

// OpenGL is the subset of OpenGL the tools use. Every method operates on
// the context current on the calling thread.
type OpenGL interface {
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	Viewport(x, y, width, height int32)
	Finish()
	GetError() uint32
	GetIntegerv(pname uint32, data *int32)

	// ReadPixels reads a block of the framebuffer into pixels.
	ReadPixels(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer)

	// GetString returns a string describing the current context, or "" if
	// the name is not recognized.
	GetString(name uint32) string
}

type openGL struct {
	clearColor  func(float32, float32, float32, float32)
	clear       func(uint32)
	viewport    func(int32, int32, int32, int32)
	finish      func()
	getError    func() uint32
	getIntegerv func(uint32, *int32)
	readPixels  func(int32, int32, int32, int32, uint32, uint32, unsafe.Pointer)
	getString   func(uint32) *byte
}

func (gl *openGL) ClearColor(r, g, b, a float32)      { gl.clearColor(r, g, b, a) }
func (gl *openGL) Clear(mask uint32)                  { gl.clear(mask) }
func (gl *openGL) Viewport(x, y, width, height int32) { gl.viewport(x, y, width, height) }
func (gl *openGL) Finish()                            { gl.finish() }
func (gl *openGL) GetError() uint32                   { return gl.getError() }

func (gl *openGL) GetIntegerv(pname uint32, data *int32) { gl.getIntegerv(pname, data) }

func (gl *openGL) ReadPixels(x, y, width, height int32, format, xtype uint32, pixels unsafe.Pointer) {
	gl.readPixels(x, y, width, height, format, xtype, pixels)
}

func (gl *openGL) GetString(name uint32) string {
	return gostring(gl.getString(name))
}

// Load resolves the table through getProc, typically
// glctx.Display.GetProcAddress. Some drivers only resolve entry points
// while a context is current, so call it after MakeCurrent.
func Load(getProc func(name string) uintptr) (OpenGL, error) {
	var missing error
	register := func(dst any, name string) {
		addr := getProc(name)
		if addr == 0 {
			missing = glerr.Append(missing, fmt.Errorf("%s not found", name))
			return
		}
		purego.RegisterFunc(dst, addr)
	}

	gl := &openGL{}
	register(&gl.clearColor, "glClearColor")
	register(&gl.clear, "glClear")
	register(&gl.viewport, "glViewport")
	register(&gl.finish, "glFinish")
	register(&gl.getError, "glGetError")
	register(&gl.getIntegerv, "glGetIntegerv")
	register(&gl.readPixels, "glReadPixels")
	register(&gl.getString, "glGetString")
	if missing != nil {
		return nil, &glerr.Error{Kind: glerr.NotSupported, Op: "gl.Load", Reason: "missing entry points", Err: missing}
	}
	return gl, nil
}

func gostring(ptr *byte) string {
	if ptr == nil {
		return ""
	}
	var bytes []byte
	for p := ptr; *p != 0; p = (*byte)(unsafe.Add(unsafe.Pointer(p), 1)) {
		bytes = append(bytes, *p)
	}
	return string(bytes)
}
