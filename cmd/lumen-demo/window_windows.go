//go:build windows

package main

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procRegisterClassExW   = user32.NewProc("RegisterClassExW")
	procCreateWindowExW    = user32.NewProc("CreateWindowExW")
	procDefWindowProcW     = user32.NewProc("DefWindowProcW")
	procDestroyWindow      = user32.NewProc("DestroyWindow")
	procShowWindow         = user32.NewProc("ShowWindow")
	procUpdateWindow       = user32.NewProc("UpdateWindow")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procGetModuleHandleW   = kernel32.NewProc("GetModuleHandleW")
	procPostQuitMessage    = user32.NewProc("PostQuitMessage")
	procGetClientRect      = user32.NewProc("GetClientRect")
	procAdjustWindowRectEx = user32.NewProc("AdjustWindowRectEx")
	procSetWindowLongPtrW  = user32.NewProc("SetWindowLongPtrW")
)

const (
	csOwnDC            = 0x0020
	wsOverlappedWindow = 0x00CF0000
	swShow             = 5

	wmDestroy = 0x0002
	wmSize    = 0x0005
	wmClose   = 0x0010
	wmQuit    = 0x0012

	pmRemove = 0x0001
)

type wndClassExW struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   uintptr
	Icon       uintptr
	Cursor     uintptr
	Background uintptr
	MenuName   *uint16
	ClassName  *uint16
	IconSm     uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

type point struct{ X, Y int32 }

type rect struct{ Left, Top, Right, Bottom int32 }

// window is a plain Win32 window driving the demo's presentation
// surface: the Vulkan-class backend never touches Win32 itself, only
// the opaque HWND this type hands it as a vk.WindowHandle. Adapted from
// the multi-thread triangle demo's window, trimmed to the single
// render-thread-on-main-thread shape this command uses.
type window struct {
	hwnd    uintptr
	width   int32
	height  int32
	running bool

	resized atomic.Bool
}

var globalWindow *window

func newWindow(title string, width, height int32) (*window, error) {
	hInstance, _, _ := procGetModuleHandleW.Call(0)

	className, err := windows.UTF16PtrFromString("LumenDemoWindow")
	if err != nil {
		return nil, fmt.Errorf("lumen-demo: class name: %w", err)
	}
	windowTitle, err := windows.UTF16PtrFromString(title)
	if err != nil {
		return nil, fmt.Errorf("lumen-demo: window title: %w", err)
	}

	wc := wndClassExW{
		Size:      uint32(unsafe.Sizeof(wndClassExW{})),
		Style:     csOwnDC,
		WndProc:   windows.NewCallback(wndProc),
		Instance:  hInstance,
		ClassName: className,
	}
	if ret, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); ret == 0 {
		return nil, fmt.Errorf("lumen-demo: RegisterClassExW failed: %w", callErr)
	}

	style := uint32(wsOverlappedWindow)
	var rc rect
	rc.Right, rc.Bottom = width, height
	procAdjustWindowRectEx.Call(uintptr(unsafe.Pointer(&rc)), uintptr(style), 0, 0)

	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(windowTitle)),
		uintptr(style),
		100, 100,
		uintptr(rc.Right-rc.Left), uintptr(rc.Bottom-rc.Top),
		0, 0, hInstance, 0,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("lumen-demo: CreateWindowExW failed: %w", callErr)
	}

	w := &window{hwnd: hwnd, width: width, height: height, running: true}
	globalWindow = w
	procSetWindowLongPtrW.Call(hwnd, ^uintptr(20), uintptr(unsafe.Pointer(w)))

	procShowWindow.Call(hwnd, uintptr(swShow))
	procUpdateWindow.Call(hwnd)
	return w, nil
}

func (w *window) Destroy() {
	if w.hwnd != 0 {
		procDestroyWindow.Call(w.hwnd)
		w.hwnd = 0
	}
	if globalWindow == w {
		globalWindow = nil
	}
}

// Handle returns the HWND, forwarded directly as a vk.WindowHandle.
func (w *window) Handle() uintptr { return w.hwnd }

func (w *window) Size() (width, height int32) {
	var rc rect
	procGetClientRect.Call(w.hwnd, uintptr(unsafe.Pointer(&rc)))
	return rc.Right - rc.Left, rc.Bottom - rc.Top
}

// NeedsResize reports and clears a pending WM_SIZE.
func (w *window) NeedsResize() bool { return w.resized.Swap(false) }

// PollEvents drains the Win32 message queue without blocking, matching
// the continuous-render posture this demo always runs in. Returns
// false once WM_QUIT has been posted.
func (w *window) PollEvents() bool {
	var m msg
	for {
		ret, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, uintptr(pmRemove))
		if ret == 0 {
			break
		}
		if m.Message == wmQuit {
			w.running = false
			return false
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	return w.running
}

func wndProc(hwnd, message, wParam, lParam uintptr) uintptr {
	w := globalWindow
	if w == nil || w.hwnd != hwnd {
		ret, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
		return ret
	}

	switch message {
	case wmDestroy, wmClose:
		procPostQuitMessage.Call(0)
		return 0

	case wmSize:
		width := int32(lParam & 0xFFFF)
		height := int32((lParam >> 16) & 0xFFFF)
		if width > 0 && height > 0 {
			w.width, w.height = width, height
			w.resized.Store(true)
		}
		return 0

	default:
		ret, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
		return ret
	}
}
