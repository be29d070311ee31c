//go:build windows

package platform

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	setWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	callNextHookEx      = user32.NewProc("CallNextHookEx")
	unhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	peekMessage         = user32.NewProc("PeekMessageW")
	getAsyncKeyState    = user32.NewProc("GetAsyncKeyState")
)

const (
	whKeyboardLL = 13
	wmKeydown    = 0x0100
	wmKeyup      = 0x0101
	wmSyskeydown = 0x0104
	wmSyskeyup   = 0x0105
	pmRemove     = 0x0001
)

const (
	vkShift = 0x10
	vkCtrl  = 0x11
	vkAlt   = 0x12
	vkLwin  = 0x5B
	vkRwin  = 0x5C
)

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

// comboState tracks the press latch for one armed chord so holding the keys
// fires the chord once, not on every key repeat.
type comboState struct {
	combo   Combo
	pressed bool
}

// windowsHook matches a dynamic set of chords against a single low-level
// keyboard hook (WH_KEYBOARD_LL).
type windowsHook struct {
	mu        sync.Mutex
	combos    map[string]*comboState
	hook      uintptr
	installed bool
	events    chan Combo
	done      chan struct{}
}

// NewHook returns the Windows keyboard hook.
func NewHook() Hook {
	return &windowsHook{combos: make(map[string]*comboState)}
}

func (h *windowsHook) Add(combo Combo) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.combos[combo.String()] = &comboState{combo: combo}
	return nil
}

func (h *windowsHook) Remove(combo Combo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.combos, combo.String())
}

// Install activates the hook. Matched chords are handed to a dispatch
// goroutine; the hook procedure itself must return quickly or Windows
// silently removes the hook.
func (h *windowsHook) Install(onFire func(Combo)) error {
	h.mu.Lock()
	if h.installed {
		h.mu.Unlock()
		return nil
	}
	h.events = make(chan Combo, 16)
	h.done = make(chan struct{})
	h.mu.Unlock()

	errCh := make(chan error, 1)
	go h.runHook(errCh)

	if err := <-errCh; err != nil {
		return err
	}

	h.mu.Lock()
	h.installed = true
	h.mu.Unlock()

	go func() {
		for {
			select {
			case combo := <-h.events:
				onFire(combo)
			case <-h.done:
				return
			}
		}
	}()

	return nil
}

func (h *windowsHook) Uninstall() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.installed {
		return
	}
	h.installed = false
	close(h.done)
	if h.hook != 0 {
		unhookWindowsHookEx.Call(h.hook)
		h.hook = 0
	}
	for _, st := range h.combos {
		st.pressed = false
	}
}

// runHook installs the keyboard hook and pumps its message loop. The hook
// lives on a locked OS thread for the lifetime of the install.
func (h *windowsHook) runHook(errCh chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	hookProc := func(nCode int32, wParam uintptr, lParam uintptr) uintptr {
		if nCode >= 0 {
			kb := (*kbdllhookstruct)(unsafe.Pointer(lParam))
			h.handleKeyEvent(wParam, kb)
		}
		r, _, _ := callNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
		return r
	}

	hook, _, err := setWindowsHookEx.Call(
		whKeyboardLL,
		windows.NewCallback(hookProc),
		0,
		0,
	)
	if hook == 0 {
		errCh <- fmt.Errorf("SetWindowsHookEx failed: %w", err)
		return
	}

	h.mu.Lock()
	h.hook = hook
	h.mu.Unlock()

	errCh <- nil

	var m msg
	for {
		select {
		case <-h.done:
			return
		default:
			r, _, _ := peekMessage.Call(
				uintptr(unsafe.Pointer(&m)),
				0,
				0,
				0,
				pmRemove,
			)
			if r != 0 {
				continue
			}
			runtime.Gosched()
		}
	}
}

func (h *windowsHook) handleKeyEvent(wParam uintptr, kb *kbdllhookstruct) {
	isKeyDown := wParam == wmKeydown || wParam == wmSyskeydown

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, st := range h.combos {
		if st.combo.Key == 0 {
			h.matchModifierOnly(st, kb.vkCode, isKeyDown)
		} else {
			h.matchKeyed(st, kb.vkCode, isKeyDown)
		}
	}
}

// matchModifierOnly handles chords like "ctrl+win" that have no trailing key.
func (h *windowsHook) matchModifierOnly(st *comboState, vk uint32, isKeyDown bool) {
	armed := false
	if st.combo.Ctrl && vk == vkCtrl {
		armed = true
	}
	if st.combo.Shift && vk == vkShift {
		armed = true
	}
	if st.combo.Alt && vk == vkAlt {
		armed = true
	}
	if st.combo.Win && (vk == vkLwin || vk == vkRwin) {
		armed = true
	}
	if !armed {
		return
	}

	if isKeyDown {
		if modifiersMatch(st.combo) && !st.pressed {
			st.pressed = true
			h.fire(st.combo)
		}
	} else {
		st.pressed = false
	}
}

func (h *windowsHook) matchKeyed(st *comboState, vk uint32, isKeyDown bool) {
	if vk != uint32(st.combo.Key) {
		return
	}

	if isKeyDown {
		if modifiersMatch(st.combo) && !st.pressed {
			st.pressed = true
			h.fire(st.combo)
		}
	} else {
		st.pressed = false
	}
}

// fire hands the chord to the dispatch goroutine. The send never blocks; a
// full buffer drops the fire rather than stalling the hook procedure.
func (h *windowsHook) fire(combo Combo) {
	select {
	case h.events <- combo:
	default:
	}
}

func modifiersMatch(c Combo) bool {
	ctrl := keyDown(vkCtrl)
	shift := keyDown(vkShift)
	alt := keyDown(vkAlt)
	win := keyDown(vkLwin) || keyDown(vkRwin)

	return ctrl == c.Ctrl && shift == c.Shift && alt == c.Alt && win == c.Win
}

func keyDown(vk int) bool {
	r, _, _ := getAsyncKeyState.Call(uintptr(vk))
	return r&0x8000 != 0
}
