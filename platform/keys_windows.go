//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"
)

var (
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard  = 1
	keyeventfKeyup = 0x0002
	mapvkVkToVsc   = 0
	vkC            = 0x43
	vkV            = 0x56
)

type keyboardInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type input struct {
	inputType uint32
	ki        keyboardInput
	padding   [8]byte // pad to the C INPUT struct size
}

type windowsKeys struct{}

// NewKeys returns the Win32 SendInput-based key injector.
func NewKeys() Keys {
	return &windowsKeys{}
}

// SendCopy injects Ctrl+C to copy the focused application's selection.
func (k *windowsKeys) SendCopy() error {
	return sendCtrlChord(vkC)
}

// SendPaste injects Ctrl+V.
func (k *windowsKeys) SendPaste() error {
	return sendCtrlChord(vkV)
}

// sendCtrlChord presses Ctrl+<key> with scan codes for compatibility with
// elevated applications, sending the whole sequence in one SendInput call.
func sendCtrlChord(vk uint16) error {
	ctrlScan, _, _ := mapVirtualKeyW.Call(vkCtrl, mapvkVkToVsc)
	keyScan, _, _ := mapVirtualKeyW.Call(uintptr(vk), mapvkVkToVsc)

	inputs := []input{
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vkCtrl, wScan: uint16(ctrlScan)},
		},
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vk, wScan: uint16(keyScan)},
		},
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vk, wScan: uint16(keyScan), dwFlags: keyeventfKeyup},
		},
		{
			inputType: inputKeyboard,
			ki:        keyboardInput{wVk: vkCtrl, wScan: uint16(ctrlScan), dwFlags: keyeventfKeyup},
		},
	}

	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if ret == 0 {
		return fmt.Errorf("SendInput failed: %w", err)
	}

	// Give the target a moment to process the injected input.
	time.Sleep(20 * time.Millisecond)

	return nil
}
