//go:build windows

package platform

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"markestedt/alpa/keys"
)

var (
	sendInput      = user32.NewProc("SendInput")
	mapVirtualKeyW = user32.NewProc("MapVirtualKeyW")
)

const (
	inputKeyboard    = 1
	keyeventfKeyup   = 0x0002
	keyeventfUnicode = 0x0004
	mapvkVkToVsc     = 0
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
	padding   [8]byte // Padding to match C struct size
}

// WindowsInjector implements the Injector interface with SendInput
type WindowsInjector struct{}

// NewInjector creates a new Windows injector
func NewInjector() (Injector, error) {
	if err := sendInput.Find(); err != nil {
		return nil, fmt.Errorf("SendInput unavailable: %w", err)
	}
	return &WindowsInjector{}, nil
}

// TypeText sends text as unicode key events, independent of the keyboard layout
func (j *WindowsInjector) TypeText(text string) error {
	if text == "" {
		return nil
	}

	units, err := windows.UTF16FromString(text)
	if err != nil {
		return fmt.Errorf("UTF16 conversion failed: %w", err)
	}
	units = units[:len(units)-1] // drop the terminating NUL

	inputs := make([]input, 0, len(units)*2)
	for _, u := range units {
		inputs = append(inputs,
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: u, dwFlags: keyeventfUnicode}},
			input{inputType: inputKeyboard, ki: keyboardInput{wScan: u, dwFlags: keyeventfUnicode | keyeventfKeyup}},
		)
	}

	return send(inputs)
}

// Tap presses key with mods held down, using scan codes for better
// compatibility with elevated applications
func (j *WindowsInjector) Tap(key keys.Keycode, mods ...keys.Keycode) error {
	seq := make([]keys.Keycode, 0, len(mods)+1)
	seq = append(seq, mods...)
	seq = append(seq, key)

	inputs := make([]input, 0, len(seq)*2)
	for _, k := range seq {
		in, err := keyInput(k, 0)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}
	for i := len(seq) - 1; i >= 0; i-- {
		in, err := keyInput(seq[i], keyeventfKeyup)
		if err != nil {
			return err
		}
		inputs = append(inputs, in)
	}

	return send(inputs)
}

func keyInput(k keys.Keycode, flags uint32) (input, error) {
	vk, ok := vkCodes[k]
	if !ok {
		return input{}, fmt.Errorf("no virtual key for %s", k)
	}
	scan, _, _ := mapVirtualKeyW.Call(uintptr(vk), mapvkVkToVsc)

	return input{
		inputType: inputKeyboard,
		ki: keyboardInput{
			wVk:     vk,
			wScan:   uint16(scan),
			dwFlags: flags,
		},
	}, nil
}

func send(inputs []input) error {
	if len(inputs) == 0 {
		return nil
	}

	// Send all inputs at once for better atomicity
	ret, _, err := sendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)

	if ret == 0 {
		return fmt.Errorf("SendInput failed: %w", err)
	}

	// Small delay to ensure input is processed
	time.Sleep(5 * time.Millisecond)

	return nil
}
