// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gordonklaus/portaudio"
)

func setupPortAudio(t *testing.T) {
	t.Helper()
	if err := Initialize(); err != nil {
		t.Skipf("PortAudio unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := Terminate(); err != nil {
			t.Fatalf("Failed to terminate PortAudio: %v", err)
		}
	})
}

func fakeDevices(infos []*portaudio.DeviceInfo) func() ([]*portaudio.DeviceInfo, error) {
	return func() ([]*portaudio.DeviceInfo, error) {
		return infos, nil
	}
}

func testDeviceInfos() []*portaudio.DeviceInfo {
	return []*portaudio.DeviceInfo{
		{Name: "Fake Mic", MaxInputChannels: 2, MaxOutputChannels: 0, DefaultSampleRate: 48000},
		{Name: "Fake Speakers", MaxInputChannels: 0, MaxOutputChannels: 2, DefaultSampleRate: 44100},
	}
}

func TestHostDevices(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = fakeDevices(testDeviceInfos())

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != 2 {
		t.Fatalf("got %d devices, want 2", len(devices))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name == "" {
			t.Errorf("Device %d has empty name", i)
		}
		if d.DefaultSampleRate <= 0 {
			t.Errorf("Device %d has invalid sample rate: %f", i, d.DefaultSampleRate)
		}
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock error")
	}

	_, err := HostDevices()
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice(t *testing.T) {
	orig := paDevicesFunc
	defer func() { paDevicesFunc = orig }()
	paDevicesFunc = fakeDevices(testDeviceInfos())

	t.Run("Valid input device", func(t *testing.T) {
		dev, err := InputDevice(0)
		if err != nil {
			t.Fatalf("InputDevice(0) error: %v", err)
		}
		if dev.Name != "Fake Mic" {
			t.Errorf("device name = %q, want Fake Mic", dev.Name)
		}
	})

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", 10, "invalid device ID"},
		{"Non-input device", 1, "does not support input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InputDevice(tt.id)
			if err == nil {
				t.Fatalf("Expected error for ID %d", tt.id)
			}
			if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestInputDevice_DefaultDeviceError(t *testing.T) {
	orig := paDefaultInputDeviceFunc
	defer func() { paDefaultInputDeviceFunc = orig }()
	paDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		return nil, fmt.Errorf("mock default input error")
	}

	_, err := InputDevice(-1)
	if err == nil || !strings.Contains(err.Error(), "mock default input error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice_Default(t *testing.T) {
	orig := paDefaultInputDeviceFunc
	defer func() { paDefaultInputDeviceFunc = orig }()
	paDefaultInputDeviceFunc = func() (*portaudio.DeviceInfo, error) {
		return &portaudio.DeviceInfo{Name: "Default Mic", MaxInputChannels: 1}, nil
	}

	dev, err := InputDevice(-1)
	if err != nil {
		t.Fatalf("InputDevice(-1) error: %v", err)
	}
	if dev.Name != "Default Mic" {
		t.Errorf("device name = %q, want Default Mic", dev.Name)
	}
}

func TestHostDevicesLive(t *testing.T) {
	setupPortAudio(t)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) == 0 {
		t.Skip("No audio devices found on system")
	}
}
