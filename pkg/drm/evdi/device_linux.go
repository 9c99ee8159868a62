//go:build linux

package evdi

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"
)

// Sysfs and devfs locations. Package variables so tests can point them at a
// fake filesystem root.
var (
	sysModulePath = "/sys/devices/evdi"
	sysDrmPath    = "/sys/class/drm"
	devDriPath    = "/dev/dri"
)

// ModuleLoaded reports whether the evdi kernel module is loaded, using the
// sysfs platform directory as a fast pre-flight marker.
func ModuleLoaded() bool {
	_, err := os.Stat(sysModulePath)
	return err == nil
}

// CheckDevice classifies the DRM card at the given index. A node driven by
// the evdi module is StatusAvailable, a node owned by another driver is
// StatusUnrecognized, and a missing node is StatusNotPresent.
func CheckDevice(index int) DeviceStatus {
	nodePath := filepath.Join(devDriPath, fmt.Sprintf("card%d", index))
	if _, err := os.Stat(nodePath); err != nil {
		return StatusNotPresent
	}

	driverLink := filepath.Join(sysDrmPath, fmt.Sprintf("card%d", index), "device", "driver")
	target, err := os.Readlink(driverLink)
	if err != nil {
		// Node exists but has no readable driver binding.
		return StatusUnrecognized
	}

	if filepath.Base(target) == "evdi" || strings.HasSuffix(target, "/evdi") {
		return StatusAvailable
	}
	return StatusUnrecognized
}

// Device is an open handle to one EVDI card node. A Device is exclusively
// owned by its opener and is not safe for concurrent use.
type Device struct {
	fd    int
	index int
}

// Open opens the DRM card node at the given index.
func Open(index int) (*Device, error) {
	nodePath := filepath.Join(devDriPath, fmt.Sprintf("card%d", index))
	fd, err := open(nodePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", nodePath, err)
	}
	return &Device{fd: fd, index: index}, nil
}

// Index returns the card index this device was opened at.
func (d *Device) Index() int {
	return d.index
}

// Connect attaches a display described by the given EDID to the device.
// The kernel DRM subsystem will enumerate a new connector afterwards.
func (d *Device) Connect(edid []byte) error {
	if len(edid) == 0 {
		return fmt.Errorf("empty EDID")
	}

	req := connectReq{
		connected:  1,
		devIndex:   int32(d.index),
		edid:       uintptr(unsafe.Pointer(&edid[0])),
		edidLength: uint32(len(edid)),
	}
	if err := ioctl(d.fd, drmIOWR(evdiCmdConnect, unsafe.Sizeof(req)), unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("connect ioctl failed on card%d: %w", d.index, err)
	}
	return nil
}

// Disconnect detaches the display from the device.
func (d *Device) Disconnect() error {
	req := connectReq{
		connected: 0,
		devIndex:  int32(d.index),
	}
	if err := ioctl(d.fd, drmIOWR(evdiCmdConnect, unsafe.Sizeof(req)), unsafe.Pointer(&req)); err != nil {
		return fmt.Errorf("disconnect ioctl failed on card%d: %w", d.index, err)
	}
	return nil
}

// Close releases the device node. The Device must not be used afterwards.
func (d *Device) Close() error {
	if d.fd < 0 {
		return nil
	}
	err := closeFd(d.fd)
	d.fd = -1
	return err
}

// PollEvents drains pending device notifications without blocking longer
// than timeoutMs. Mode changes, power state, buffer-ready and CRTC state
// notifications are returned as typed events. Create/destroy correctness
// does not depend on these; callers may ignore them entirely.
func (d *Device) PollEvents(timeoutMs int) ([]Event, error) {
	var events []Event

	for {
		ready, err := pollReadable(d.fd, timeoutMs)
		if err != nil {
			return events, err
		}
		if !ready {
			return events, nil
		}
		// Only the first wait may block; drain the rest immediately.
		timeoutMs = 0

		var req eventReq
		if err := ioctl(d.fd, drmIOWR(evdiCmdPollNext, unsafe.Sizeof(req)), unsafe.Pointer(&req)); err != nil {
			if err == syscall.EAGAIN {
				return events, nil
			}
			return events, fmt.Errorf("event poll ioctl failed on card%d: %w", d.index, err)
		}

		events = append(events, decodeEvent(req))
	}
}

func decodeEvent(req eventReq) Event {
	switch EventKind(req.kind) {
	case EventModeChanged:
		return Event{
			Kind: EventModeChanged,
			Mode: Mode{
				Width:        int(req.width),
				Height:       int(req.height),
				RefreshRate:  int(req.rate),
				BitsPerPixel: int(req.bpp),
			},
		}
	case EventPowerState:
		return Event{Kind: EventPowerState, DPMS: int(req.arg)}
	case EventBufferReady:
		return Event{Kind: EventBufferReady, Buffer: int(req.arg)}
	default:
		return Event{Kind: EventCRTCState, CRTC: int(req.arg)}
	}
}

// pollReadable waits until the fd is readable or the timeout elapses.
func pollReadable(fd, timeoutMs int) (bool, error) {
	fds := []pollFd{{fd: int32(fd), events: pollIn}}
	for {
		n, err := poll(fds, timeoutMs)
		if err != nil {
			if err == syscall.EINTR {
				continue
			}
			return false, err
		}
		return n > 0 && fds[0].revents&pollIn != 0, nil
	}
}

const pollIn = 0x0001

type pollFd struct {
	fd      int32
	events  int16
	revents int16
}

func poll(fds []pollFd, timeoutMs int) (int, error) {
	ts := syscall.NsecToTimespec(int64(timeoutMs) * 1e6)
	n, _, errno := syscall.Syscall6(syscall.SYS_PPOLL,
		uintptr(unsafe.Pointer(&fds[0])), uintptr(len(fds)),
		uintptr(unsafe.Pointer(&ts)), 0, 0, 0)
	if errno != 0 {
		return 0, errno
	}
	return int(n), nil
}
