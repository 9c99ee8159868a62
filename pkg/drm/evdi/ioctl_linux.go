//go:build linux

package evdi

import (
	"syscall"
	"unsafe"
)

// ioctl direction and size encoding, as in <asm-generic/ioctl.h>.
const (
	iocNrBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNrShift   = 0
	iocTypeShift = iocNrShift + iocNrBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

// DRM ioctl constants. EVDI registers its driver ioctls after the generic
// DRM command range.
const (
	drmIoctlBase    = 'd'
	drmCommandBase  = 0x40
	evdiCmdConnect  = drmCommandBase + 0x00
	evdiCmdRequest  = drmCommandBase + 0x01
	evdiCmdGrabPix  = drmCommandBase + 0x02
	evdiCmdAddDev   = drmCommandBase + 0x03
	evdiCmdDisconn  = drmCommandBase + 0x04
	evdiCmdPollNext = drmCommandBase + 0x05
)

func ioc(dir, typ, nr, size uintptr) uintptr {
	return dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNrShift | size<<iocSizeShift
}

func drmIOWR(nr, size uintptr) uintptr {
	return ioc(iocRead|iocWrite, drmIoctlBase, nr, size)
}

// connectReq mirrors struct drm_evdi_connect.
type connectReq struct {
	connected           int32
	devIndex            int32
	edid                uintptr
	edidLength          uint32
	pixelAreaLimit      uint32
	pixelPerSecondLimit uint32
}

// eventReq mirrors the driver's pending-event poll request.
type eventReq struct {
	kind   int32
	width  int32
	height int32
	rate   int32
	bpp    int32
	arg    int32
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

func open(path string) (int, error) {
	return syscall.Open(path, syscall.O_RDWR|syscall.O_CLOEXEC, 0)
}

func closeFd(fd int) error {
	return syscall.Close(fd)
}
