//go:build windows

package source

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/glorpus-work/tally/pkg/errors"
)

var (
	modmsi                 = windows.NewLazySystemDLL("msi.dll")
	procMsiEnumProductsW   = modmsi.NewProc("MsiEnumProductsW")
	procMsiGetProductInfoW = modmsi.NewProc("MsiGetProductInfoW")
)

const (
	errorMoreData        = 234
	errorNoMoreItems     = 259
	errorUnknownProduct  = 1605
	errorUnknownProperty = 1608
)

// WindowsMSI queries the Windows Installer product database through msi.dll.
type WindowsMSI struct{}

// NewWindowsMSI returns the live installer database adapter.
func NewWindowsMSI() *WindowsMSI {
	return &WindowsMSI{}
}

// Products implements MSI.
func (WindowsMSI) Products() ([]string, error) {
	if err := procMsiEnumProductsW.Find(); err != nil {
		return nil, errors.Wrapf(errors.ErrSourceUnavailable, "msi.dll: %v", err)
	}
	var products []string
	buf := make([]uint16, 39)
	for i := 0; ; i++ {
		r, _, _ := procMsiEnumProductsW.Call(uintptr(i), uintptr(unsafe.Pointer(&buf[0])))
		switch r {
		case 0:
			products = append(products, windows.UTF16ToString(buf))
		case errorNoMoreItems:
			return products, nil
		default:
			return products, errors.Wrapf(errors.ErrSourceUnavailable, "MsiEnumProductsW: %v", syscall.Errno(r))
		}
	}
}

// ProductInfo implements MSI.
func (WindowsMSI) ProductInfo(product, property string) (string, error) {
	if err := procMsiGetProductInfoW.Find(); err != nil {
		return "", errors.Wrapf(errors.ErrSourceUnavailable, "msi.dll: %v", err)
	}
	p, err := windows.UTF16PtrFromString(product)
	if err != nil {
		return "", errors.Wrapf(errors.ErrParse, "product %q: %v", product, err)
	}
	q, err := windows.UTF16PtrFromString(property)
	if err != nil {
		return "", errors.Wrapf(errors.ErrParse, "property %q: %v", property, err)
	}

	size := uint32(256)
	for {
		buf := make([]uint16, size)
		n := size
		r, _, _ := procMsiGetProductInfoW.Call(
			uintptr(unsafe.Pointer(p)),
			uintptr(unsafe.Pointer(q)),
			uintptr(unsafe.Pointer(&buf[0])),
			uintptr(unsafe.Pointer(&n)),
		)
		switch r {
		case 0:
			return windows.UTF16ToString(buf[:n]), nil
		case errorMoreData:
			size = n + 1
		case errorUnknownProduct:
			return "", errors.Wrapf(errors.ErrSourceUnavailable, "unknown product %s", product)
		case errorUnknownProperty:
			return "", errors.Wrapf(errors.ErrValueNotFound, "%s of %s", property, product)
		default:
			return "", errors.Wrapf(errors.ErrSourceUnavailable, "MsiGetProductInfoW %s: %v", product, syscall.Errno(r))
		}
	}
}
