package tensor

import "github.com/gomlx/exceptions"

// KernelFn is a kernel body instantiated for one element type. Parameters are
// passed untyped so that one table can hold every instantiation.
type KernelFn func(params ...any)

// DTypeDispatcher maps a DataType to the kernel instantiated for it.
//
// Kernels are written once as generic functions and registered per type at
// init time:
//
//	var dispatchFill = tensor.NewDTypeDispatcher("Fill")
//
//	func init() {
//	    dispatchFill.Register(tensor.Float32, fillGeneric[float32])
//	    dispatchFill.Register(tensor.Int64, fillGeneric[int64])
//	}
//
//	dispatchFill.Dispatch(x.DType(), x, value)
type DTypeDispatcher struct {
	name  string
	table [numDataTypes]KernelFn
}

// NewDTypeDispatcher creates an empty dispatcher; name is used in panics.
func NewDTypeDispatcher(name string) *DTypeDispatcher {
	return &DTypeDispatcher{name: name}
}

// Name returns the dispatcher's name.
func (d *DTypeDispatcher) Name() string {
	return d.name
}

// Register installs fn for dtype, replacing any previous registration.
func (d *DTypeDispatcher) Register(dtype DataType, fn KernelFn) {
	if dtype <= Invalid || dtype >= numDataTypes {
		exceptions.Panicf("%s: cannot register kernel for invalid dtype %d", d.name, int(dtype))
	}
	d.table[dtype] = fn
}

// Supports reports whether a kernel is registered for dtype.
func (d *DTypeDispatcher) Supports(dtype DataType) bool {
	return dtype > Invalid && dtype < numDataTypes && d.table[dtype] != nil
}

// Dispatch runs the kernel registered for dtype.
func (d *DTypeDispatcher) Dispatch(dtype DataType, params ...any) {
	if !d.Supports(dtype) {
		exceptions.Panicf("%s: unsupported dtype %s", d.name, dtype)
	}
	d.table[dtype](params...)
}
