package main

/*
#include <dlfcn.h>
#include <stdlib.h>

typedef unsigned char uchar;

// Nine fixed call shapes, one per supported dependency arity (0..8),
// matching internal/executor/dispatch.go's arity bound and the entry
// point signature internal/cellcompile/wrapper.go generates: one
// (ptr,len) pair per dependency, then a (ptr,len) pair for the widget
// values blob, then an (out ptr, out len) pair, returning a status code.
// cgo cannot call through an arbitrary C function pointer directly, so
// each arity gets a tiny trampoline that casts the dlsym'd symbol to the
// right typedef and calls it.

typedef int (*fn0)(uchar*, size_t, void**, size_t*);
typedef int (*fn1)(uchar*, size_t, uchar*, size_t, void**, size_t*);
typedef int (*fn2)(uchar*, size_t, uchar*, size_t, uchar*, size_t, void**, size_t*);
typedef int (*fn3)(uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, void**, size_t*);
typedef int (*fn4)(uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, void**, size_t*);
typedef int (*fn5)(uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, void**, size_t*);
typedef int (*fn6)(uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, void**, size_t*);
typedef int (*fn7)(uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, void**, size_t*);
typedef int (*fn8)(uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, uchar*, size_t, void**, size_t*);

static int call_fn0(void *fn, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn0)fn)(wv, wvl, outp, outl);
}
static int call_fn1(void *fn, uchar *a0, size_t a0l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn1)fn)(a0, a0l, wv, wvl, outp, outl);
}
static int call_fn2(void *fn, uchar *a0, size_t a0l, uchar *a1, size_t a1l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn2)fn)(a0, a0l, a1, a1l, wv, wvl, outp, outl);
}
static int call_fn3(void *fn, uchar *a0, size_t a0l, uchar *a1, size_t a1l, uchar *a2, size_t a2l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn3)fn)(a0, a0l, a1, a1l, a2, a2l, wv, wvl, outp, outl);
}
static int call_fn4(void *fn, uchar *a0, size_t a0l, uchar *a1, size_t a1l, uchar *a2, size_t a2l, uchar *a3, size_t a3l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn4)fn)(a0, a0l, a1, a1l, a2, a2l, a3, a3l, wv, wvl, outp, outl);
}
static int call_fn5(void *fn, uchar *a0, size_t a0l, uchar *a1, size_t a1l, uchar *a2, size_t a2l, uchar *a3, size_t a3l, uchar *a4, size_t a4l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn5)fn)(a0, a0l, a1, a1l, a2, a2l, a3, a3l, a4, a4l, wv, wvl, outp, outl);
}
static int call_fn6(void *fn, uchar *a0, size_t a0l, uchar *a1, size_t a1l, uchar *a2, size_t a2l, uchar *a3, size_t a3l, uchar *a4, size_t a4l, uchar *a5, size_t a5l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn6)fn)(a0, a0l, a1, a1l, a2, a2l, a3, a3l, a4, a4l, a5, a5l, wv, wvl, outp, outl);
}
static int call_fn7(void *fn, uchar *a0, size_t a0l, uchar *a1, size_t a1l, uchar *a2, size_t a2l, uchar *a3, size_t a3l, uchar *a4, size_t a4l, uchar *a5, size_t a5l, uchar *a6, size_t a6l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn7)fn)(a0, a0l, a1, a1l, a2, a2l, a3, a3l, a4, a4l, a5, a5l, a6, a6l, wv, wvl, outp, outl);
}
static int call_fn8(void *fn, uchar *a0, size_t a0l, uchar *a1, size_t a1l, uchar *a2, size_t a2l, uchar *a3, size_t a3l, uchar *a4, size_t a4l, uchar *a5, size_t a5l, uchar *a6, size_t a6l, uchar *a7, size_t a7l, uchar *wv, size_t wvl, void **outp, size_t *outl) {
	return ((fn8)fn)(a0, a0l, a1, a1l, a2, a2l, a3, a3l, a4, a4l, a5, a5l, a6, a6l, a7, a7l, wv, wvl, outp, outl);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// loadedCell is one cell dlopen'd into this worker process.
type loadedCell struct {
	handle   unsafe.Pointer
	entry    unsafe.Pointer
	depCount int
}

// loadDylib dlopens path and resolves symbol as the cell's entry point,
// the worker-side half of the wrapper.go/go-plugin-style process
// isolation contract: the worker owns exactly one dylib handle per
// loaded cell for the lifetime of this process.
func loadDylib(path, symbol string, depCount int) (*loadedCell, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.dlopen(cPath, C.RTLD_NOW)
	if handle == nil {
		return nil, fmt.Errorf("dlopen %s: %s", path, C.GoString(C.dlerror()))
	}

	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))
	entry := C.dlsym(handle, cSymbol)
	if entry == nil {
		C.dlclose(handle)
		return nil, fmt.Errorf("dlsym %s in %s: %s", symbol, path, C.GoString(C.dlerror()))
	}

	return &loadedCell{handle: handle, entry: entry, depCount: depCount}, nil
}

func (c *loadedCell) close() {
	if c.handle != nil {
		C.dlclose(c.handle)
		c.handle = nil
	}
}

// invoke calls the cell's entry point with inputs and the widget values
// blob, returning the raw packed output buffer (internal/cellcompile's
// packOutput layout) and the cell's own return code.
func (c *loadedCell) invoke(inputs [][]byte, widgetValuesJSON []byte) (raw []byte, code int, err error) {
	if len(inputs) != c.depCount {
		return nil, 0, fmt.Errorf("expected %d inputs, got %d", c.depCount, len(inputs))
	}

	ptrs := make([]*C.uchar, 8)
	lens := make([]C.size_t, 8)
	for i, in := range inputs {
		if len(in) > 0 {
			ptrs[i] = (*C.uchar)(unsafe.Pointer(&in[0]))
		}
		lens[i] = C.size_t(len(in))
	}

	var wvPtr *C.uchar
	if len(widgetValuesJSON) > 0 {
		wvPtr = (*C.uchar)(unsafe.Pointer(&widgetValuesJSON[0]))
	}
	wvLen := C.size_t(len(widgetValuesJSON))

	var outPtr unsafe.Pointer
	var outLen C.size_t

	ret := c.dispatch(ptrs, lens, wvPtr, wvLen, &outPtr, &outLen)
	if outPtr != nil {
		defer C.free(outPtr)
		raw = C.GoBytes(outPtr, C.int(outLen))
	}
	return raw, int(ret), nil
}

func (c *loadedCell) dispatch(ptrs []*C.uchar, lens []C.size_t, wvPtr *C.uchar, wvLen C.size_t, outPtr *unsafe.Pointer, outLen *C.size_t) C.int {
	switch c.depCount {
	case 0:
		return C.int(C.call_fn0(c.entry, wvPtr, wvLen, outPtr, outLen))
	case 1:
		return C.int(C.call_fn1(c.entry, ptrs[0], lens[0], wvPtr, wvLen, outPtr, outLen))
	case 2:
		return C.int(C.call_fn2(c.entry, ptrs[0], lens[0], ptrs[1], lens[1], wvPtr, wvLen, outPtr, outLen))
	case 3:
		return C.int(C.call_fn3(c.entry, ptrs[0], lens[0], ptrs[1], lens[1], ptrs[2], lens[2], wvPtr, wvLen, outPtr, outLen))
	case 4:
		return C.int(C.call_fn4(c.entry, ptrs[0], lens[0], ptrs[1], lens[1], ptrs[2], lens[2], ptrs[3], lens[3], wvPtr, wvLen, outPtr, outLen))
	case 5:
		return C.int(C.call_fn5(c.entry, ptrs[0], lens[0], ptrs[1], lens[1], ptrs[2], lens[2], ptrs[3], lens[3], ptrs[4], lens[4], wvPtr, wvLen, outPtr, outLen))
	case 6:
		return C.int(C.call_fn6(c.entry, ptrs[0], lens[0], ptrs[1], lens[1], ptrs[2], lens[2], ptrs[3], lens[3], ptrs[4], lens[4], ptrs[5], lens[5], wvPtr, wvLen, outPtr, outLen))
	case 7:
		return C.int(C.call_fn7(c.entry, ptrs[0], lens[0], ptrs[1], lens[1], ptrs[2], lens[2], ptrs[3], lens[3], ptrs[4], lens[4], ptrs[5], lens[5], ptrs[6], lens[6], wvPtr, wvLen, outPtr, outLen))
	default:
		return C.int(C.call_fn8(c.entry, ptrs[0], lens[0], ptrs[1], lens[1], ptrs[2], lens[2], ptrs[3], lens[3], ptrs[4], lens[4], ptrs[5], lens[5], ptrs[6], lens[6], ptrs[7], lens[7], wvPtr, wvLen, outPtr, outLen))
	}
}
