package extdelegate

/*
#ifndef IMXNN_EXTERNAL_DELEGATE_H_
#define IMXNN_EXTERNAL_DELEGATE_H_

#include <stdlib.h>
#include <tensorflow/lite/c/c_api.h>
#include "tensorflow/lite/c/common.h"

#cgo CFLAGS: -std=c99
#cgo LDFLAGS: -ltensorflowlite_c

#define kExternalDelegateMaxOptions 256
typedef struct TfLiteExternalDelegateOptions {
  const char* lib_path;
  int count;
  const char* keys[kExternalDelegateMaxOptions];
  const char* values[kExternalDelegateMaxOptions];
  TfLiteStatus (*insert)(struct TfLiteExternalDelegateOptions* options,
                         const char* key, const char* value);
} TfLiteExternalDelegateOptions;

TfLiteStatus TfLiteExternalDelegateOptionsInsert(
    TfLiteExternalDelegateOptions* options, const char* key, const char* value);

TfLiteExternalDelegateOptions TfLiteExternalDelegateOptionsDefault(
    const char* lib_path);

TfLiteDelegate* TfLiteExternalDelegateCreate(
    const TfLiteExternalDelegateOptions* options);

void TfLiteExternalDelegateDelete(TfLiteDelegate* delegate);

static TfLiteExternalDelegateOptions* ExternalDelegateOptionsNew(const char* lib_path)
{
	TfLiteExternalDelegateOptions* options = malloc(sizeof(TfLiteExternalDelegateOptions));
	if (options != NULL)
		*options = TfLiteExternalDelegateOptionsDefault(lib_path);
	return options;
}

static int ExternalDelegateOptionsInsert(TfLiteExternalDelegateOptions* options, const char* key, const char* value)
{
	return TfLiteExternalDelegateOptionsInsert(options, key, value) == kTfLiteOk;
}

#endif  // IMXNN_EXTERNAL_DELEGATE_H_
*/
import "C"
import (
	"errors"
	"fmt"
	"sort"
	"unsafe"

	"github.com/mattn/go-tflite/delegates"
)

const MAX_OPTIONS = 256

var ErrDelegate = errors.New("cannot create external delegate")

type ExternalDelegate struct {
	d *C.TfLiteDelegate
}

func (d *ExternalDelegate) Delete() {
	C.TfLiteExternalDelegateDelete(d.d)
}

func (d *ExternalDelegate) Ptr() unsafe.Pointer {
	return unsafe.Pointer(d.d)
}

// Create loads the delegate library at libPath and passes it options, in key order.
func Create(libPath string, options map[string]string) (delegates.Delegater, error) {
	if len(options) > MAX_OPTIONS {
		return nil, fmt.Errorf("%s: %d options, at most %d: %w", libPath, len(options), MAX_OPTIONS, ErrDelegate)
	}
	var cstrs []*C.char
	defer func() {
		for _, s := range cstrs {
			C.free(unsafe.Pointer(s))
		}
	}()
	cstr := func(s string) *C.char {
		c := C.CString(s)
		cstrs = append(cstrs, c)
		return c
	}

	opts := C.ExternalDelegateOptionsNew(cstr(libPath))
	if opts == nil {
		return nil, fmt.Errorf("%s: %w", libPath, ErrDelegate)
	}
	defer C.free(unsafe.Pointer(opts))

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if C.ExternalDelegateOptionsInsert(opts, cstr(k), cstr(options[k])) == 0 {
			return nil, fmt.Errorf("%s: option %s rejected: %w", libPath, k, ErrDelegate)
		}
	}

	d := C.TfLiteExternalDelegateCreate(opts)
	if d == nil {
		return nil, fmt.Errorf("%s: %w", libPath, ErrDelegate)
	}
	return &ExternalDelegate{d: d}, nil
}
