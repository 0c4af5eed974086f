/*
go-darknet provides Go language bindings for the darknet neural network
library.  The root package owns the native resources (networks, images,
detection arrays, metadata, alphabet glyphs and label name lists) and
releases each of them exactly once when Close is called.

The native calls themselves are made through the Engine interface.  The
native subpackage implements Engine with cgo against libdarknet, which must
be built separately and made visible to the linker, eg:

	CGO_CFLAGS="-I/path/to/darknet/include" \
	CGO_LDFLAGS="-L/path/to/darknet" go build ./...

Build tags gpu, cudnn and opencv select the matching darknet build variant.

darknet is not thread safe.  None of the types in this package may be used
from more than one goroutine at a time, run independent Networks (see Pool)
to perform inference concurrently.  darknet terminates the process on
malformed configuration files, corrupt weights and allocation failures,
these faults can not be recovered from in Go.

See example code and usage in the examples subdirectory.
*/
package darknet
