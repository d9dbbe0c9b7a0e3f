package common

import (
	golog "github.com/ipfs/go-log"
)

// Logger is the package-wide event logger. Callers that want to see
// debug-level traces from key generation should call
// golog.SetLogLevel("paillier", "debug") before invoking the library.
var Logger = golog.Logger("paillier")
