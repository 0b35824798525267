package link

import "errors"

// ErrReadTimeout means no data arrived within the transport's read timeout;
// callers treat this as "no frame right now", not a failure.
var ErrReadTimeout = errors.New("link: read timeout")

// ErrConnectionLost means the current connection is no longer usable: the
// caller must reconnect. Raised on a fatal transport error, a binary
// framing violation (unescaped 0x7E mid-frame), or the 60-second mid-frame
// guard expiring.
var ErrConnectionLost = errors.New("link: connection lost")
