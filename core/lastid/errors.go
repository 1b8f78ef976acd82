package lastid

import "errors"

// ErrLastIdNotFound is returned by Reserve when tip is not currently
// registered in the ring.
var ErrLastIdNotFound = errors.New("lastid: tip not found")

// ErrDuplicateSignature is returned by Reserve when the signature was
// already reserved under the given tip.
var ErrDuplicateSignature = errors.New("lastid: duplicate signature")
