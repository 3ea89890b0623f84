package rtde

import (
	"github.com/puzpuzpuz/xsync/v3"
)

// liveSessions tracks which controller endpoints have a live session in this
// process. The RTDE input registers are a controller-wide resource; two
// sessions against the same controller would fight over them, so the second
// claim is rejected until the first session is closed.
var liveSessions = xsync.NewMapOf[string, *Session]()

// claimEndpoint registers s as the owner of endpoint.
func claimEndpoint(endpoint string, s *Session) error {
	if _, loaded := liveSessions.LoadOrStore(endpoint, s); loaded {
		return ErrControllerBusy
	}

	return nil
}

// releaseEndpoint removes the claim, but only if s still owns it.
func releaseEndpoint(endpoint string, s *Session) {
	liveSessions.Compute(endpoint, func(cur *Session, loaded bool) (*Session, bool) {
		if !loaded {
			return nil, true // nothing to release
		}
		if cur != s {
			return cur, false // claimed by someone else, keep it
		}

		return nil, true // delete
	})
}
