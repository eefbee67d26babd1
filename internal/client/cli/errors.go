package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/marketclient/internal/client/offline"
	"github.com/dmitrijs2005/marketclient/internal/client/transport"
)

var errUsage = errors.New("usage")

// userMessage turns a core error into text for the terminal. The core never
// produces user-facing wording itself.
func userMessage(err error) string {
	switch {
	case errors.Is(err, errUsage):
		return err.Error()
	case errors.Is(err, offline.ErrOfflineNoCache):
		return "not available offline"
	case errors.Is(err, transport.ErrNotAuthenticated):
		return "please log in first"
	case errors.Is(err, transport.ErrUnauthorized):
		return "session expired, please log in again"
	case errors.Is(err, transport.ErrUnavailable):
		return "server unreachable, check your connection"
	case errors.Is(err, transport.ErrServer):
		return "server error, try again later"
	case errors.Is(err, transport.ErrClient):
		return fmt.Sprintf("request rejected by server (%d)", transport.StatusCode(err))
	case errors.Is(err, transport.ErrMalformedResponse):
		return "unexpected response from server"
	default:
		return err.Error()
	}
}

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}
