// Package credential owns the OAuth2 access/refresh token pair used to
// authenticate requests, and the machinery to keep it live.
//
// Store holds the current Pair and guarantees two things under concurrency:
// the pair is swapped atomically (no torn reads), and refresh is
// single-flight: when several goroutines observe an expired or invalidated
// pair at once, exactly one refresh call reaches the authorization server
// and all of them share its result. Endpoint is a ready-made RefreshFunc
// speaking RFC 6749 to a token endpoint.
//
//	ep := credential.NewEndpoint(credential.EndpointConfig{
//	    TokenURL: "https://auth.example.com/oauth/token",
//	    ClientID: "my-client",
//	})
//	store := credential.NewStore(initialPair, ep.Refresh)
//
// A failed refresh is terminal (ErrRefreshFailed): the store never retries
// internally, because a rejected refresh token means re-authentication is
// required, not another attempt.
package credential
