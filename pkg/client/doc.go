// Package client executes outbound HTTP requests for endpoint analysis and
// token exchange.
//
// # Quick Start
//
//	c := client.New()
//	resp, err := c.Do(ctx, &client.Request{
//	    URL:     "https://api.example.com/users",
//	    Headers: map[string]string{"Accept": "application/json"},
//	})
//
// Use custom configuration:
//
//	c := client.New(
//	    client.WithTimeout(10*time.Second),
//	    client.WithMaxBodyBytes(1<<20),
//	    client.WithHTTPClient(customHTTPClient),
//	)
//
// # Errors
//
// Every failure is a *scouterr.Error of kind transport_failure. A non-2xx
// response wraps a *StatusError carrying the status code and the server's
// error message when the body is a recognised JSON error envelope:
//
//	var se *client.StatusError
//	if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
//	    // credentials rejected
//	}
//
// Callers that need a different transport (tests, recording proxies)
// implement Doer.
package client
