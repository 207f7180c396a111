package escrow

import "net/http"

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestGateway(fn roundTripFunc) *Gateway {
	return &Gateway{inner: &http.Client{Transport: fn}, baseURL: "https://escrow.example", apiKey: "k", denom: "uusdc"}
}
