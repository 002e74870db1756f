package transport

import (
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/blueflyio/ossa-go/tracing"
)

// InjectResty registers a request hook that copies the active trace
// context's headers onto every outgoing resty request. The context is taken
// from the request's context.Context, so callers chain naturally:
//
//	client := resty.New()
//	transport.InjectResty(client)
//	client.R().SetContext(transport.NewContext(ctx, tc)).Get(url)
func InjectResty(client *resty.Client) *resty.Client {
	return client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		tc := FromContext(req.Context())
		if tc == nil {
			return nil
		}
		for name, value := range tc.Headers {
			req.SetHeader(name, value)
		}
		return nil
	})
}

// InjectHeaders copies the context's propagation headers onto a standard
// http.Request. Nil contexts are a no-op.
func InjectHeaders(tc *tracing.TraceContext, req *http.Request) {
	if tc == nil {
		return
	}
	for name, value := range tc.Headers {
		req.Header.Set(name, value)
	}
}
