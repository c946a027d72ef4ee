// Package apiconnect wires the splitfree services to Connect: procedure
// names, handler constructors and typed clients. Every handler and client is
// configured with the api JSON codec.
package apiconnect

import (
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitfree/pkg/api"
)

const (
	GroupServiceName      = "splitfree.v1.GroupService"
	ExpenseServiceName    = "splitfree.v1.ExpenseService"
	SettlementServiceName = "splitfree.v1.SettlementService"
)

// route pairs a procedure with its handler.
type route struct {
	procedure string
	handler   http.Handler
}

// serviceHandler dispatches on the exact procedure path.
func serviceHandler(routes ...route) http.Handler {
	byPath := make(map[string]http.Handler, len(routes))
	for _, r := range routes {
		byPath[r.procedure] = r.handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := byPath[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(api.Codec{})}, opts...)
}

func clientOptions(opts []connect.ClientOption) []connect.ClientOption {
	return append([]connect.ClientOption{connect.WithCodec(api.Codec{})}, opts...)
}

func servicePath(name string) string {
	return "/" + name + "/"
}

func trimBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}
