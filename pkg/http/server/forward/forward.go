// Package forward provides helper functions for forwarding HTTP requests to use cases.
package forward

import (
	"reflect"

	"github.com/code19m/errx"
)

const (
	codeInvalidContentType = "INVALID_CONTENT_TYPE"
	codeInvalidJSONBody    = "INVALID_JSON_BODY"
	codeInvalidQueryParams = "INVALID_QUERY_PARAMS"
	codeInvalidPathParams  = "INVALID_PATH_PARAMS"
)

// Option customizes how a forwarded handler writes its success response.
type Option func(*handlerOpts)

type handlerOpts struct {
	successStatus int
}

// WithStatus overrides the HTTP status code written on success.
// The default is 200 for handlers with a response and 204 for handlers without.
func WithStatus(code int) Option {
	return func(o *handlerOpts) {
		o.successStatus = code
	}
}

func buildOpts(defaultStatus int, opts []Option) handlerOpts {
	o := handlerOpts{successStatus: defaultStatus}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// newRequest creates a new request of type T_Req.
// It ensures that T_Req is a pointer to a struct.
func newRequest[T_Req any]() (T_Req, error) {
	var req T_Req

	reqType := reflect.TypeOf((*T_Req)(nil)).Elem()
	if reqType.Kind() != reflect.Ptr || reqType.Elem().Kind() != reflect.Struct {
		return req, errx.New("T_Req must be a pointer to a use case input struct")
	}

	reqVal := reflect.New(reqType.Elem()).Interface().(T_Req) //nolint:errcheck // safe type assertion
	return reqVal, nil
}
