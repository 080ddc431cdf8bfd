package respond

import (
	"context"
	"net/http"

	"github.com/jonwraymond/compose/component"
)

// Serve renders root inside a Boundary and returns the response to send.
// A halt anywhere in the tree replaces the composed output with the halted
// Response. Other errors are returned unchanged.
func Serve(ctx context.Context, root *component.Class, props component.Props, children component.Children) (component.Response, error) {
	return serve(ctx, root, func(ctx context.Context) (any, error) {
		return root.Call(ctx, props, children)
	})
}

// ServeCached is Serve through the root's memo cache.
func ServeCached(ctx context.Context, root *component.Class, props component.Props, children component.Children) (component.Response, error) {
	return serve(ctx, root, func(ctx context.Context) (any, error) {
		return root.Cached(ctx, props, children)
	})
}

func serve(ctx context.Context, root *component.Class, fn func(context.Context) (any, error)) (component.Response, error) {
	if root == nil {
		return component.Response{}, ErrNilRoot
	}

	out, halted, err := component.Boundary(ctx, fn)
	if err != nil {
		return component.Response{}, err
	}
	if halted != nil {
		resp := *halted
		if resp.Status == 0 {
			resp.Status = http.StatusOK
		}
		if resp.Header == nil {
			resp.Header = http.Header{}
		}
		return resp, nil
	}

	return component.Response{
		Status: root.Status(),
		Header: root.Header(),
		Body:   component.Text(out),
	}, nil
}
