package kit

import (
	"context"
	"testing"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next Endpoint) Endpoint {
			return func(ctx context.Context, request any) (any, error) {
				order = append(order, name)
				return next(ctx, request)
			}
		}
	}
	ep := func(_ context.Context, request any) (any, error) {
		order = append(order, "endpoint")
		return request, nil
	}

	resp, err := Chain(mw("outer"), mw("middle"), mw("inner"))(ep)(context.Background(), "ping")
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if resp != "ping" {
		t.Errorf("resp = %v, want ping", resp)
	}

	want := []string{"outer", "middle", "inner", "endpoint"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestContextHelpers(t *testing.T) {
	if got := GetTransport(context.Background()); got != "http" {
		t.Errorf("default transport = %q, want http", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("default request id = %q, want empty", got)
	}

	ctx := WithRequestID(WithTransport(context.Background(), "mcp_quic"), "ab12cd34")
	if got := GetTransport(ctx); got != "mcp_quic" {
		t.Errorf("transport = %q, want mcp_quic", got)
	}
	if got := GetRequestID(ctx); got != "ab12cd34" {
		t.Errorf("request id = %q, want ab12cd34", got)
	}
}
