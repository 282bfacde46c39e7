/*
Package nestrpc lets a caller invoke a named operation on a server-side
object as if it were a local method call, with per-call isolation,
authorization guards, flexible argument binding, and a codec that carries
values plain JSON cannot (dates, big integers, sets, arbitrary-key maps,
undefined).

The server side is an App: a lazily-bootstrapped execution environment
(descriptor registry + dependency container) plus the per-call invocation
pipeline. The client side is a Proxy that encodes arguments, performs one
HTTP exchange against the RPC endpoint, and decodes the result.

# Server

	reg := registry.New()
	reg.Register(&domain.TargetDescriptor{
		Name: "GreeterService",
		Construct: func(ctx context.Context) (any, error) {
			return &Greeter{}, nil
		},
		Actions: map[string]*domain.ActionDescriptor{
			"hello": {Handler: helloHandler},
		},
	})

	app := nestrpc.New(func(ctx context.Context) (*environment.Environment, error) {
		return environment.New(memory.NewContainer(), reg), nil
	})

	handler := httpadapter.NewHandler(app)
	http.ListenAndServe(":8080", handler)

# Client

	greeter := client.New("GreeterService", client.Options{
		BaseURL: "http://localhost:8080",
	})
	result, err := greeter.Call(ctx, "hello", "Ada")

Guards attached to a target or an action authorize each call before the
handler runs; a guard that denies, errors, or cannot be resolved aborts the
call. Parameter bindings fill argument slots from the request context or
custom extractors, with remaining slots drawn from the caller's arguments.
*/
package nestrpc
