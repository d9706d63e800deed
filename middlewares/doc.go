// Package middlewares holds the app-wide middleware of mwm applications.
//
// # Request ID
//
// RequestID tags every request with an id, reusing one sent by a proxy.
// Pair it with RequestIDExtractor so log entries carry request_id:
//
//	app := mwm.New(
//	    mwm.WithLogger("web", middlewares.RequestIDExtractor()),
//	    mwm.WithMiddleware(middlewares.RequestID()),
//	)
//
// Plain http.Handlers mounted on the app, such as the JSON API, read the id
// with RequestIDFromContext.
//
// # Recover
//
// Recover turns panics in pages, layouts and handlers into *PanicError. The
// app answers it with a generic 500 and the panic is logged with its stack.
//
// # Timeout
//
// Timeout answers slow requests with 503. The handler keeps running, so
// long operations should watch DeadlineContext(c).Done().
//
// # CORS
//
// CORS adds cross-origin headers and answers preflight requests. It is
// usually scoped to the API group rather than installed globally:
//
//	r.Group(func(r mwm.Router) {
//	    r.Use(middlewares.CORS(middlewares.WithExposeHeaders("X-Request-ID")))
//	    r.Mount("/api", typedAPI)
//	})
//
// # Order
//
//	mwm.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.Recover(),
//	    middlewares.Timeout(30*time.Second),
//	)
package middlewares
