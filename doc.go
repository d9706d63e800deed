// Package mwm is a small framework for server-rendered Go web apps with a
// file-based page router, nested layouts and a typed JSON API.
//
// Pages live in a routes directory. cmd/routegen turns the directory into an
// explicit Go table, so nothing is discovered at runtime:
//
//	routes/
//	    index.go            -> /
//	    admin/layout.go     -> guard + chrome for /admin/**
//	    admin/roles/index.go
//	    admin/roles/index.$id.go  -> /admin/roles/:id
//
// # Quick Start
//
// Create an application with mwm.New, configure it with options and call
// Run to start the HTTP server:
//
//	app := mwm.New(
//	    mwm.WithLogger("web", middlewares.RequestIDExtractor()),
//	    mwm.WithPages(routetable.Routes),
//	    mwm.WithAssets(public.FS, routetable.Assets, cfg.IsDev()),
//	    mwm.WithDocument(views.Document),
//	    mwm.WithAuth(sessions),
//	    mwm.WithHandlers(apiv1.New(log)),
//	)
//
//	if err := app.Run(":8080", mwm.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Pages
//
// A route file exports a [Module]. Page renders the default view; method
// entries override single methods. A View returns a component that the
// dispatcher wraps in the layouts of every enclosing directory:
//
//	var Module = mwm.Module{
//	    Page: func(c mwm.Context) (mwm.Component, error) {
//	        roles, err := repo.ListRoles(c)
//	        if err != nil {
//	            return nil, err
//	        }
//	        return views.RoleList(roles), nil
//	    },
//	    POST: mwm.View(createRole),
//	}
//
// Requests sent by HTMX, or carrying ?partial=yes, get the page content
// without the layout chrome and document shell.
//
// # Layouts
//
// [Wrap] adds chrome. [Guard] runs a check first and may end the request,
// usually with [RedirectTo]. Nothing below a failing guard executes:
//
//	var Layout = mwm.Guard(requireAdmin, views.AdminShell)
//
// # Handlers
//
// Routes outside the page table, such as the JSON API, are declared by
// [Handler] values:
//
//	func (h *API) Routes(r mwm.Router) {
//	    r.Mount("/api", h.api)
//	}
//
// # Shutdown
//
// Run stops on SIGINT or SIGTERM. Open requests drain, job workers stop,
// then every [ShutdownHook] runs within [ShutdownTimeout]:
//
//	app.Run(":8080", mwm.ShutdownHook(db.Shutdown(pool)))
package mwm
