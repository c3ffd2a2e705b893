// Package mailcraft is the backend of a drag-and-drop email template editor.
//
// It issues credentials and auth tokens to the embedded Beefree design
// widget, persists template designs with their rendered HTML, and schedules
// delivery of a template to a list of recipients through a River queue,
// one deferred task per recipient.
//
// This package re-exports the HTTP kernel. Domain logic lives in
// internal/templates, internal/scheduler and internal/editor; the service
// is assembled in cmd/server.
//
// # Quick Start
//
//	app := mailcraft.New(
//	    mailcraft.WithLogger(log),
//	    mailcraft.WithErrorHandler(handlers.ErrorHandler),
//	    mailcraft.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    mailcraft.WithHandlers(
//	        handlers.NewTemplates(templateService),
//	        handlers.NewSends(sendScheduler),
//	    ),
//	    mailcraft.WithJobs(jobs),
//	)
//
//	if err := app.Run(mailcraft.Address(":8080"), mailcraft.Logger(log)); err != nil {
//	    log.Error("server stopped", "error", err)
//	}
//
// # Handlers
//
// Handlers implement [Handler] and receive dependencies through their
// constructors:
//
//	func (h *Templates) Routes(r mailcraft.Router) {
//	    r.Route("/api/templates", func(r mailcraft.Router) {
//	        r.GET("/", h.list)
//	        r.POST("/", h.save)
//	    })
//	}
//
// Handlers return errors. The app's [ErrorHandler] turns them into JSON
// envelopes with the matching status code.
package mailcraft
