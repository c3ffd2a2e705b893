// Package scheduler turns one send request into one deferred delivery task
// per recipient.
//
// Schedule validates the whole request first and creates nothing when any
// part is invalid. Accepted requests are enqueued as a single River batch,
// so either every recipient gets a task or none does. Tasks run
// independently on the "email" queue no earlier than the requested time;
// their relative order is not defined.
//
// Each DeliveryTask reloads its template when it fires, so edits made after
// scheduling are delivered and a deleted template fails only the tasks that
// still reference it. Failed attempts are retried by River. Once the retry
// budget is spent the failure is logged at critical level and counted; it
// never reaches sibling tasks or the original caller.
//
// Scheduled tasks cannot be cancelled and the caller receives no per-recipient
// completion feedback.
package scheduler
