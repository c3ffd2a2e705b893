// Package mailer defines the provider-neutral email message and the Sender
// interface delivery providers implement.
//
// [Mailer] wraps a provider: it validates each message and fills in the
// configured sender identity before handing it over.
//
//	m := mailer.New(resend.New(cfg.Resend), cfg.Mailer)
//	err := m.Send(ctx, &mailer.Email{
//		To:      []string{"jane@example.com"},
//		Subject: "Spring sale",
//		HTML:    html,
//	})
//
// [LogSender] writes messages to a logger instead of delivering them and is
// used when no provider is configured.
package mailer
