package mailer

// Config holds the fixed sender identity used for every outgoing message.
type Config struct {
	FromAddress string `env:"MAIL_FROM_ADDRESS"`
	FromName    string `env:"MAIL_FROM_NAME"`
}

// From returns the formatted sender address, or "" when none is configured.
func (c Config) From() string {
	if c.FromAddress == "" {
		return ""
	}
	return Recipient(c.FromName, c.FromAddress)
}
