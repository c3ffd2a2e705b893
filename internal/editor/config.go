package editor

import "time"

// Config holds the widget credentials and upstream endpoints.
type Config struct {
	ClientID     string        `env:"BEEFREE_CLIENT_ID,required"`
	ClientSecret string        `env:"BEEFREE_CLIENT_SECRET,required"`
	AuthURL      string        `env:"BEEFREE_AUTH_URL" envDefault:"https://auth.getbee.io/loginV2"`
	TemplateURL  string        `env:"BEEFREE_TEMPLATE_URL,required"`
	TemplateTTL  time.Duration `env:"BEEFREE_TEMPLATE_TTL" envDefault:"168h"`
}
