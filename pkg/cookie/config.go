package cookie

import "net/http"

// Config holds environment-driven cookie settings. SameSite uses the
// http.SameSite numeric values (2 = Lax, 3 = Strict, 4 = None).
type Config struct {
	Path     string        `env:"COOKIE_PATH" envDefault:"/"`
	Domain   string        `env:"COOKIE_DOMAIN" envDefault:""`
	Secure   bool          `env:"COOKIE_SECURE" envDefault:"true"`
	SameSite http.SameSite `env:"COOKIE_SAME_SITE" envDefault:"2"`
}
