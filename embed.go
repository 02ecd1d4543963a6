package filedrop

import "embed"

// PublicFS holds the static files served at the site root.
//
//go:embed public
var PublicFS embed.FS
