package app

import (
	"github.com/go-chi/oauth"

	"github.com/quickform/quickform/config"
	"github.com/quickform/quickform/store"
	"github.com/quickform/quickform/upload"
)

// App bundles the shared handles every controller needs. It is built
// once in main and passed down explicitly; nothing reaches for
// process-wide state.
type App struct {
	*oauth.BearerServer
	config.Config
	Store    *store.Store
	Uploader upload.Uploader
}
