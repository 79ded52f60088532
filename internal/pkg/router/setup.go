package router

import (
	"github.com/gofiber/fiber/v2"

	apiv1 "github.com/mkravets/ArtPeak/internal/api/v1"
	"github.com/mkravets/ArtPeak/internal/pkg/lifecycle"
	"github.com/mkravets/ArtPeak/internal/pkg/trust"
)

// Router installs one route family on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires every route family.
func InstallRouter(app *fiber.App, lm *lifecycle.Manager, tm *trust.Manager) {
	setup(app, NewHealthRouter(), NewApiRouter(apiv1.NewAPIServer(lm, tm)))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
