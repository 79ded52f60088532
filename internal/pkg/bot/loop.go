package bot

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
)

// Source yields normalized inbound events from the chat transport.
type Source interface {
	Updates(ctx context.Context) (<-chan Update, error)
}

// Run consumes the source until the context ends. Updates are handled one at
// a time; HandleUpdate absorbs every failure, so the loop only stops with
// the context.
func (b *Bot) Run(ctx context.Context, source Source) error {
	updates, err := source.Updates(ctx)
	if err != nil {
		return err
	}
	log.Info("[Bot] dispatch loop started")

	for {
		select {
		case <-ctx.Done():
			log.Info("[Bot] dispatch loop stopping")
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				log.Info("[Bot] update source closed")
				return nil
			}
			b.HandleUpdate(ctx, up)
		}
	}
}
