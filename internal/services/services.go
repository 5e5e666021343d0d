// Package services wires the daemon's components together: the store,
// the rebuildable library model and search index, the scanner, and the
// playback engine all live here as a single container constructed once at
// startup.
package services

import (
	"context"

	"github.com/musium/musium/internal/config"
	"github.com/musium/musium/internal/library"
	"github.com/musium/musium/internal/player"
	"github.com/musium/musium/internal/player/queue"
	"github.com/musium/musium/internal/scanner"
	"github.com/musium/musium/internal/search"
	"github.com/musium/musium/internal/shared"
	"github.com/musium/musium/internal/store"
)

// Container holds every long-lived service the HTTP API and CLI commands
// depend on.
type Container struct {
	Config  config.Config
	Logger  shared.Logger
	Store   *store.Store
	Model   *library.Holder
	Index   *search.Holder
	Scanner *scanner.Scanner
	Queue   *queue.Queue
	Player  *player.Player
}

// New opens the store and constructs every service, wiring the scanner's
// onModel callback to publish both the library model and its search index
// in one step (§3.4, §4.6).
func New(cfg config.Config, logger shared.Logger) (*Container, error) {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	model := library.NewHolder()
	index := search.NewHolder()

	onModel := func(lib *library.Library) {
		model.Publish(lib)
		index.Publish(search.Build(lib))
	}

	sc := scanner.New(cfg.LibraryPath, st, 0, logger, onModel)

	q := queue.New()
	life := player.NewLifecycle(cfg.ExecPrePlaybackPath, cfg.ExecPostIdlePath, logger)
	p := player.New(st, q, logger, life, model, cfg.VolumeDB, cfg.HighPassCutoffHz, cfg.IdleTimeoutSeconds)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Store:   st,
		Model:   model,
		Index:   index,
		Scanner: sc,
		Queue:   q,
		Player:  p,
	}, nil
}

// Close releases the store's database handle.
func (c *Container) Close() error {
	return c.Store.Close()
}

// StartPlayer launches the player's decoder and output threads.
func (c *Container) StartPlayer(ctx context.Context) {
	c.Player.Start(ctx)
}
