package gen

import (
	"context"

	"go.uber.org/zap"

	"github.com/broady/idlbind/bindgen"
	"github.com/broady/idlbind/cmd/idlbind/internal/options"
	"github.com/broady/idlbind/internal/discover"
	"github.com/broady/idlbind/internal/watch"
)

type Cmd struct {
	options.Common `embed:""`

	Watch bool `help:"Watch inputs and regenerate on change." short:"w"`
}

func (c *Cmd) Run(ctx context.Context, log *zap.Logger) error {
	cfg, err := c.Load()
	if err != nil {
		return err
	}

	_, err = bindgen.Run(ctx, cfg, log)
	if !c.Watch {
		return err
	}
	// A broken input should not end a watch session.
	if err != nil {
		log.Error("generation failed", zap.Error(err))
	}

	units, err := discover.Find(cfg.Inputs...)
	if err != nil {
		return err
	}
	w, err := watch.New(discover.Dirs(units)...)
	if err != nil {
		return err
	}
	defer w.Close()
	w.Log = log

	log.Info("watching for changes", zap.Strings("dirs", discover.Dirs(units)))
	return w.Run(ctx, func(ctx context.Context) error {
		_, err := bindgen.Run(ctx, cfg, log)
		return err
	})
}
