// Package blob selects a core.Store implementation from configuration.
package blob

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/speaker/internal/blob/core"
	"github.com/dmitrijs2005/speaker/internal/blob/fs"
	"github.com/dmitrijs2005/speaker/internal/blob/memory"
	"github.com/dmitrijs2005/speaker/internal/blob/s3"
	"github.com/dmitrijs2005/speaker/internal/common"
)

// Config picks the driver and carries its settings.
type Config struct {
	Driver core.Driver
	Root   string // fs driver
	S3     s3.Config
}

// Open returns the store named by cfg.Driver. An empty driver means fs.
func Open(ctx context.Context, cfg Config) (core.Store, error) {
	switch cfg.Driver {
	case "", core.DriverFilesystem:
		return fs.New(cfg.Root)
	case core.DriverS3:
		return s3.New(ctx, cfg.S3)
	case core.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown blob driver %q: %w", cfg.Driver, common.ErrInvalidArgument)
	}
}
