//go:build wireinject
// +build wireinject

package wire

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"
	"github.com/thev1ndu/xp/config"
	"github.com/thev1ndu/xp/server"
)

// BuildApp assembles the application from cfg.
// The returned cleanup releases Redis and Kafka once the server has stopped.
func BuildApp(cfg *config.Config, logger zerolog.Logger) (*server.App, func(), error) {
	panic(wire.Build(AppSet))
}
