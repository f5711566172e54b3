package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smallbiznis/hirewire/internal/clock"
	"github.com/smallbiznis/hirewire/internal/migration"
	"github.com/smallbiznis/hirewire/internal/observability"
	"github.com/smallbiznis/hirewire/internal/server"
	"github.com/smallbiznis/hirewire/pkg/db"
)

func main() {
	app := fx.New(
		// Core infrastructure
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Schema and demo data
		migration.Module,

		// HTTP API plus the domain modules it serves
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
