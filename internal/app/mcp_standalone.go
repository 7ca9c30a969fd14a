package app

import (
	"context"
	"time"
)

// ServeMCP runs the MCP server on stdin/stdout until the client disconnects.
// Approvals for destructive tools are written to the database so a running
// serve process can show them to the user.
func (a *App) ServeMCP() error {
	a.logger.Info("starting standalone stdio server", "db", a.db.Path())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		a.generation.Wait(ctx)
	}()
	return a.mcp.ServeStdio()
}
