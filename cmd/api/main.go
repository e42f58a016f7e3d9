package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "backoffice/api/swagger" // swagger docs
)

// @title           Proposal Back-Office API
// @version         1.0
// @description     Commercial proposal lifecycle and tiered approval routing for the dealership back-office.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
