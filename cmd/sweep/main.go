// Command sweep deletes expired session tokens once and exits.
package main

import (
	"context"
	"log"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
)

func main() {

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg := config.LoadConfig()

	n, err := server.SweepOnce(ctx, cfg)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	log.Printf("removed %d expired sessions", n)

}
