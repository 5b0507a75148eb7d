// A standalone local file-store server speaking the storage contract that svk
// verifies. Useful for trying out svk without a remote deployment:
//
//	localfstore -port 3000 -dir /tmp/fstorefiles &
//	svk run -n test.txt -s 2048 -u http://localhost:3000
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/storageresearch/svk/pkg/fstore"
)

var (
	port = flag.Int("port", 3000, "The server port")
	dir  = flag.String("dir", "/tmp/fstorefiles", "Directory holding stored objects")
)

func main() {
	flag.Parse()

	if err := os.MkdirAll(*dir, 0755); err != nil {
		log.Fatalf("Failed to create storage directory: %v", err)
	}

	svc := fstore.NewService(log.StandardLogger(), *dir)
	if err := svc.Start(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("Failed to start file store: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("Shutting down")
	if err := svc.Shutdown(); err != nil {
		log.Errorf("Shutdown failed: %v", err)
	}
}
