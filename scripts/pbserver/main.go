// Command pbserver runs an embedded PocketBase with the kv_blobs collection
// applied, for STORE_BACKEND=pocketbase setups without an external instance.
package main

import (
	"github.com/pocketbase/pocketbase"
	log "github.com/sirupsen/logrus"

	_ "rfid-logbook/migrations"
)

func main() {
	app := pocketbase.New()

	if err := app.Start(); err != nil {
		log.Fatalf("❌ PocketBase failed: %v", err)
	}
}
