// Package migrations creates the PocketBase collections used by the blob store
package migrations

import (
	"github.com/pocketbase/pocketbase/core"
)

// maxBlobSize bounds a single persisted collection
const maxBlobSize = 16 << 20

func init() {
	core.AppMigrations.Register(func(app core.App) error {
		collection := core.NewBaseCollection("kv_blobs")

		collection.Fields.Add(&core.TextField{
			Id:       "blob_key",
			Name:     "key",
			Required: true,
			Max:      64,
			Pattern:  `^[a-z0-9_]+$`,
		})

		collection.Fields.Add(&core.TextField{
			Id:   "blob_value",
			Name: "value",
			Max:  maxBlobSize,
		})

		collection.Fields.Add(&core.AutodateField{
			Id:       "blob_updated",
			Name:     "updated",
			OnCreate: true,
			OnUpdate: true,
		})

		collection.AddIndex("idx_kv_blobs_key", true, "key", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("kv_blobs")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
