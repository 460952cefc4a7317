// Package s3 provides Amazon S3 and DynamoDB backends for persisted device state.
//
// Store keeps one object per blob under a key prefix, which lets a fleet back
// up its devices into one bucket:
//
//	cfg, _ := config.LoadDefaultConfig(ctx)
//	store := s3.NewStore(awss3.NewFromConfig(cfg), "my-bucket", "devices/pedal-0042/")
//
// DDBStore keeps every Put as a new version in a DynamoDB table and uses
// conditional writes so two writers never overwrite each other silently.
// Old versions beyond the retention limit are pruned after each Put.
package s3
