// Package minio stores persisted device state on MinIO or another
// S3-compatible server (Ceph, Garage, SeaweedFS).
//
// It is the choice for studios and labs that keep device backups on a local
// server without AWS credentials:
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "pedals", "pedal-0042/")
package minio
