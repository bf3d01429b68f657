// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible servers such as Ceph,
// SeaweedFS and Garage.
//
//	store, err := minio.Dial("localhost:9000", "minioadmin", "minioadmin", false,
//	    "datasets", "points/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ps, err := kdnn.LoadBlob(ctx, store, "cities.csv.gz")
package minio
