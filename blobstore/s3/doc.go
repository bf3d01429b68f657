// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("points/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	ps, err := kdnn.LoadBlob(ctx, store, "cities.csv.zst")
//
// Whole-blob reads go through the S3 transfer manager, which downloads
// large objects in parallel parts. ReadAt and ReadRange issue single
// ranged GETs.
package s3
