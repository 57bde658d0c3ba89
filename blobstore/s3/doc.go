// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("filters/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	err = bf.ExportToStore(ctx, store, "users.blm")
//	bf, err = bloomgo.ImportFromStore(ctx, store, "users.blm")
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads via the S3 transfer manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
