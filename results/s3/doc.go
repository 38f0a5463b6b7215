// Package s3 provides an S3 implementation of the results.Store interface,
// plus a DynamoDB-backed registry of experiment runs.
//
// # Usage
//
//	store, err := s3.NewFromConfig(ctx, "my-bucket", func(o *s3.Options) {
//	    o.Prefix = "icgauge/"
//	})
//
//	w, err := results.NewWriter(store)
//
// # Features
//
//   - Multipart transfers through the S3 transfer manager
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
//   - Atomic run registration via DynamoDB conditional writes
package s3
