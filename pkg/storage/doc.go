// Package storage keeps user uploads in S3-compatible object storage.
//
// Storage is the minimal object API the application needs: put, delete
// and resolve a public URL. S3 talks to AWS, MinIO or R2 through the AWS
// SDK; Memory keeps objects in process for tests and local development.
//
// Upload takes a multipart file straight from a form, sniffs its type,
// checks it against a Policy and stores it under a random key:
//
//	obj, err := storage.Upload(ctx, s3, fh, storage.Policy{
//		Prefix:  "avatars/" + userID,
//		MaxSize: 2 << 20,
//		Allow:   storage.ImageTypes,
//	})
//	var rejected *storage.RejectedError
//	if errors.As(err, &rejected) {
//		// show rejected.Message next to the field
//	}
package storage
