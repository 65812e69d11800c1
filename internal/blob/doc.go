// Package blob stores uploaded proposal documents. Two drivers are provided:
// a local filesystem tree for single-host deployments and an S3-compatible
// bucket (AWS S3 or MinIO) for everything else.
package blob
