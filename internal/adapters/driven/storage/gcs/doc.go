// Package gcs stores cached assets and job markers in a Google Cloud
// Storage bucket. It is compiled only with the gcp build tag.
package gcs
