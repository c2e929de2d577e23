// Package connectors holds clients for upstream design sources.
//
// Each sub-package implements the driven DocumentSource and ImageDownloader
// ports for one provider. figma is currently the only one.
package connectors
