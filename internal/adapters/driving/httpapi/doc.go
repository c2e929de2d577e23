// Package httpapi exposes the sync and catalogue services over HTTP.
//
// Routes:
//
//	POST /figma/cache-assets    trigger a sync of the given page nodes
//	GET  /figma/job-status      poll a job marker
//	GET  /figma/assets          list frames of named pages
//	GET  /figma/templates       group template-style pages
//	GET  /figma/pages           list pages of a file
//	GET  /figma/file-version    upstream version of a file
//	GET  /figma/asset-url       public URL of a cached asset
//	GET  /cache/{key...}        serve a cached blob (local backends)
//	GET  /healthz               liveness
package httpapi
