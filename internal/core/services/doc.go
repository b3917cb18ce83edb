// Package services implements both pipelines over the driven ports.
//
// The sorter loop and frame helpers (Preprocess, Annotate) work on
// image.RGBA, so no capture backend or cgo reaches this package. Seed, index
// and chat services make up the retrieval pipeline.
package services
