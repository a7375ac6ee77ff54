package tui

import "github.com/letmevibethatforyou/hnsearch"

// FetchDone is sent when a fetch started by the app has completed.
type FetchDone struct {
	Fetch *hnsearch.Fetch
	Page  hnsearch.Page
	Err   error
}
