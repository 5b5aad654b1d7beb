// Package buildinfo exposes build metadata injected at link time.
//
//	go build -ldflags "-X github.com/dmitrijs2005/sessionkeeper/internal/buildinfo.Version=v1.2.0"
package buildinfo

import (
	"fmt"
	"io"
	"time"
)

var (
	Version   = "N/A"
	Commit    = "N/A"
	BuildTime = "N/A"
)

// FirstYear is the year the product was first published.
const FirstYear = 2026

// PrintBuildData writes the version banner to w.
func PrintBuildData(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", Version)
	fmt.Fprintf(w, "Build date: %s\n", BuildTime)
	fmt.Fprintf(w, "Build commit: %s\n", Commit)
}

// Copyright returns the year range shown in the footer.
func Copyright(now time.Time) string {
	if y := now.Year(); y > FirstYear {
		return fmt.Sprintf("%d - %d", FirstYear, y)
	}
	return fmt.Sprint(FirstYear)
}
