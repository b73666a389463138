// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the clusters project using Mage.
//
// Usage:
//
//	mage build        Compile the clusters binary to bin/
//	mage install      Install clusters to GOPATH/bin
//	mage clean        Remove build artifacts
//	mage test:all     Run every test
//	mage test:race    Run every test with the race detector
//	mage test:cover   Run every test and write coverage.out
//	mage lint         Run golangci-lint
//	mage vet          Run go vet
//	mage stats        Print Go lines of code per package
package main

const (
	binGo      = "go"
	binLint    = "golangci-lint"
	binaryName = "clusters"
	binaryDir  = "bin"
	cmdDir     = "./cmd/clusters"
	coverFile  = "coverage.out"
)
