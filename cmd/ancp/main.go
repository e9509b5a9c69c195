// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package main

import (
	"fmt"
	"os"

	"github.com/nttcom/ancp/internal/pkg/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Println(version.Banner("ancp"))
		return
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
