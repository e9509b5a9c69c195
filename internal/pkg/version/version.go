// Copyright (c) 2026 NTT Communications Corporation
//
// This software is released under the MIT License.
// see https://github.com/nttcom/ancp/blob/main/LICENSE

package version

import (
	"fmt"
	"runtime"
)

const (
	MAJOR uint = 0
	MINOR uint = 1
	PATCH uint = 0
)

func Version() string {
	return fmt.Sprintf("%d.%d.%d", MAJOR, MINOR, PATCH)
}

// Banner is the line printed by --version, e.g. "ancpd 0.1.0 (go1.24.2)".
func Banner(binary string) string {
	return fmt.Sprintf("%s %s (%s)", binary, Version(), runtime.Version())
}
