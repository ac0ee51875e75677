// Package main prints the version stamped into dvs: DVS_VERSION when set, else the
// nearest v-prefixed git tag without its "v", else "dev".
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func main() {
	fmt.Print(version())
}

func version() string {
	if v := strings.TrimSpace(os.Getenv("DVS_VERSION")); v != "" {
		return v
	}
	out, err := exec.Command("git", "describe", "--tags", "--match", "v*", "--always", "--dirty").Output()
	if err != nil {
		return "dev"
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return "dev"
	}
	return strings.TrimPrefix(v, "v")
}
