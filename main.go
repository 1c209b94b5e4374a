// The main package for the carrierscan executable.
package main

import (
	"github.com/fleetlens/carrierscan/cmd"
)

func main() {
	cmd.Execute()
}
