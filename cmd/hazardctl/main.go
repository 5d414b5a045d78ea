// Command hazardctl runs the hazard clustering and risk scoring on fixture
// files without Kafka or a database.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
